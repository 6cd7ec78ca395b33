package services

import (
	"context"
	"strings"

	"platewatch/internal/common"
	"platewatch/internal/db/repositories"
	"platewatch/internal/logging"
	"platewatch/internal/models/dtos"
)

// maxSurfacedErrors caps how many error messages a batch reports back;
// every failure is still counted.
const maxSurfacedErrors = 10

// BulkImportService reconciles a batch of uploaded image files against
// existing sightings by filename. Files land under the matched record's
// stored filename, overwriting whatever was there.
type BulkImportService struct {
	repo   *repositories.SightingRepository
	images *common.ImageStore
}

func NewBulkImportService(repo *repositories.SightingRepository, images *common.ImageStore) *BulkImportService {
	return &BulkImportService{repo: repo, images: images}
}

// Import processes uploads in submission order. Per-file failures never
// abort the batch; only a storage-layer failure does.
func (s *BulkImportService) Import(ctx context.Context, uploads []common.Upload) (*dtos.BulkImportResponse, error) {
	res := &dtos.BulkImportResponse{}

	for _, up := range uploads {
		if up.Filename == "" {
			continue
		}

		if !s.images.Allowed(up.Filename) {
			s.fail(res, up.Filename+": Invalid file type")
			continue
		}

		target, err := s.matchTarget(ctx, up.Filename)
		if err != nil {
			return nil, err
		}
		if target == "" {
			s.fail(res, up.Filename+": No matching sighting found in database")
			continue
		}

		if err := s.images.Write(target, up.Data); err != nil {
			logging.Warn("bulk import write failed",
				"uploaded", up.Filename,
				"target", target,
				"error", err.Error(),
			)
			s.fail(res, up.Filename+": "+err.Error())
			continue
		}
		res.SuccessCount++
	}

	return res, nil
}

// matchTarget finds the stored filename an upload belongs to: an exact
// image_filename match first, otherwise the first record (by id) whose
// filename ends with "_<uploaded-name>", per the sighting_<id>_<name>
// convention. Returns "" when nothing matches.
func (s *BulkImportService) matchTarget(ctx context.Context, uploaded string) (string, error) {
	rec, err := s.repo.FindByImageFilename(ctx, uploaded)
	if err != nil {
		return "", err
	}
	if rec != nil {
		return uploaded, nil
	}

	candidates, err := s.repo.ListWithImages(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		if c.ImageFilename != nil && strings.HasSuffix(*c.ImageFilename, "_"+uploaded) {
			return *c.ImageFilename, nil
		}
	}
	return "", nil
}

func (s *BulkImportService) fail(res *dtos.BulkImportResponse, msg string) {
	res.ErrorCount++
	if len(res.Errors) < maxSurfacedErrors {
		res.Errors = append(res.Errors, msg)
	}
}
