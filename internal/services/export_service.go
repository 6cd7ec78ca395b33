package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"platewatch/internal/common"
	"platewatch/internal/constants"
	"platewatch/internal/db/repositories"
	"platewatch/internal/logging"
	gormModels "platewatch/internal/models/gorm"
	"platewatch/internal/seed"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExportBaseName names the files inside every export download.
const ExportBaseName = "license_plates_export"

// ExportService serializes the full record set, newest first, into CSV, a
// ZIP bundle with images, or the seed-literal format. All three formats
// share one record iteration order and field set per include_notes setting.
type ExportService struct {
	repo   *repositories.SightingRepository
	images *common.ImageStore
}

func NewExportService(repo *repositories.SightingRepository, images *common.ImageStore) *ExportService {
	return &ExportService{repo: repo, images: images}
}

// ExportCSV renders all sightings as CSV.
func (s *ExportService) ExportCSV(ctx context.Context, includeNotes bool) ([]byte, error) {
	sightings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeCSV(&buf, sightings, includeNotes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportSeed renders all sightings in the seed-literal format, suitable for
// re-loading through the seed loader.
func (s *ExportService) ExportSeed(ctx context.Context, includeNotes bool) ([]byte, error) {
	sightings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return seed.FormatLiteral(sightings, includeNotes), nil
}

// ExportArchive builds a ZIP holding the CSV plus an images/ entry for
// every record whose backing file exists. Packaging goes through a staging
// directory unique to this request; the directory is removed on every exit
// path.
func (s *ExportService) ExportArchive(ctx context.Context, includeNotes bool) ([]byte, error) {
	sightings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	staging := filepath.Join(os.TempDir(), "platewatch_export_"+uuid.New().String())
	imagesDir := filepath.Join(staging, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logging.Warn("failed to remove export staging directory",
				"dir", staging,
				"error", err.Error(),
			)
		}
	}()

	csvPath := filepath.Join(staging, ExportBaseName+".csv")
	if err := s.writeCSVFile(csvPath, sightings, includeNotes); err != nil {
		return nil, err
	}

	if err := s.stageImages(ctx, imagesDir, sightings); err != nil {
		return nil, err
	}

	return buildZip(csvPath, imagesDir)
}

func (s *ExportService) writeCSVFile(path string, sightings []gormModels.Sighting, includeNotes bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create staging CSV: %w", err)
	}
	defer f.Close()

	return writeCSV(f, sightings, includeNotes)
}

// stageImages copies each resolvable image into the staging area. Records
// pointing at missing files are skipped silently; the CSV still lists them.
func (s *ExportService) stageImages(ctx context.Context, imagesDir string, sightings []gormModels.Sighting) error {
	var g errgroup.Group
	g.SetLimit(4)

	staged := make(map[string]struct{})
	for _, rec := range sightings {
		if rec.ImageFilename == nil {
			continue
		}
		name := *rec.ImageFilename
		if _, done := staged[name]; done {
			continue
		}
		staged[name] = struct{}{}

		src, err := s.images.Resolve(name)
		if err != nil || !s.images.Exists(name) {
			continue
		}

		dst := filepath.Join(imagesDir, name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return copyFile(src, dst)
		})
	}

	return g.Wait()
}

func buildZip(csvPath, imagesDir string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := addZipFile(zw, csvPath, ExportBaseName+".csv"); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged images: %w", err)
	}
	sort.Slice(dirEntries, func(i, j int) bool { return dirEntries[i].Name() < dirEntries[j].Name() })

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(imagesDir, entry.Name())
		if err := addZipFile(zw, src, "images/"+entry.Name()); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func addZipFile(zw *zip.Writer, srcPath, entryName string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", entryName, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", entryName, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func csvColumns(includeNotes bool) []string {
	if includeNotes {
		return []string{"state", "license_plate", "car_make", "car_model", "color", "location", "timestamp", "notes", "image_filename"}
	}
	return []string{"state", "license_plate", "car_make", "car_model", "color", "location", "timestamp", "image_filename"}
}

func writeCSV(w io.Writer, sightings []gormModels.Sighting, includeNotes bool) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvColumns(includeNotes)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range sightings {
		ts := ""
		if rec.Timestamp != nil {
			ts = rec.Timestamp.Format(constants.ExportTimeLayout)
		}

		row := []string{rec.State, rec.LicensePlate, rec.CarMake, rec.CarModel, rec.Color, derefOrEmpty(rec.Location), ts}
		if includeNotes {
			row = append(row, derefOrEmpty(rec.Notes))
		}
		row = append(row, derefOrEmpty(rec.ImageFilename))

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
