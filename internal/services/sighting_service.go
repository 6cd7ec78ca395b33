package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"platewatch/internal/common"
	"platewatch/internal/constants"
	"platewatch/internal/db/repositories"
	"platewatch/internal/logging"
	"platewatch/internal/models/dtos"
	gormModels "platewatch/internal/models/gorm"

	"gorm.io/gorm"
)

const invalidFileTypeWarning = "Invalid file type. Allowed types: png, jpg, jpeg, gif, webp"

// SightingService applies create/update/delete operations, coordinating the
// record mutation with image-store side effects. Each call performs at most
// one file write or delete and one record write or delete.
type SightingService struct {
	db     *gorm.DB
	repo   *repositories.SightingRepository
	images *common.ImageStore
}

func NewSightingService(db *gorm.DB, repo *repositories.SightingRepository, images *common.ImageStore) *SightingService {
	return &SightingService{db: db, repo: repo, images: images}
}

// Create validates and persists a new sighting. The record is inserted
// first so the image filename can embed its id; the filename reference is
// written in the same transaction. A disallowed image type is reported as a
// warning and the record is kept without a photo.
//
// The image file itself is written outside the database transaction: a file
// can remain on disk if the commit fails afterwards. That partial-failure
// window is accepted, the reverse (a reference without a file) cannot
// happen because the write precedes the reference update.
func (s *SightingService) Create(ctx context.Context, form dtos.SightingForm, upload *common.Upload) (*gormModels.Sighting, []string, error) {
	normalizeForm(&form)
	if err := validateForm(form); err != nil {
		return nil, nil, err
	}

	var warnings []string

	ts := time.Now().UTC()
	if form.SightingTime != "" {
		parsed, err := time.Parse(constants.FormTimeLayout, form.SightingTime)
		if err != nil {
			warnings = append(warnings, "Unrecognized sighting time, recorded as now.")
			logging.Warn("sighting time parse failed, defaulting to now",
				"value", form.SightingTime,
				"error", err.Error(),
			)
		} else {
			ts = parsed
		}
	}

	rec := &gormModels.Sighting{
		State:        form.State,
		LicensePlate: form.LicensePlate,
		CarMake:      form.CarMake,
		CarModel:     form.CarModel,
		Color:        form.Color,
		Location:     optionalString(form.Location),
		Timestamp:    &ts,
		Notes:        optionalString(form.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to insert sighting: %w", err)
		}

		if upload == nil || upload.Filename == "" {
			return nil
		}

		if !s.images.Allowed(upload.Filename) {
			warnings = append(warnings, invalidFileTypeWarning)
			return nil
		}

		filename, err := s.images.Save(rec.ID, *upload)
		if err != nil {
			return err
		}

		rec.ImageFilename = &filename
		if err := tx.Model(rec).Update("image_filename", filename).Error; err != nil {
			return fmt.Errorf("failed to attach image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}

	return rec, warnings, nil
}

// Update overwrites a sighting's fields. An omitted timestamp retains the
// previous value. The remove flag clears the photo before any new upload is
// considered; a new upload replaces the stored file under a filename keyed
// to the same id.
func (s *SightingService) Update(ctx context.Context, id int64, form dtos.SightingForm, upload *common.Upload) (*gormModels.Sighting, []string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, ErrNotFound
	}

	normalizeForm(&form)
	if err := validateForm(form); err != nil {
		return nil, nil, err
	}

	var warnings []string

	if form.SightingTime != "" {
		parsed, perr := time.Parse(constants.FormTimeLayout, form.SightingTime)
		if perr != nil {
			warnings = append(warnings, "Unrecognized sighting time, previous value kept.")
			logging.Warn("sighting time parse failed, keeping previous value",
				"sighting_id", id,
				"value", form.SightingTime,
				"error", perr.Error(),
			)
		} else {
			rec.Timestamp = &parsed
		}
	}

	rec.State = form.State
	rec.LicensePlate = form.LicensePlate
	rec.CarMake = form.CarMake
	rec.CarModel = form.CarModel
	rec.Color = form.Color
	rec.Location = optionalString(form.Location)
	rec.Notes = optionalString(form.Notes)

	if form.RemoveImage && rec.ImageFilename != nil {
		s.images.Delete(*rec.ImageFilename)
		rec.ImageFilename = nil
	}

	if upload != nil && upload.Filename != "" {
		if !s.images.Allowed(upload.Filename) {
			warnings = append(warnings, invalidFileTypeWarning)
		} else {
			if rec.ImageFilename != nil {
				s.images.Delete(*rec.ImageFilename)
			}
			filename, serr := s.images.Save(rec.ID, *upload)
			if serr != nil {
				return nil, warnings, serr
			}
			rec.ImageFilename = &filename
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("failed to update sighting: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}

	return rec, warnings, nil
}

// Delete removes a sighting and its photo. The file deletion is best-effort
// and attempted first; a file-delete failure never blocks the record delete.
func (s *SightingService) Delete(ctx context.Context, id int64) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}

	if rec.ImageFilename != nil {
		s.images.Delete(*rec.ImageFilename)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&gormModels.Sighting{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete sighting: %w", err)
		}
		return nil
	})
	return err
}

func normalizeForm(form *dtos.SightingForm) {
	form.State = strings.ToUpper(strings.TrimSpace(form.State))
	form.LicensePlate = strings.ToUpper(strings.TrimSpace(form.LicensePlate))
	form.CarMake = strings.TrimSpace(form.CarMake)
	form.CarModel = strings.TrimSpace(form.CarModel)
	form.Color = strings.TrimSpace(form.Color)
	form.Location = strings.TrimSpace(form.Location)
	form.Notes = strings.TrimSpace(form.Notes)
}

func validateForm(form dtos.SightingForm) error {
	var problems []string

	if len(form.State) != 2 {
		problems = append(problems, "state must be a 2-character region code")
	}
	if form.LicensePlate == "" {
		problems = append(problems, "license plate is required")
	} else if len(form.LicensePlate) > 15 {
		problems = append(problems, "license plate must be at most 15 characters")
	}
	if form.CarMake == "" {
		problems = append(problems, "car make is required")
	}
	if form.CarModel == "" {
		problems = append(problems, "car model is required")
	}
	if form.Color == "" {
		problems = append(problems, "color is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
