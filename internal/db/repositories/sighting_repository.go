package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "platewatch/internal/models/gorm"

	"gorm.io/gorm"
)

// SightingRepository handles sighting table operations using GORM
type SightingRepository struct {
	db *gorm.DB
}

// NewSightingRepository creates a new GORM-based sighting repository
func NewSightingRepository(db *gorm.DB) *SightingRepository {
	return &SightingRepository{db: db}
}

// GetByID retrieves a sighting by its ID. Returns nil without error when no
// record exists.
func (r *SightingRepository) GetByID(ctx context.Context, id int64) (*gormModels.Sighting, error) {
	var s gormModels.Sighting

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch sighting: %w", err)
	}

	return &s, nil
}

// ListAll retrieves every sighting, newest first. Exports iterate this.
func (r *SightingRepository) ListAll(ctx context.Context) ([]gormModels.Sighting, error) {
	var sightings []gormModels.Sighting

	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&sightings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch sightings: %w", err)
	}

	return sightings, nil
}

// ListWithImages retrieves all sightings that reference an image file, in
// ascending id order so bulk-import matching is deterministic.
func (r *SightingRepository) ListWithImages(ctx context.Context) ([]gormModels.Sighting, error) {
	var sightings []gormModels.Sighting

	err := r.db.WithContext(ctx).
		Where("image_filename IS NOT NULL").
		Order("id ASC").
		Find(&sightings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch sightings with images: %w", err)
	}

	return sightings, nil
}

// FindByImageFilename retrieves the sighting whose stored image filename
// matches exactly. Returns nil without error when none matches.
func (r *SightingRepository) FindByImageFilename(ctx context.Context, filename string) (*gormModels.Sighting, error) {
	var s gormModels.Sighting

	err := r.db.WithContext(ctx).
		Where("image_filename = ?", filename).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch sighting by image filename: %w", err)
	}

	return &s, nil
}

// FindLatestByPlate retrieves the most recent sighting for a plate. Returns
// nil without error when the plate has never been sighted.
func (r *SightingRepository) FindLatestByPlate(ctx context.Context, plate string) (*gormModels.Sighting, error) {
	var s gormModels.Sighting

	err := r.db.WithContext(ctx).
		Where("license_plate = ?", plate).
		Order("timestamp DESC").
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch sighting by plate: %w", err)
	}

	return &s, nil
}
