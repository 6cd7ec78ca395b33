package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"platewatch/internal/constants"
	"platewatch/internal/metrics"
	"platewatch/internal/models/dtos"
	"platewatch/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// sortClauses whitelists the ORDER BY for each sort key. Plate sorts order
// by state first, make sorts by make then model.
var sortClauses = map[string]string{
	constants.SortDateDesc:  "timestamp DESC",
	constants.SortDateAsc:   "timestamp ASC",
	constants.SortPlateAsc:  "state ASC, license_plate ASC",
	constants.SortPlateDesc: "state DESC, license_plate DESC",
	constants.SortMakeAsc:   "car_make ASC, car_model ASC",
	constants.SortMakeDesc:  "car_make DESC, car_model DESC",
}

// SightingQueryRepository serves the listing and search views with raw SQL
// over sqlx. It shares the database with the GORM repository.
type SightingQueryRepository struct {
	db      *sqlx.DB
	metrics *metrics.MetricsRegistry
}

// NewSightingQueryRepository creates a new sqlx-based query repository
func NewSightingQueryRepository(db *sqlx.DB, reg *metrics.MetricsRegistry) *SightingQueryRepository {
	return &SightingQueryRepository{db: db, metrics: reg}
}

// List returns sightings filtered by the optional date range and ordered by
// the requested sort key. Malformed dates are skipped and reported as
// warnings, never as errors.
func (r *SightingQueryRepository) List(ctx context.Context, params dtos.ListParams) ([]entities.Sighting, []string, error) {
	var (
		conds    []string
		args     []interface{}
		warnings []string
	)

	if params.StartDate != "" {
		start, err := time.Parse(constants.DateOnlyLayout, params.StartDate)
		if err != nil {
			warnings = append(warnings, "Invalid start date format. Please use YYYY-MM-DD.")
		} else {
			conds = append(conds, "timestamp >= ?")
			args = append(args, start)
		}
	}

	if params.EndDate != "" {
		end, err := time.Parse(constants.DateOnlyLayout, params.EndDate)
		if err != nil {
			warnings = append(warnings, "Invalid end date format. Please use YYYY-MM-DD.")
		} else {
			// Inclusive of the entire end day.
			conds = append(conds, "timestamp < ?")
			args = append(args, end.AddDate(0, 0, 1))
		}
	}

	order, ok := sortClauses[params.SortBy]
	if !ok {
		order = sortClauses[constants.SortDateDesc]
	}

	query := constants.SelectSightingsBase
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + order

	rows, err := r.selectSightings(ctx, "list", query, args...)
	if err != nil {
		return nil, warnings, err
	}

	return rows, warnings, nil
}

// Search returns sightings matching an exact state and/or a plate
// substring, newest first. Callers must normalize inputs to upper case and
// must not call this with both filters empty.
func (r *SightingQueryRepository) Search(ctx context.Context, state, plate string) ([]entities.Sighting, error) {
	var (
		conds []string
		args  []interface{}
	)

	if state != "" {
		conds = append(conds, "state = ?")
		args = append(args, state)
	}

	if plate != "" {
		conds = append(conds, "license_plate LIKE ?")
		args = append(args, "%"+plate+"%")
	}

	query := constants.SelectSightingsBase
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	return r.selectSightings(ctx, "search", query, args...)
}

func (r *SightingQueryRepository) selectSightings(ctx context.Context, queryType, query string, args ...interface{}) ([]entities.Sighting, error) {
	start := time.Now()

	var rows []entities.Sighting
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)

	if r.metrics != nil {
		r.metrics.DBQueriesTotal.WithLabelValues(queryType).Inc()
		r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query sightings: %w", err)
	}

	return rows, nil
}
