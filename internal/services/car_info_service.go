package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"platewatch/internal/common"
	"platewatch/internal/constants"
	"platewatch/internal/db/repositories"
	"platewatch/internal/metrics"
	"platewatch/internal/models/dtos"
)

// CarInfoService answers "what car carries this plate" from the most recent
// sighting, with a short-lived cache in front of the database.
type CarInfoService struct {
	repo    *repositories.SightingRepository
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
	ttl     time.Duration
}

func NewCarInfoService(repo *repositories.SightingRepository, cache common.CacheInterface, reg *metrics.MetricsRegistry) *CarInfoService {
	return &CarInfoService{
		repo:    repo,
		cache:   cache,
		metrics: reg,
		ttl:     60 * time.Second,
	}
}

// GetCarInfo returns make/model/color of the most recent sighting for the
// plate, or found=false when the plate is unknown.
func (s *CarInfoService) GetCarInfo(ctx context.Context, plate string) (*dtos.CarInfoResponse, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	key := string(constants.CachePrefixCarInfo) + plate

	if val, found := s.cache.Get(key); found {
		if info, ok := decodeCarInfo(val); ok {
			s.metrics.CacheHitsTotal.WithLabelValues("car_info").Inc()
			return info, nil
		}
	}
	s.metrics.CacheMissesTotal.WithLabelValues("car_info").Inc()

	rec, err := s.repo.FindLatestByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	info := dtos.CarInfoResponse{}
	if rec != nil {
		info.Found = true
		info.CarMake = rec.CarMake
		info.CarModel = rec.CarModel
		info.Color = rec.Color
	}

	s.cache.Set(key, info, s.ttl)
	return &info, nil
}

// decodeCarInfo handles both cache backends: the in-memory cache hands the
// struct back, Redis hands back raw JSON.
func decodeCarInfo(val interface{}) (*dtos.CarInfoResponse, bool) {
	switch v := val.(type) {
	case dtos.CarInfoResponse:
		return &v, true
	case json.RawMessage:
		var info dtos.CarInfoResponse
		if err := json.Unmarshal(v, &info); err != nil {
			return nil, false
		}
		return &info, true
	default:
		return nil, false
	}
}
