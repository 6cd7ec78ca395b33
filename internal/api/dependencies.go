package api

import (
	"time"

	"platewatch/internal/common"
	"platewatch/internal/config"
	"platewatch/internal/db/repositories"
	"platewatch/internal/logging"
	"platewatch/internal/metrics"
	"platewatch/internal/services"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repositories struct {
	Sightings *repositories.SightingRepository
	Query     *repositories.SightingQueryRepository
}

type Services struct {
	Sightings  *services.SightingService
	Export     *services.ExportService
	BulkImport *services.BulkImportService
	CarInfo    *services.CarInfoService
	Cache      common.CacheInterface
}

type Dependencies struct {
	Config   *config.Config
	Metrics  *metrics.MetricsRegistry
	Images   *common.ImageStore
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories and services. Redis backs the cache
// when configured; otherwise the in-memory cache is used, and a Redis
// connection failure falls back to it with a warning.
func InitDependencies(cfg *config.Config, orm *gorm.DB, sdb *sqlx.DB, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	images, err := common.NewImageStore(cfg.UploadDir, cfg.AllowedExtensions)
	if err != nil {
		return nil, err
	}

	var cache common.CacheInterface
	if cfg.RedisAddr != "" {
		redisCache, rerr := common.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword)
		if rerr != nil {
			logging.Warn("Redis unavailable, using in-memory cache",
				"addr", cfg.RedisAddr,
				"error", rerr.Error(),
			)
		} else {
			cache = redisCache
		}
	}
	if cache == nil {
		cache = common.NewCacheService(time.Minute, 10*time.Minute)
	}

	repos := &Repositories{
		Sightings: repositories.NewSightingRepository(orm),
		Query:     repositories.NewSightingQueryRepository(sdb, metricsReg),
	}

	svcs := &Services{
		Sightings:  services.NewSightingService(orm, repos.Sightings, images),
		Export:     services.NewExportService(repos.Sightings, images),
		BulkImport: services.NewBulkImportService(repos.Sightings, images),
		CarInfo:    services.NewCarInfoService(repos.Sightings, cache, metricsReg),
		Cache:      cache,
	}

	return &Dependencies{
		Config:   cfg,
		Metrics:  metricsReg,
		Images:   images,
		Repo:     repos,
		Services: svcs,
	}, nil
}
