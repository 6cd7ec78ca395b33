package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"platewatch/internal/common"
	"platewatch/internal/db/repositories"
	"platewatch/internal/metrics"
	gormModels "platewatch/internal/models/gorm"

	"gorm.io/gorm"
)

// Prometheus collectors register on the default registry, so the registry
// is created once for the whole test binary.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.MetricsRegistry
)

func testMetricsRegistry() *metrics.MetricsRegistry {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetricsRegistry()
	})
	return testMetrics
}

func setupCarInfo(t *testing.T) (*CarInfoService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	repo := repositories.NewSightingRepository(db)
	cache := common.NewCacheService(time.Minute, 10*time.Minute)

	return NewCarInfoService(repo, cache, testMetricsRegistry()), db
}

func insertCarInfoFixture(t *testing.T, db *gorm.DB, plate, carMake, model, color string, ts time.Time) {
	t.Helper()

	rec := &gormModels.Sighting{
		State:        "CA",
		LicensePlate: plate,
		CarMake:      carMake,
		CarModel:     model,
		Color:        color,
		Timestamp:    &ts,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to insert fixture: %v", err)
	}
}

func TestCarInfoKnownPlateUsesLatestSighting(t *testing.T) {
	svc, db := setupCarInfo(t)

	insertCarInfoFixture(t, db, "ABC1234", "Honda", "Civic", "Blue", time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC))
	insertCarInfoFixture(t, db, "ABC1234", "Honda", "Civic", "Red", time.Date(2025, 10, 9, 8, 0, 0, 0, time.UTC))

	info, err := svc.GetCarInfo(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("GetCarInfo failed: %v", err)
	}
	if !info.Found {
		t.Fatal("Expected plate to be found")
	}
	if info.Color != "Red" {
		t.Errorf("Expected most recent sighting's color, got %s", info.Color)
	}
}

func TestCarInfoUnknownPlate(t *testing.T) {
	svc, _ := setupCarInfo(t)

	info, err := svc.GetCarInfo(context.Background(), "NOPE99")
	if err != nil {
		t.Fatalf("GetCarInfo failed: %v", err)
	}
	if info.Found {
		t.Errorf("Expected found=false, got %+v", info)
	}
}

func TestCarInfoServesFromCache(t *testing.T) {
	svc, db := setupCarInfo(t)

	insertCarInfoFixture(t, db, "ABC1234", "Honda", "Civic", "Blue", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	first, err := svc.GetCarInfo(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("GetCarInfo failed: %v", err)
	}
	if !first.Found {
		t.Fatal("Expected plate to be found")
	}

	// Remove the row; the cached answer must survive.
	if err := db.Where("1 = 1").Delete(&gormModels.Sighting{}).Error; err != nil {
		t.Fatalf("Failed to clear table: %v", err)
	}

	second, err := svc.GetCarInfo(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("GetCarInfo failed: %v", err)
	}
	if !second.Found || second.CarMake != "Honda" {
		t.Errorf("Expected cached answer, got %+v", second)
	}
}
