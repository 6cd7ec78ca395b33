package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"platewatch/internal/common"
	"platewatch/internal/config"
	"platewatch/internal/db/repositories"
	"platewatch/internal/metrics"
	"platewatch/internal/models/dtos"
	gormModels "platewatch/internal/models/gorm"
	"platewatch/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
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

func setupAPI(t *testing.T) (*Dependencies, *gorm.DB, http.Handler) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "platewatch_test.db")

	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := orm.AutoMigrate(&gormModels.Sighting{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	sdb, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to connect sqlx: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })

	cfg := &config.Config{
		Env:               "development",
		DatabaseURL:       path,
		UploadDir:         t.TempDir(),
		MaxUploadBytes:    5 * 1024 * 1024,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
	}

	images, err := common.NewImageStore(cfg.UploadDir, cfg.AllowedExtensions)
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}

	reg := testMetricsRegistry()
	cache := common.NewCacheService(time.Minute, 10*time.Minute)

	repos := &Repositories{
		Sightings: repositories.NewSightingRepository(orm),
		Query:     repositories.NewSightingQueryRepository(sdb, reg),
	}
	svcs := &Services{
		Sightings:  services.NewSightingService(orm, repos.Sightings, images),
		Export:     services.NewExportService(repos.Sightings, images),
		BulkImport: services.NewBulkImportService(repos.Sightings, images),
		CarInfo:    services.NewCarInfoService(repos.Sightings, cache, reg),
		Cache:      cache,
	}
	deps := &Dependencies{
		Config:   cfg,
		Metrics:  reg,
		Images:   images,
		Repo:     repos,
		Services: svcs,
	}

	r := chi.NewRouter()
	r.Get("/", ListSightingsHandler(deps))
	r.Post("/add", CreateSightingHandler(deps))
	r.Get("/search", SearchSightingsHandler(deps))
	r.Get("/edit/{id}", GetSightingHandler(deps))
	r.Post("/edit/{id}", UpdateSightingHandler(deps))
	r.Post("/delete/{id}", DeleteSightingHandler(deps))
	r.Get("/image/{filename}", ServeImageHandler(deps))
	r.Post("/bulk_upload", BulkUploadHandler(deps))
	r.Get("/api/car_info/{plate}", CarInfoHandler(deps))
	r.Get("/export/csv", ExportCSVHandler(deps))
	r.Get("/export/zip", ExportZipHandler(deps))
	r.Get("/export/seed", ExportSeedHandler(deps))

	return deps, orm, r
}

func seedAPISighting(t *testing.T, db *gorm.DB, plate string, ts time.Time) *gormModels.Sighting {
	t.Helper()

	rec := &gormModels.Sighting{
		State:        "CA",
		LicensePlate: plate,
		CarMake:      "Honda",
		CarModel:     "Civic",
		Color:        "Blue",
		Timestamp:    &ts,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to insert fixture: %v", err)
	}
	return rec
}

func decodeEnvelope(t *testing.T, body []byte, data any) dtos.APIResponse {
	t.Helper()

	raw := struct {
		Status       string          `json:"status"`
		Message      string          `json:"message"`
		ResponseTime string          `json:"response_time"`
		Data         json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("Failed to decode response envelope: %v\n%s", err, body)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("Failed to decode response data: %v\n%s", err, raw.Data)
		}
	}
	return dtos.APIResponse{Status: raw.Status, Message: raw.Message, ResponseTime: raw.ResponseTime}
}

func postForm(handler http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func validSightingForm() url.Values {
	return url.Values{
		"state":         {"ca"},
		"license_plate": {"abc1234"},
		"car_make":      {"Honda"},
		"car_model":     {"Civic"},
		"color":         {"Blue"},
		"location":      {"Downtown LA"},
		"sighting_time": {"2025-10-05T12:00"},
	}
}

func TestListSightings(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "OLD1", time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC))
	seedAPISighting(t, db, "NEW1", time.Date(2025, 10, 9, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var data dtos.ListSightingsResponse
	env := decodeEnvelope(t, rr.Body.Bytes(), &data)
	if env.Status != "ok" {
		t.Errorf("Expected ok status, got %s", env.Status)
	}
	if data.SortBy != "date_desc" {
		t.Errorf("Expected default sort date_desc, got %s", data.SortBy)
	}
	if len(data.Sightings) != 2 || data.Sightings[0].LicensePlate != "NEW1" {
		t.Errorf("Expected newest-first listing, got %+v", data.Sightings)
	}
}

func TestListSightingsMalformedDateWarns(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?start_date=banana", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var data dtos.ListSightingsResponse
	decodeEnvelope(t, rr.Body.Bytes(), &data)
	if len(data.Warnings) != 1 || !strings.Contains(data.Warnings[0], "Invalid start date") {
		t.Errorf("Expected start date warning, got %v", data.Warnings)
	}
	if len(data.Sightings) != 1 {
		t.Errorf("Expected listing to still return rows, got %d", len(data.Sightings))
	}
}

func TestSearchWithoutFiltersRedirects(t *testing.T) {
	_, _, handler := setupAPI(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search?state=&plate=+", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("Expected 302 redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %s", loc)
	}
}

func TestSearchNormalizesTerms(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search?state=ca&plate=+abc+", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var data dtos.SearchSightingsResponse
	decodeEnvelope(t, rr.Body.Bytes(), &data)
	if data.State != "CA" || data.Plate != "ABC" {
		t.Errorf("Expected normalized terms CA/ABC, got %s/%s", data.State, data.Plate)
	}
	if len(data.Sightings) != 1 {
		t.Errorf("Expected 1 match, got %d", len(data.Sightings))
	}
}

func TestCreateSighting(t *testing.T) {
	_, _, handler := setupAPI(t)

	rr := postForm(handler, "/add", validSightingForm())
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var data dtos.SightingMutationResponse
	env := decodeEnvelope(t, rr.Body.Bytes(), &data)
	if env.Message != "Sighting added successfully!" {
		t.Errorf("Unexpected message %q", env.Message)
	}
	if data.Sighting == nil || data.Sighting.State != "CA" || data.Sighting.LicensePlate != "ABC1234" {
		t.Errorf("Expected normalized record, got %+v", data.Sighting)
	}
}

func TestCreateSightingValidationError(t *testing.T) {
	_, _, handler := setupAPI(t)

	form := validSightingForm()
	form.Set("car_make", "")

	rr := postForm(handler, "/add", form)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}

	env := decodeEnvelope(t, rr.Body.Bytes(), nil)
	if env.Status != "error" {
		t.Errorf("Expected error status, got %s", env.Status)
	}
}

func TestGetSightingNotFound(t *testing.T) {
	_, _, handler := setupAPI(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/edit/999", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr.Body.Bytes(), nil)
	if env.Message != "Sighting not found." {
		t.Errorf("Unexpected message %q", env.Message)
	}
}

func TestGetSightingBadID(t *testing.T) {
	_, _, handler := setupAPI(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/edit/banana", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestUpdateSighting(t *testing.T) {
	_, db, handler := setupAPI(t)
	rec := seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	form := validSightingForm()
	form.Set("color", "Red")
	form.Del("sighting_time")

	rr := postForm(handler, "/edit/"+itoa(rec.ID), form)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var data dtos.SightingMutationResponse
	decodeEnvelope(t, rr.Body.Bytes(), &data)
	if data.Sighting == nil || data.Sighting.Color != "Red" {
		t.Errorf("Expected updated color, got %+v", data.Sighting)
	}
	if data.Sighting.Timestamp == nil {
		t.Error("Expected original timestamp retained")
	}
}

func TestDeleteSighting(t *testing.T) {
	_, db, handler := setupAPI(t)
	rec := seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := postForm(handler, "/delete/"+itoa(rec.ID), url.Values{})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = postForm(handler, "/delete/"+itoa(rec.ID), url.Values{})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 on second delete, got %d", rr.Code)
	}
}

func TestServeImage(t *testing.T) {
	deps, _, handler := setupAPI(t)

	if err := deps.Images.Write("sighting_1_photo.jpg", []byte("jpegbytes")); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/image/sighting_1_photo.jpg", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "jpegbytes" {
		t.Errorf("Unexpected body %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/image/missing.jpg", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing image, got %d", rr.Code)
	}
}

func TestBulkUploadRequiresFiles(t *testing.T) {
	_, _, handler := setupAPI(t)

	rr := postForm(handler, "/bulk_upload", url.Values{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr.Body.Bytes(), nil)
	if env.Message != "No files selected" {
		t.Errorf("Unexpected message %q", env.Message)
	}
}

func TestCarInfoBareJSON(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "LKUP42", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/car_info/lkup42", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// Bare shape, no envelope.
	var info dtos.CarInfoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !info.Found || info.CarMake != "Honda" || info.CarModel != "Civic" || info.Color != "Blue" {
		t.Errorf("Unexpected car info %+v", info)
	}
	if strings.Contains(rr.Body.String(), "response_time") {
		t.Error("Car info must not use the response envelope")
	}
}

func TestCarInfoUnknownPlate(t *testing.T) {
	_, _, handler := setupAPI(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/car_info/NOPE99", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var info dtos.CarInfoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Found {
		t.Errorf("Expected found=false, got %+v", info)
	}
}

func TestExportCSVHeaders(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export/csv", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "license_plates_export.csv") {
		t.Errorf("Unexpected disposition %s", cd)
	}
	if !strings.Contains(rr.Body.String(), "notes") {
		t.Error("Expected notes column by default")
	}
}

func TestExportCSVWithoutNotesParam(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export/csv?include_notes=false", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "notes") {
		t.Error("Did not expect notes column")
	}
}

func TestExportZipHeaders(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export/zip", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Expected application/zip, got %s", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Error("Expected zip magic bytes")
	}
}

func TestExportSeedHeaders(t *testing.T) {
	_, db, handler := setupAPI(t)
	seedAPISighting(t, db, "ABC1234", time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export/seed", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "license_plates_seed.go") {
		t.Errorf("Unexpected disposition %s", cd)
	}
	if !strings.Contains(rr.Body.String(), "sightingSeedData") {
		t.Error("Expected seed literal in body")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
