package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// SightingResponse is the wire form of a sighting record. Optional fields
// are pointers so absent values serialize as null, matching storage.
type SightingResponse struct {
	ID            int64      `json:"id"`
	State         string     `json:"state"`
	LicensePlate  string     `json:"license_plate"`
	CarMake       string     `json:"car_make"`
	CarModel      string     `json:"car_model"`
	Color         string     `json:"color"`
	Location      *string    `json:"location"`
	Timestamp     *time.Time `json:"timestamp"`
	Notes         *string    `json:"notes"`
	ImageFilename *string    `json:"image_filename"`
	ImageURL      string     `json:"image_url,omitempty"`
}

// ListSightingsResponse carries a filtered/sorted listing. Warnings hold
// non-fatal problems like malformed filter dates.
type ListSightingsResponse struct {
	Sightings []SightingResponse `json:"sightings"`
	SortBy    string             `json:"sort_by"`
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
}

type SearchSightingsResponse struct {
	State     string             `json:"state,omitempty"`
	Plate     string             `json:"plate,omitempty"`
	Sightings []SightingResponse `json:"sightings"`
}

// SightingMutationResponse is returned by create/update. Warnings surface
// soft failures (rejected image type, unparseable timestamp) that did not
// abort the operation.
type SightingMutationResponse struct {
	Sighting *SightingResponse `json:"sighting"`
	Warnings []string          `json:"warnings,omitempty"`
}

type CarInfoResponse struct {
	Found    bool   `json:"found"`
	CarMake  string `json:"car_make,omitempty"`
	CarModel string `json:"car_model,omitempty"`
	Color    string `json:"color,omitempty"`
}

// BulkImportResponse aggregates a bulk image upload. ErrorCount counts every
// failure; Errors is capped for display.
type BulkImportResponse struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors,omitempty"`
}
