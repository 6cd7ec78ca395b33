package entities

import "time"

// Sighting is the sqlx-side row mapping used by the listing/search queries.
type Sighting struct {
	ID            int64      `db:"id"`
	State         string     `db:"state"`
	LicensePlate  string     `db:"license_plate"`
	CarMake       string     `db:"car_make"`
	CarModel      string     `db:"car_model"`
	Color         string     `db:"color"`
	Location      *string    `db:"location"`
	Timestamp     *time.Time `db:"timestamp"`
	Notes         *string    `db:"notes"`
	ImageFilename *string    `db:"image_filename"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Services map[string]ServiceStatus `json:"services"`
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
}
