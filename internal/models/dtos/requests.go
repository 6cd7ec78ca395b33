package dtos

// SightingForm is the parsed add/edit form. SightingTime is the raw
// datetime-local string; parsing and defaulting happen in the service.
type SightingForm struct {
	State        string
	LicensePlate string
	CarMake      string
	CarModel     string
	Color        string
	Location     string
	SightingTime string
	Notes        string
	RemoveImage  bool
}

// ListParams are the optional listing filters. Zero values mean "no filter".
type ListParams struct {
	SortBy    string
	StartDate string
	EndDate   string
}
