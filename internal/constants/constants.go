package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixCarInfo CachePrefix = "CAR_INFO_"
)

// Time layouts used across the sighting lifecycle.
const (
	// FormTimeLayout is what datetime-local form inputs submit.
	FormTimeLayout = "2006-01-02T15:04"
	// ExportTimeLayout is used in CSV and seed exports.
	ExportTimeLayout = "2006-01-02 15:04:05"
	// DateOnlyLayout is used for listing date-range filters.
	DateOnlyLayout = "2006-01-02"
)

// Sort keys accepted by the listing endpoint.
const (
	SortDateDesc  = "date_desc"
	SortDateAsc   = "date_asc"
	SortPlateAsc  = "plate_asc"
	SortPlateDesc = "plate_desc"
	SortMakeAsc   = "make_asc"
	SortMakeDesc  = "make_desc"
)
