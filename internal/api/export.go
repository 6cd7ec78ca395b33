package api

import (
	"net/http"
	"strings"
	"time"

	"platewatch/internal/common"
	"platewatch/internal/services"
)

// includeNotes reads the include_notes query parameter; anything other than
// "true" (the default) disables the notes column.
func includeNotes(r *http.Request) bool {
	val := r.URL.Query().Get("include_notes")
	if val == "" {
		val = "true"
	}
	return strings.ToLower(val) == "true"
}

// ExportCSVHandler handles GET /export/csv
func ExportCSVHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		data, err := deps.Services.Export.ExportCSV(r.Context(), includeNotes(r))
		if err != nil {
			common.RespondError(w, initTime, err, "Export failed")
			return
		}

		deps.Metrics.ExportsTotal.WithLabelValues("csv").Inc()

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename=`+services.ExportBaseName+`.csv`)
		_, _ = w.Write(data)
	}
}

// ExportZipHandler handles GET /export/zip, the archive bundle of CSV plus
// every resolvable image.
func ExportZipHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		data, err := deps.Services.Export.ExportArchive(r.Context(), includeNotes(r))
		if err != nil {
			common.RespondError(w, initTime, err, "Export failed")
			return
		}

		deps.Metrics.ExportsTotal.WithLabelValues("zip").Inc()

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename=`+services.ExportBaseName+`.zip`)
		_, _ = w.Write(data)
	}
}

// ExportSeedHandler handles GET /export/seed, the code-literal export that
// round-trips through the seed loader.
func ExportSeedHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		data, err := deps.Services.Export.ExportSeed(r.Context(), includeNotes(r))
		if err != nil {
			common.RespondError(w, initTime, err, "Export failed")
			return
		}

		deps.Metrics.ExportsTotal.WithLabelValues("seed").Inc()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename=license_plates_seed.go`)
		_, _ = w.Write(data)
	}
}
