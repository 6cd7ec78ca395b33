package api

import (
	"encoding/json"
	"net/http"
	"time"

	"platewatch/internal/common"

	"github.com/go-chi/chi/v5"
)

// CarInfoHandler handles GET /api/car_info/{plate}
//
// Returns the bare {found, car_make, car_model, color} shape the form
// autofill expects, not the standard envelope.
func CarInfoHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		info, err := deps.Services.CarInfo.GetCarInfo(r.Context(), chi.URLParam(r, "plate"))
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to fetch car info")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}
}
