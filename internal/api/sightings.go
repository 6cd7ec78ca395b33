package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"platewatch/internal/common"
	"platewatch/internal/constants"
	"platewatch/internal/models/dtos"
	"platewatch/internal/services"

	"github.com/go-chi/chi/v5"
)

// ListSightingsHandler handles GET /
//
// Returns all sightings, optionally filtered by a calendar-day date range
// and ordered by the requested sort key. Malformed filter dates are
// reported as warnings alongside the unfiltered-by-that-date results.
func ListSightingsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		params := dtos.ListParams{
			SortBy:    r.URL.Query().Get("sort_by"),
			StartDate: r.URL.Query().Get("start_date"),
			EndDate:   r.URL.Query().Get("end_date"),
		}
		if params.SortBy == "" {
			params.SortBy = constants.SortDateDesc
		}

		rows, warnings, err := deps.Repo.Query.List(r.Context(), params)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to fetch sightings")
			return
		}

		common.RespondSuccess(w, initTime, "Sightings fetched", dtos.ListSightingsResponse{
			Sightings: entitiesToSightingResponses(rows),
			SortBy:    params.SortBy,
			StartDate: params.StartDate,
			EndDate:   params.EndDate,
			Warnings:  warnings,
		})
	}
}

// SearchSightingsHandler handles GET /search
//
// Exact match on state, substring match on plate, both case-insensitive.
// With no filters at all the request redirects to the unfiltered listing.
func SearchSightingsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		state := normalizeQueryTerm(r.URL.Query().Get("state"))
		plate := normalizeQueryTerm(r.URL.Query().Get("plate"))

		if state == "" && plate == "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		rows, err := deps.Repo.Query.Search(r.Context(), state, plate)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to search sightings")
			return
		}

		common.RespondSuccess(w, initTime, "Search results fetched", dtos.SearchSightingsResponse{
			State:     state,
			Plate:     plate,
			Sightings: entitiesToSightingResponses(rows),
		})
	}
}

// GetSightingHandler handles GET /edit/{id}, returning the record the edit
// form is prefilled from.
func GetSightingHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := sightingID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid sighting id", http.StatusBadRequest)
			return
		}

		rec, err := deps.Repo.Sightings.GetByID(r.Context(), id)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to fetch sighting")
			return
		}
		if rec == nil {
			common.RespondError(w, initTime, nil, "Sighting not found.", http.StatusNotFound)
			return
		}

		resp := toSightingResponse(*rec)
		common.RespondSuccess(w, initTime, "Sighting fetched", &resp)
	}
}

// CreateSightingHandler handles POST /add
func CreateSightingHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		form, upload, err := parseSightingForm(w, r, deps.Config.MaxUploadBytes)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid form submission", http.StatusBadRequest)
			return
		}

		rec, warnings, err := deps.Services.Sightings.Create(r.Context(), form, upload)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				common.RespondError(w, initTime, err, "Validation failed", http.StatusBadRequest)
				return
			}
			common.RespondError(w, initTime, err, "Error adding sighting")
			return
		}

		deps.Metrics.SightingsCreatedTotal.Inc()

		resp := toSightingResponse(*rec)
		common.RespondSuccess(w, initTime, "Sighting added successfully!", dtos.SightingMutationResponse{
			Sighting: &resp,
			Warnings: warnings,
		}, http.StatusCreated)
	}
}

// UpdateSightingHandler handles POST /edit/{id}
func UpdateSightingHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := sightingID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid sighting id", http.StatusBadRequest)
			return
		}

		form, upload, err := parseSightingForm(w, r, deps.Config.MaxUploadBytes)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid form submission", http.StatusBadRequest)
			return
		}

		rec, warnings, err := deps.Services.Sightings.Update(r.Context(), id, form, upload)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNotFound):
				common.RespondError(w, initTime, err, "Sighting not found.", http.StatusNotFound)
			case errors.Is(err, services.ErrValidation):
				common.RespondError(w, initTime, err, "Validation failed", http.StatusBadRequest)
			default:
				common.RespondError(w, initTime, err, "Error updating sighting")
			}
			return
		}

		resp := toSightingResponse(*rec)
		common.RespondSuccess(w, initTime, "Sighting updated successfully!", dtos.SightingMutationResponse{
			Sighting: &resp,
			Warnings: warnings,
		})
	}
}

// DeleteSightingHandler handles POST /delete/{id}
func DeleteSightingHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, err := sightingID(r)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid sighting id", http.StatusBadRequest)
			return
		}

		if err := deps.Services.Sightings.Delete(r.Context(), id); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				common.RespondError(w, initTime, err, "Sighting not found.", http.StatusNotFound)
				return
			}
			common.RespondError(w, initTime, err, "Error deleting sighting")
			return
		}

		deps.Metrics.SightingsDeletedTotal.Inc()
		common.RespondSuccess(w, initTime, "Sighting deleted successfully.", nil)
	}
}

func sightingID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func normalizeQueryTerm(s string) string {
	return common.UpperTrim(s)
}

// parseSightingForm reads the add/edit form. The whole request body is
// capped at the configured upload limit.
func parseSightingForm(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (dtos.SightingForm, *common.Upload, error) {
	var form dtos.SightingForm

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return form, nil, err
		}
		if err := r.ParseForm(); err != nil {
			return form, nil, err
		}
	}

	form = dtos.SightingForm{
		State:        r.FormValue("state"),
		LicensePlate: r.FormValue("license_plate"),
		CarMake:      r.FormValue("car_make"),
		CarModel:     r.FormValue("car_model"),
		Color:        r.FormValue("color"),
		Location:     r.FormValue("location"),
		SightingTime: r.FormValue("sighting_time"),
		Notes:        r.FormValue("notes"),
		RemoveImage:  r.FormValue("remove_image") == "true",
	}

	var upload *common.Upload
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 && files[0].Filename != "" {
			f, err := files[0].Open()
			if err != nil {
				return form, nil, err
			}
			defer f.Close()

			data, err := io.ReadAll(f)
			if err != nil {
				return form, nil, err
			}
			upload = &common.Upload{Filename: files[0].Filename, Data: data}
		}
	}

	return form, upload, nil
}
