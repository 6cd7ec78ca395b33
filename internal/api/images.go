package api

import (
	"io"
	"net/http"
	"time"

	"platewatch/internal/common"

	"github.com/go-chi/chi/v5"
)

// ServeImageHandler handles GET /image/{filename}, serving a stored photo.
func ServeImageHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")

		path, err := deps.Images.Resolve(filename)
		if err != nil || !deps.Images.Exists(filename) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, path)
	}
}

// BulkUploadHandler handles POST /bulk_upload
//
// Accepts a batch of image files under the "images" field and matches each
// one to an existing sighting by filename. The batch always completes;
// per-file failures are counted and reported.
func BulkUploadHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			common.RespondError(w, initTime, err, "Invalid upload", http.StatusBadRequest)
			return
		}

		var uploads []common.Upload
		if r.MultipartForm != nil {
			for _, fh := range r.MultipartForm.File["images"] {
				if fh.Filename == "" {
					continue
				}
				f, err := fh.Open()
				if err != nil {
					common.RespondError(w, initTime, err, "Failed to read upload")
					return
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					common.RespondError(w, initTime, err, "Failed to read upload")
					return
				}
				uploads = append(uploads, common.Upload{Filename: fh.Filename, Data: data})
			}
		}
		if len(uploads) == 0 {
			common.RespondError(w, initTime, nil, "No files selected", http.StatusBadRequest)
			return
		}

		result, err := deps.Services.BulkImport.Import(r.Context(), uploads)
		if err != nil {
			common.RespondError(w, initTime, err, "Bulk import failed")
			return
		}

		deps.Metrics.BulkImportFilesTotal.WithLabelValues("success").Add(float64(result.SuccessCount))
		deps.Metrics.BulkImportFilesTotal.WithLabelValues("failure").Add(float64(result.ErrorCount))

		common.RespondSuccess(w, initTime, "Bulk upload processed", result)
	}
}
