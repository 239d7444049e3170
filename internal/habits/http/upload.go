package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
)

// multipartOverhead is allowed on top of the file limit for form fields and
// part headers.
const multipartOverhead = 1 << 20

// maxMemory is how much of a multipart form is buffered before spilling to
// temporary files.
const maxMemory = 8 << 20

type UploadHandler struct {
	UploadService *service.UploadService
	Identity      Identity
	MaxBytes      int64
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, service.ErrFileTooLarge)
			return
		}
		writeError(w, r, errBadBody)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	userID, err := h.Identity.User(r, r.FormValue("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, service.ErrMissingFields)
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := h.UploadService.Upload(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, UploadResponse{
		Success:  true,
		FileHash: upload.FileHash,
		Upload:   toUploadInfo(upload),
	})
}

func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Identity.User(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	uploads, err := h.UploadService.ListUploads(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]UploadInfo, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, toUploadInfo(u))
	}
	httpx.WriteJSON(w, http.StatusOK, ListUploadsResponse{Success: true, Uploads: out})
}
