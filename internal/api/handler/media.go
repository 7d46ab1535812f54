package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/gocatalog/internal/usecase"
)

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 100 << 20

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// MediaHandler handles item media uploads, deletions and thumbnails.
type MediaHandler struct {
	media          usecase.MediaService
	thumbnails     usecase.ThumbnailService
	maxUploadBytes int64
}

// NewMediaHandler creates a new MediaHandler. maxUploadBytes <= 0 selects DefaultMaxUploadBytes.
func NewMediaHandler(media usecase.MediaService, thumbnails usecase.ThumbnailService, maxUploadBytes int64) *MediaHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &MediaHandler{
		media:          media,
		thumbnails:     thumbnails,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /v1/items/{id}/media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_item_id", "Invalid item ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "file_too_large", "Upload exceeds the size limit")
			return
		}
		Error(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "missing_file", "No file uploaded")
		return
	}
	defer file.Close()

	media, err := h.media.UploadMedia(r.Context(), usecase.UploadMediaInput{
		ItemID: itemID,
		Kind:   r.FormValue("fileType"),
		File:   file,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, toMediaResponse(media))
}

// Delete handles DELETE /v1/items/{id}/media?mediaId=N
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, ok1 := parseID(chi.URLParam(r, "id"))
	mediaID, ok2 := parseID(r.URL.Query().Get("mediaId"))
	if !ok1 || !ok2 {
		Error(w, http.StatusBadRequest, "invalid_argument", "Invalid item ID or media ID")
		return
	}

	if err := h.media.DeleteMedia(r.Context(), itemID, mediaID); err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "Media deleted successfully"})
}

// Thumbnail handles GET /v1/items/{id}/media/thumbnail?mediaId=N
// and redirects to the cached still frame of the video.
func (h *MediaHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	rawMediaID := r.URL.Query().Get("mediaId")
	if rawMediaID == "" {
		Error(w, http.StatusBadRequest, "missing_media_id", "Media ID is required")
		return
	}

	itemID, ok1 := parseID(chi.URLParam(r, "id"))
	mediaID, ok2 := parseID(rawMediaID)
	if !ok1 || !ok2 {
		Error(w, http.StatusBadRequest, "invalid_argument", "Invalid item ID or media ID")
		return
	}

	ref, err := h.thumbnails.GetThumbnail(r.Context(), itemID, mediaID)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, ref, http.StatusTemporaryRedirect)
}
