package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"vinylapi/internal/library"
	"vinylapi/internal/store"
)

// Uploader pushes a cover image to the external image host.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// AdminHandler proxies record CRUD to the store and keeps the library
// snapshot in sync after every write.
type AdminHandler struct {
	repo     store.Repository
	lib      *library.Library
	uploader Uploader
}

func NewAdminHandler(repo store.Repository, lib *library.Library, uploader Uploader) *AdminHandler {
	return &AdminHandler{repo: repo, lib: lib, uploader: uploader}
}

type recordPayload struct {
	Album  string `json:"album" validate:"required,max=200"`
	Artist string `json:"artist" validate:"required,max=200"`
	Year   string `json:"year" validate:"album_year"`
	Status string `json:"status" validate:"max=100"`
	Image  string `json:"image" validate:"omitempty,url"`
}

func (p recordPayload) fields() store.Fields {
	return store.Fields{
		Album:  p.Album,
		Artist: p.Artist,
		Year:   p.Year,
		Status: p.Status,
		Image:  p.Image,
	}
}

// @Summary List records for the admin panel
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /admin/records [get]
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.lib.Entries()
	JSONSuccess(w, entries, ListMeta{Total: len(entries)})
}

// @Summary Create a record
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} SuccessResponse
// @Failure 422 {object} ErrorResponse
// @Router /admin/records [post]
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", nil)
		return
	}
	if details := ValidateStruct(payload); details != nil {
		JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid record payload", details)
		return
	}

	created, err := h.repo.Create(r.Context(), payload.fields())
	if err != nil {
		JSONError(w, http.StatusBadGateway, "STORE_ERROR", "Record store rejected the create", nil)
		return
	}

	h.resync(r.Context())
	JSONSuccessCreated(w, created)
}

type updateRequest struct {
	ID string `json:"id" validate:"required"`
	recordPayload
}

// @Summary Update a record
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/records [patch]
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", nil)
		return
	}
	if details := ValidateStruct(req); details != nil {
		JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid record payload", details)
		return
	}

	updated, err := h.repo.Update(r.Context(), req.ID, req.fields())
	switch {
	case errors.Is(err, store.ErrNotFound):
		JSONError(w, http.StatusNotFound, "NOT_FOUND", "Record does not exist", nil)
		return
	case err != nil:
		JSONError(w, http.StatusBadGateway, "STORE_ERROR", "Record store rejected the update", nil)
		return
	}

	h.resync(r.Context())
	JSONSuccess(w, updated, nil)
}

type deleteRequest struct {
	ID string `json:"id" validate:"required"`
}

// @Summary Delete a record
// @Tags admin
// @Accept json
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/records [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", nil)
		return
	}
	if details := ValidateStruct(req); details != nil {
		JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing record id", details)
		return
	}

	err := h.repo.Delete(r.Context(), req.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		JSONError(w, http.StatusNotFound, "NOT_FOUND", "Record does not exist", nil)
		return
	case err != nil:
		JSONError(w, http.StatusBadGateway, "STORE_ERROR", "Record store rejected the delete", nil)
		return
	}

	h.resync(r.Context())
	JSONSuccessNoContent(w)
}

// @Summary Refetch the catalog from the record store
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 502 {object} ErrorResponse
// @Router /admin/refresh [post]
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.Refresh(r.Context()); err != nil {
		JSONError(w, http.StatusBadGateway, "SOURCE_UNAVAILABLE", "Record store is unreachable; previous catalog kept", nil)
		return
	}
	JSONSuccess(w, map[string]any{"total": h.lib.Count()}, nil)
}

// @Summary Upload a cover image
// @Description Proxies the file to the image host and returns the hosted URL
// @Tags admin
// @Accept mpfd
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /admin/images [post]
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		JSONError(w, http.StatusBadGateway, "UPLOAD_FAILED", "Image host rejected the upload", nil)
		return
	}

	JSONSuccess(w, map[string]string{"url": url}, nil)
}

// resync refetches the catalog after a write so the public surface shows
// the change. A failed resync is logged, not surfaced: the write itself
// succeeded and the stale snapshot stays consistent.
func (h *AdminHandler) resync(ctx context.Context) {
	if err := h.lib.Refresh(ctx); err != nil {
		log.Printf("catalog resync after write failed: %v", err)
	}
}
