package http

import (
	"net/http"
	"strconv"

	"vinylapi/internal/library"
	"vinylapi/internal/view"
)

// CatalogHandler serves the public browse surface.
type CatalogHandler struct {
	lib *library.Library
}

func NewCatalogHandler(lib *library.Library) *CatalogHandler {
	return &CatalogHandler{lib: lib}
}

// @Summary Browse the catalog
// @Description One page of the collection, optionally filtered by status and artist
// @Tags catalog
// @Produce json
// @Param status query string false "Filter by status"
// @Param artist query string false "Filter by artist"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} SuccessResponse
// @Router /catalog [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	artist := r.URL.Query().Get("artist")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = view.DefaultPageSize
	}

	result := h.lib.Browse(status, artist, page, pageSize)

	JSONSuccess(w, result.Items, PageMeta{
		Page:       result.Page,
		PageSize:   pageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// @Summary Search the catalog
// @Description Fuzzy search over album, artist, year and status
// @Tags catalog
// @Produce json
// @Param q query string true "Search query, at least 2 characters"
// @Success 200 {object} SuccessResponse
// @Router /catalog/search [get]
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	// A missing or too-short query is not an error: it returns zero
	// results and the UI shows its "no query" state.
	results := h.lib.Search(query)

	JSONSuccess(w, results, SearchMeta{Query: query, Count: len(results)})
}

// @Summary List available filter values
// @Description Distinct statuses and artists present in the current catalog
// @Tags catalog
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /catalog/filters [get]
func (h *CatalogHandler) Filters(w http.ResponseWriter, r *http.Request) {
	JSONSuccess(w, h.lib.FilterValues(), nil)
}
