// Package view derives the browse page: a filtered, page-sliced subset of
// the catalog driven by two independent selectors and a page cursor.
package view

import (
	"vinylapi/internal/catalog"
)

// NoFilter is the selector value that matches every entry.
const NoFilter = ""

// DefaultPageSize is the number of entries shown per page.
const DefaultPageSize = 20

// Filter keeps entries matching both selectors. A NoFilter selector
// matches everything; otherwise the match is exact. Catalog order is
// preserved.
func Filter(entries []catalog.Entry, status, artist string) []catalog.Entry {
	kept := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if status != NoFilter && e.Status != status {
			continue
		}
		if artist != NoFilter && e.Artist != artist {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// Page is one page slice of a filtered catalog.
type Page struct {
	Items      []catalog.Entry `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

// Paginate slices one page out of filtered. The page number is clamped to
// [1, totalPages]; an empty input still yields a single empty page, so
// callers never see zero pages or divide by zero.
func Paginate(filtered []catalog.Entry, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:      filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}
}

// State is the transient browse state: both selectors plus the 1-based
// page cursor. It lives for a UI session and is never persisted.
type State struct {
	Status string
	Artist string
	Page   int
}

// NewState starts with no filters on the first page.
func NewState() State {
	return State{Status: NoFilter, Artist: NoFilter, Page: 1}
}

// SelectStatus sets the status selector and resets to the first page.
func (s *State) SelectStatus(v string) {
	s.Status = v
	s.Page = 1
}

// SelectArtist sets the artist selector and resets to the first page.
func (s *State) SelectArtist(v string) {
	s.Artist = v
	s.Page = 1
}

// ResetFilters clears both selectors and returns to the first page.
func (s *State) ResetFilters() {
	s.Status = NoFilter
	s.Artist = NoFilter
	s.Page = 1
}

// NextPage advances the cursor, clamped to totalPages.
func (s *State) NextPage(totalPages int) {
	s.Page++
	s.clamp(totalPages)
}

// PrevPage moves the cursor back, floored at page 1.
func (s *State) PrevPage() {
	s.Page--
	if s.Page < 1 {
		s.Page = 1
	}
}

// Clamp pulls the cursor back into range after the catalog shrinks, e.g.
// when a refresh leaves fewer pages than the current cursor.
func (s *State) Clamp(totalPages int) {
	s.clamp(totalPages)
}

func (s *State) clamp(totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if s.Page > totalPages {
		s.Page = totalPages
	}
	if s.Page < 1 {
		s.Page = 1
	}
}
