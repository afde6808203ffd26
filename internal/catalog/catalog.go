package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Upstream column names in the hosted base. The store does not enforce a
// schema, so every field is optional and defensively parsed.
const (
	fieldAlbum  = "Album Name"
	fieldArtist = "Artist"
	fieldYear   = "Album Year"
	fieldStatus = "Status"
	fieldGift   = "Gift"
	fieldGender = "Gender"
	fieldRating = "Rating"
	fieldImages = "Images"
)

// DefaultAlbum is the display title used when a row has no album name.
const DefaultAlbum = "Sin título"

// RawRecord is one row as returned by the record store: an identifier plus
// untyped field values. A value may be absent, a scalar, an attachment
// array, or a single-select object depending on how the row was written.
type RawRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Entry is one normalized display record. Every field is always populated:
// absence in the source resolves to the documented default at
// normalization time, so consumers never branch on missing values.
type Entry struct {
	ID     string `json:"id"`
	Album  string `json:"album"`
	Artist string `json:"artist"`
	Year   string `json:"year"`
	Status string `json:"status"`
	Gift   string `json:"gift"`
	Gender string `json:"gender"`
	Rating int    `json:"rating"`
	Image  string `json:"image"`
}

// PlaceholderCover is the generated fallback cover used when a row carries
// no image attachment: a fixed-size labeled rectangle as an SVG data URL.
var PlaceholderCover = "data:image/svg+xml;charset=utf-8," + url.PathEscape(
	`<svg xmlns='http://www.w3.org/2000/svg' width='400' height='400'>`+
		`<rect width='400' height='400' fill='#DDD66B'/>`+
		`<text x='50%' y='50%' text-anchor='middle' fill='#222D00' font-size='24' font-family='Arial' dy='.35em'>Sin portada</text>`+
		`</svg>`)

// Normalize maps a raw row into a fully-defaulted Entry. It is total: no
// input shape produces an error, malformed fields fall back to defaults.
func Normalize(raw RawRecord) Entry {
	f := raw.Fields
	return Entry{
		ID:     raw.ID,
		Album:  stringField(f[fieldAlbum], DefaultAlbum),
		Artist: stringField(f[fieldArtist], ""),
		Year:   stringField(f[fieldYear], ""),
		Status: stringField(f[fieldStatus], ""),
		Gift:   stringField(f[fieldGift], ""),
		Gender: genderField(f[fieldGender]),
		Rating: ratingField(f[fieldRating]),
		Image:  imageField(f[fieldImages]),
	}
}

// NormalizeAll normalizes every row and sorts the result by artist. This is
// the catalog construction path: the whole set is rebuilt on every fetch.
func NormalizeAll(raws []RawRecord) []Entry {
	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		entries = append(entries, Normalize(raw))
	}
	SortByArtist(entries)
	return entries
}

// SortByArtist orders entries by artist. The sort is stable so rows with
// the same artist keep their store order.
func SortByArtist(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Artist < entries[j].Artist
	})
}

// Values holds the distinct filterable values present in the current
// catalog. Recomputed on every catalog replacement: filters reflect values
// actually present, not a fixed enumeration.
type Values struct {
	Statuses []string `json:"statuses"`
	Artists  []string `json:"artists"`
}

// FilterValues collects the distinct non-empty statuses and artists, each
// sorted ascending.
func FilterValues(entries []Entry) Values {
	return Values{
		Statuses: distinct(entries, func(e Entry) string { return e.Status }),
		Artists:  distinct(entries, func(e Entry) string { return e.Artist }),
	}
}

func distinct(entries []Entry, pick func(Entry) string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, e := range entries {
		v := pick(e)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// stringField renders a scalar field for display. Numeric values show up
// when the upstream column type was changed after rows were written.
func stringField(v any, fallback string) string {
	s := scalarString(v)
	if s == "" {
		return fallback
	}
	return s
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// genderField resolves the collection-descriptor label, which the store
// serializes inconsistently: an array of labels, a single-select object
// keyed under one of several names, or a plain scalar.
func genderField(v any) string {
	switch g := v.(type) {
	case []any:
		parts := make([]string, 0, len(g))
		for _, item := range g {
			if s := scalarString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, key := range []string{"name", "value", "text", "result"} {
			if s := scalarString(g[key]); s != "" {
				return s
			}
		}
		return ""
	default:
		return scalarString(v)
	}
}

func ratingField(v any) int {
	var rating int
	switch r := v.(type) {
	case float64:
		rating = int(r)
	case int:
		rating = r
	case string:
		rating, _ = strconv.Atoi(r)
	}
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return rating
}

// imageField picks the display URL from the first attachment: large
// thumbnail, then small, then full, then the original attachment URL, then
// the generated placeholder.
func imageField(v any) string {
	attachments, ok := v.([]any)
	if !ok || len(attachments) == 0 {
		return PlaceholderCover
	}
	first, ok := attachments[0].(map[string]any)
	if !ok {
		return PlaceholderCover
	}
	if thumbs, ok := first["thumbnails"].(map[string]any); ok {
		for _, variant := range []string{"large", "small", "full"} {
			if t, ok := thumbs[variant].(map[string]any); ok {
				if u := scalarString(t["url"]); u != "" {
					return u
				}
			}
		}
	}
	if u := scalarString(first["url"]); u != "" {
		return u
	}
	return PlaceholderCover
}
