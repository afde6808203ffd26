// Package search provides the approximate text index behind the public
// browse experience: typo-tolerant, location-independent matching over the
// album, artist, year and status fields of the catalog.
package search

import (
	"sort"
	"strings"

	"vinylapi/internal/catalog"
)

// Defaults tuned for a catalog of a few hundred entries.
const (
	// DefaultThreshold is the maximum normalized edit distance still
	// counted as a match (0 exact, 1 anything).
	DefaultThreshold = 0.35
	// DefaultDistance caps how far into a field the match window slides.
	DefaultDistance = 80
	// DefaultMinQueryLength is the minimum query length before any lookup
	// is attempted; shorter queries behave like an empty query.
	DefaultMinQueryLength = 2
)

// A non-exact match never outranks an exact field match.
const nearMatchCap = 0.99

// Options tune the matcher. Zero values fall back to the defaults above.
type Options struct {
	Threshold      float64
	Distance       int
	MinQueryLength int
}

// Index is the approximate text index over a catalog snapshot. It is built
// once per catalog replacement and rebuilt wholesale, never incrementally
// updated; queries against an Index never observe a partial build.
type Index struct {
	opts Options
	docs []document
}

type document struct {
	entry  catalog.Entry
	fields []string
}

// New creates an empty index with the given options.
func New(opts Options) *Index {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Distance <= 0 {
		opts.Distance = DefaultDistance
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	return &Index{opts: opts}
}

// Build replaces the index contents with the given catalog. Cost is linear
// in the catalog size, cheap enough to run synchronously on every fetch.
func (idx *Index) Build(entries []catalog.Entry) {
	docs := make([]document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, document{
			entry: e,
			fields: []string{
				strings.ToLower(e.Album),
				strings.ToLower(e.Artist),
				strings.ToLower(e.Year),
				strings.ToLower(e.Status),
			},
		})
	}
	idx.docs = docs
}

// Search returns entries ranked by descending match quality, ties broken by
// catalog order. An empty or sub-minimum-length query returns an empty
// result, not the full catalog; callers distinguish "no query" upstream.
func (idx *Index) Search(query string) []catalog.Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < idx.opts.MinQueryLength {
		return []catalog.Entry{}
	}

	type hit struct {
		entry catalog.Entry
		score float64
	}
	hits := make([]hit, 0)
	for _, doc := range idx.docs {
		best := 0.0
		for _, field := range doc.fields {
			if s := idx.score(query, field); s > best {
				best = s
			}
		}
		if best >= 1.0-idx.opts.Threshold {
			hits = append(hits, hit{entry: doc.entry, score: best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	results := make([]catalog.Entry, 0, len(hits))
	for _, h := range hits {
		results = append(results, h.entry)
	}
	return results
}

// score rates how well query matches field, 1.0 for an exact match. The
// query may appear anywhere in the field: similarity is taken as the best
// over windows of roughly the query's length sliding across the field.
func (idx *Index) score(query, field string) float64 {
	if field == "" {
		return 0
	}
	if field == query {
		return 1.0
	}

	q := []rune(query)
	f := []rune(field)
	best := 0.0
	for _, size := range []int{len(q) - 1, len(q), len(q) + 1} {
		if size < 1 {
			continue
		}
		for start := 0; start <= len(f)-size && start <= idx.opts.Distance; start++ {
			s := similarity(q, f[start:start+size])
			if s > best {
				best = s
			}
		}
	}
	// Whole-field comparison covers fields shorter than the query.
	if s := similarity(q, f); s > best {
		best = s
	}
	if best > nearMatchCap {
		best = nearMatchCap
	}
	return best
}

// similarity is the normalized Levenshtein similarity: 1 identical, 0 when
// every character differs.
func similarity(a, b []rune) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance between two rune slices with the
// classic two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
