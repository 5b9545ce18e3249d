// Package movie defines the movie reference shared by list sources and targets.
package movie

import (
	"fmt"
	"strconv"
	"strings"

	"dionysia/internal/textutil"
)

// Ref identifies a movie by external id or by title and year.
type Ref struct {
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
	IMDBID string `json:"imdb_id,omitempty"`
	TMDBID int    `json:"tmdb_id,omitempty"`
}

// Key returns the identity used for reconciliation: the IMDb id when present,
// then the TMDb id, then the normalized title and year.
func (r Ref) Key() string {
	if id := strings.ToLower(strings.TrimSpace(r.IMDBID)); id != "" {
		return "imdb:" + id
	}
	if r.TMDBID > 0 {
		return "tmdb:" + strconv.Itoa(r.TMDBID)
	}
	return "title:" + textutil.NormalizeTitle(r.Title) + "|" + strconv.Itoa(r.Year)
}

// String renders "Title (Year)" for log lines.
func (r Ref) String() string {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = r.IMDBID
	}
	if r.Year > 0 {
		return fmt.Sprintf("%s (%d)", title, r.Year)
	}
	return title
}

// WithDefaultYear returns a copy whose zero year is replaced by year.
func (r Ref) WithDefaultYear(year int) Ref {
	if r.Year == 0 {
		r.Year = year
	}
	return r
}

// Keys maps refs to their identity keys, preserving order.
func Keys(refs []Ref) []string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, ref.Key())
	}
	return keys
}
