package radarr

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Movie is the subset of a Radarr movie record the jobs need.
type Movie struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Year        int        `json:"year"`
	HasFile     bool       `json:"hasFile"`
	Downloaded  *bool      `json:"downloaded,omitempty"`
	IsAvailable bool       `json:"isAvailable"`
	Monitored   bool       `json:"monitored"`
	Tags        []int      `json:"tags"`
	InCinemas   *time.Time `json:"inCinemas,omitempty"`
	Ratings     *Ratings   `json:"ratings,omitempty"`
}

func (m Movie) String() string {
	if m.Year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, m.Year)
	}
	return m.Title
}

// IsDownloaded reports whether the movie has a file. Older servers send an
// explicit downloaded flag; newer ones only hasFile.
func (m Movie) IsDownloaded() bool {
	if m.Downloaded != nil {
		return *m.Downloaded
	}
	return m.HasFile
}

// SearchEligible reports whether a search could fill the movie: it is
// missing and already released.
func (m Movie) SearchEligible() bool {
	return !m.IsDownloaded() && m.IsAvailable
}

// HasTag reports whether the movie carries the tag id.
func (m Movie) HasTag(id int) bool {
	for _, tag := range m.Tags {
		if tag == id {
			return true
		}
	}
	return false
}

// Ratings holds one vote count and score. Servers report either a flat
// {votes, value} object or one object per source; the IMDb source wins over
// TMDb when several are present.
type Ratings struct {
	Votes int     `json:"votes"`
	Value float64 `json:"value"`
}

var ratingSources = []string{"imdb", "tmdb", "metacritic", "rottenTomatoes"}

// UnmarshalJSON accepts both the flat and the per-source shapes.
func (r *Ratings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode ratings: %w", err)
	}
	_, hasVotes := fields["votes"]
	_, hasValue := fields["value"]
	if hasVotes || hasValue {
		return decodeFlat(data, r)
	}
	for _, source := range ratingSources {
		raw, ok := fields[source]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		return decodeFlat(raw, r)
	}
	return nil
}

func decodeFlat(data []byte, r *Ratings) error {
	var flat struct {
		Votes *float64 `json:"votes"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode ratings: %w", err)
	}
	if flat.Votes != nil {
		r.Votes = int(*flat.Votes)
	}
	if flat.Value != nil {
		r.Value = *flat.Value
	}
	return nil
}

// Tag is a Radarr tag.
type Tag struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}
