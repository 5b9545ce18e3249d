package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dionysia/internal/httpapi"
	"dionysia/internal/logging"
	"dionysia/internal/movie"
	"dionysia/internal/services"
)

const (
	typeMovie       = "1"
	addedAtLayout   = "2006-01-02 15:04:05"
	collectionField = "collection"
)

// Section is a library section as listed by /library/sections.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Tag is a named tag such as a collection.
type Tag struct {
	Tag string `json:"tag"`
}

// Media describes one version of a movie.
type Media struct {
	VideoResolution string `json:"videoResolution"`
}

// Movie is a movie item of a library section.
type Movie struct {
	RatingKey   string  `json:"ratingKey"`
	Title       string  `json:"title"`
	Year        int     `json:"year"`
	AddedAt     int64   `json:"addedAt"`
	Collections []Tag   `json:"Collection"`
	Media       []Media `json:"Media"`
}

func (m Movie) String() string {
	return m.Ref().String()
}

// Ref converts the movie to a title and year reference.
func (m Movie) Ref() movie.Ref {
	return movie.Ref{Title: m.Title, Year: m.Year}
}

// CollectionNames returns the movie's collection tags.
func (m Movie) CollectionNames() []string {
	names := make([]string, 0, len(m.Collections))
	for _, tag := range m.Collections {
		if name := strings.TrimSpace(tag.Tag); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// InCollection reports whether the movie carries the collection tag, ignoring case.
func (m Movie) InCollection(name string) bool {
	for _, existing := range m.CollectionNames() {
		if strings.EqualFold(existing, name) {
			return true
		}
	}
	return false
}

// HasResolution reports whether any version of the movie has one of the given resolutions.
func (m Movie) HasResolution(resolutions ...string) bool {
	for _, media := range m.Media {
		for _, want := range resolutions {
			if strings.EqualFold(media.VideoResolution, want) {
				return true
			}
		}
	}
	return false
}

type mediaContainer struct {
	MediaContainer struct {
		Directory []Section `json:"Directory"`
		Metadata  []Movie   `json:"Metadata"`
	} `json:"MediaContainer"`
}

// SectionKey resolves a library title to its section key. Sections are
// fetched once per client.
func (c *Client) SectionKey(ctx context.Context, title string) (string, error) {
	sections, err := c.ensureSections(ctx)
	if err != nil {
		return "", err
	}
	section, ok := sections[strings.ToLower(strings.TrimSpace(title))]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "plex", "resolve library", fmt.Sprintf("library %q not found", title), nil)
	}
	return section.Key, nil
}

func (c *Client) ensureSections(ctx context.Context) (map[string]Section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections != nil {
		return c.sections, nil
	}

	var payload mediaContainer
	if err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/library/sections"}, &payload); err != nil {
		return nil, err
	}
	sections := make(map[string]Section, len(payload.MediaContainer.Directory))
	for _, dir := range payload.MediaContainer.Directory {
		title := strings.ToLower(strings.TrimSpace(dir.Title))
		if title == "" || dir.Key == "" {
			continue
		}
		sections[title] = dir
	}
	c.sections = sections
	return sections, nil
}

// Movies lists every movie of a section.
func (c *Client) Movies(ctx context.Context, sectionKey string) ([]Movie, error) {
	var payload mediaContainer
	req := httpapi.Request{
		Method: http.MethodGet,
		Path:   "/library/sections/" + url.PathEscape(sectionKey) + "/all",
		Query:  url.Values{"type": {typeMovie}},
	}
	if err := c.api.Do(ctx, req, &payload); err != nil {
		return nil, err
	}
	return payload.MediaContainer.Metadata, nil
}

// AddCollection tags the movie with a collection. The existing tags are
// resent with the new one appended so the edit does not replace them.
func (c *Client) AddCollection(ctx context.Context, sectionKey string, m Movie, name string) error {
	values := url.Values{}
	tags := append(m.CollectionNames(), name)
	for i, tag := range tags {
		values.Set(fmt.Sprintf("%s[%d].tag.tag", collectionField, i), tag)
	}
	values.Set(collectionField+".locked", "1")
	return c.edit(ctx, sectionKey, m, values)
}

// RemoveCollection removes a collection tag from the movie.
func (c *Client) RemoveCollection(ctx context.Context, sectionKey string, m Movie, name string) error {
	values := url.Values{}
	values.Set(collectionField+"[].tag.tag-", name)
	values.Set(collectionField+".locked", "1")
	return c.edit(ctx, sectionKey, m, values)
}

// SetAddedAt rewrites the movie's added date.
func (c *Client) SetAddedAt(ctx context.Context, sectionKey string, m Movie, at time.Time) error {
	values := url.Values{}
	values.Set("addedAt.value", at.Format(addedAtLayout))
	values.Set("addedAt.locked", "1")
	return c.edit(ctx, sectionKey, m, values)
}

func (c *Client) edit(ctx context.Context, sectionKey string, m Movie, values url.Values) error {
	if strings.TrimSpace(m.RatingKey) == "" {
		return services.Wrap(services.ErrValidation, "plex", "edit", fmt.Sprintf("%s has no rating key", m), nil)
	}
	values.Set("type", typeMovie)
	values.Set("id", m.RatingKey)
	req := httpapi.Request{
		Method: http.MethodPut,
		Path:   "/library/sections/" + url.PathEscape(sectionKey) + "/all",
		Query:  values,
	}
	if err := c.api.Do(ctx, req, nil); err != nil {
		return err
	}
	c.logger.Debug("plex item edited",
		logging.String("movie", m.String()),
		logging.String("rating_key", m.RatingKey),
		logging.Int("fields", len(values)),
	)
	return nil
}
