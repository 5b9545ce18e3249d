package plex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dionysia/internal/logging"
	"dionysia/internal/movie"
	"dionysia/internal/textutil"
)

const suggestionMinScore = 0.5

// Catalog is an in-memory snapshot of one movie section. Edits made through
// the catalog update the snapshot so later lookups in the same run see them.
type Catalog struct {
	client     *Client
	sectionKey string
	title      string
	movies     []Movie
	byKey      map[string][]int
	logger     *slog.Logger
}

// OpenCatalog resolves the library by title and loads its movies.
func (c *Client) OpenCatalog(ctx context.Context, library string) (*Catalog, error) {
	key, err := c.SectionKey(ctx, library)
	if err != nil {
		return nil, err
	}
	movies, err := c.Movies(ctx, key)
	if err != nil {
		return nil, err
	}
	catalog := &Catalog{
		client:     c,
		sectionKey: key,
		title:      library,
		movies:     movies,
		byKey:      make(map[string][]int, len(movies)),
		logger:     c.logger,
	}
	for i, m := range movies {
		k := m.Ref().Key()
		catalog.byKey[k] = append(catalog.byKey[k], i)
	}
	c.logger.Debug("plex library loaded", logging.String("library", library), logging.Int("movies", len(movies)))
	return catalog, nil
}

// Len returns the number of movies in the snapshot.
func (c *Catalog) Len() int { return len(c.movies) }

// Find returns the movie matching the reference's title and year. Titles
// compare after normalization, so case and accents do not matter.
func (c *Catalog) Find(ref movie.Ref) (Movie, bool) {
	probe := movie.Ref{Title: ref.Title, Year: ref.Year}
	indexes := c.byKey[probe.Key()]
	if len(indexes) == 0 {
		return Movie{}, false
	}
	return c.movies[indexes[0]], true
}

// Suggest returns the closest library title for a movie that was not found.
func (c *Catalog) Suggest(title string) (string, bool) {
	candidates := make([]string, 0, len(c.movies))
	for _, m := range c.movies {
		candidates = append(candidates, m.String())
	}
	match, _, ok := textutil.ClosestTitle(title, candidates, suggestionMinScore)
	return match, ok
}

// Resolve maps references to library movies. References without a year use
// defaultYear. Unmatched references are logged and skipped.
func (c *Catalog) Resolve(ctx context.Context, refs []movie.Ref, defaultYear int) []Movie {
	logger := logging.WithContext(ctx, c.logger)
	found := make([]Movie, 0, len(refs))
	for _, ref := range refs {
		ref = ref.WithDefaultYear(defaultYear)
		m, ok := c.Find(ref)
		if !ok {
			attrs := []logging.Attr{logging.String("movie", ref.String()), logging.String("library", c.title)}
			if suggestion, ok := c.Suggest(ref.String()); ok {
				attrs = append(attrs, logging.String("closest", suggestion))
			}
			logger.Info("movie not found in plex", logging.Args(attrs...)...)
			continue
		}
		found = append(found, m)
	}
	return found
}

// Collection returns the movies tagged with the collection, in library order.
func (c *Catalog) Collection(name string) []Movie {
	var members []Movie
	for _, m := range c.movies {
		if m.InCollection(name) {
			members = append(members, m)
		}
	}
	return members
}

// AddCollection tags the movie and records the tag in the snapshot.
func (c *Catalog) AddCollection(ctx context.Context, m Movie, name string) error {
	current := c.current(m)
	if current.InCollection(name) {
		return nil
	}
	if err := c.client.AddCollection(ctx, c.sectionKey, current, name); err != nil {
		return err
	}
	c.update(m.RatingKey, func(stored *Movie) {
		stored.Collections = append(stored.Collections, Tag{Tag: name})
	})
	return nil
}

// RemoveCollection removes the tag and records the removal in the snapshot.
func (c *Catalog) RemoveCollection(ctx context.Context, m Movie, name string) error {
	if err := c.client.RemoveCollection(ctx, c.sectionKey, c.current(m), name); err != nil {
		return err
	}
	c.update(m.RatingKey, func(stored *Movie) {
		kept := stored.Collections[:0]
		for _, tag := range stored.Collections {
			if !strings.EqualFold(tag.Tag, name) {
				kept = append(kept, tag)
			}
		}
		stored.Collections = kept
	})
	return nil
}

// SetAddedAt rewrites the movie's added date.
func (c *Catalog) SetAddedAt(ctx context.Context, m Movie, at time.Time) error {
	if err := c.client.SetAddedAt(ctx, c.sectionKey, m, at); err != nil {
		return err
	}
	c.update(m.RatingKey, func(stored *Movie) { stored.AddedAt = at.Unix() })
	return nil
}

func (c *Catalog) current(m Movie) Movie {
	for _, stored := range c.movies {
		if stored.RatingKey == m.RatingKey {
			return stored
		}
	}
	return m
}

func (c *Catalog) update(ratingKey string, fn func(*Movie)) {
	for i := range c.movies {
		if c.movies[i].RatingKey == ratingKey {
			fn(&c.movies[i])
		}
	}
}

// CollectionTarget applies movie reconciliation results to one collection.
type CollectionTarget struct {
	Catalog *Catalog
	Name    string
}

// Add implements reconcile.Target.
func (t CollectionTarget) Add(ctx context.Context, movies []Movie) error {
	return t.each(ctx, movies, "add", t.Catalog.AddCollection)
}

// Remove implements reconcile.Target.
func (t CollectionTarget) Remove(ctx context.Context, movies []Movie) error {
	return t.each(ctx, movies, "remove", t.Catalog.RemoveCollection)
}

func (t CollectionTarget) each(ctx context.Context, movies []Movie, action string, fn func(context.Context, Movie, string) error) error {
	logger := logging.WithContext(ctx, t.Catalog.logger)
	var errs []error
	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := fn(ctx, m, t.Name); err != nil {
			logging.WarnErr(logger, "collection edit failed", err, "", "movie left unchanged",
				logging.String("movie", m.String()),
				logging.String("collection", t.Name),
				logging.String("action", action),
			)
			errs = append(errs, fmt.Errorf("%s %s: %w", action, m, err))
			continue
		}
		logger.Info("collection updated",
			logging.String("movie", m.String()),
			logging.String("collection", t.Name),
			logging.String("action", action),
		)
	}
	return errors.Join(errs...)
}
