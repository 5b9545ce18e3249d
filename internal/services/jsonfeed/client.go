// Package jsonfeed reads public JSON movie lists: flat feeds of IMDb ids and
// collection feeds that group titles under a collection name.
package jsonfeed

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"dionysia/internal/httpapi"
	"dionysia/internal/logging"
	"dionysia/internal/memo"
	"dionysia/internal/movie"
	"dionysia/internal/retry"
)

// UserAgent is sent with every feed request; some hosts reject non-browser clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/71.0.3578.80 Safari/537.36"

const memoIMDBIDs = "jsonfeed.imdb_ids"

// Item is one entry of a flat feed.
type Item struct {
	Title  string `json:"title"`
	IMDBID string `json:"imdb_id"`
	Year   Year   `json:"year"`
}

// Ref converts the item to a movie reference.
func (i Item) Ref() movie.Ref {
	return movie.Ref{Title: strings.TrimSpace(i.Title), Year: int(i.Year), IMDBID: strings.TrimSpace(i.IMDBID)}
}

// Collection is one entry of a collection feed.
type Collection struct {
	Name   string      `json:"collection_name"`
	Movies []ListMovie `json:"list_movies"`
}

// ListMovie is a title inside a collection feed.
type ListMovie struct {
	Title string `json:"title"`
	Year  Year   `json:"year"`
}

// Refs converts the collection members to movie references.
func (c Collection) Refs() []movie.Ref {
	refs := make([]movie.Ref, 0, len(c.Movies))
	for _, m := range c.Movies {
		title := strings.TrimSpace(m.Title)
		if title == "" {
			continue
		}
		refs = append(refs, movie.Ref{Title: title, Year: int(m.Year)})
	}
	return refs
}

// Year decodes a release year given as a number, a numeric string or null.
type Year int

// UnmarshalJSON accepts 1999, "1999", "" and null.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*y = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			*y = 0
			return nil
		}
		*y = Year(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = Year(int(n))
	return nil
}

// Options configures a Client.
type Options struct {
	HTTP    httpapi.Doer
	Timeout time.Duration
	Retry   retry.Policy
	Logger  *slog.Logger
	Store   *memo.Store
	TTL     time.Duration
}

// Client fetches JSON feeds by absolute URL.
type Client struct {
	api    *httpapi.Client
	store  *memo.Store
	ttl    time.Duration
	logger *slog.Logger
}

// New constructs a feed client.
func New(opts Options) *Client {
	doer := opts.HTTP
	if doer == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = httpapi.NewHTTPClient(timeout, true)
	}
	api := httpapi.New("jsonfeed", "", httpapi.Options{
		Headers: map[string]string{"User-Agent": UserAgent},
		HTTP:    doer,
		Retry:   opts.Retry,
		Logger:  opts.Logger,
	})
	return &Client{api: api, store: opts.Store, ttl: opts.TTL, logger: api.Logger()}
}

// List returns the raw items of a flat feed.
func (c *Client) List(ctx context.Context, url string) ([]Item, error) {
	var items []Item
	if err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: url, NonEmpty: true}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// IMDBIDs returns the distinct IMDb ids of a flat feed in feed order. Results
// are memoized per URL.
func (c *Client) IMDBIDs(ctx context.Context, url string) ([]string, error) {
	return memo.Memoize(ctx, c.store, memoIMDBIDs, c.ttl, url, func(ctx context.Context) ([]string, error) {
		items, err := c.List(ctx, url)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(items))
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			id := strings.TrimSpace(item.IMDBID)
			if id == "" {
				c.logger.Debug("feed item without imdb id", logging.String("title", item.Title))
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		c.logger.Debug("feed fetched",
			logging.String(logging.FieldList, url),
			logging.Int("items", len(items)),
			logging.Int("imdb_ids", len(ids)),
		)
		return ids, nil
	})
}

// Collections returns the collections of a collection feed.
func (c *Client) Collections(ctx context.Context, url string) ([]Collection, error) {
	var collections []Collection
	if err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: url, NonEmpty: true}, &collections); err != nil {
		return nil, err
	}
	out := collections[:0]
	for _, col := range collections {
		col.Name = strings.TrimSpace(col.Name)
		if col.Name == "" {
			c.logger.Debug("skipping unnamed collection", logging.Int("movies", len(col.Movies)))
			continue
		}
		out = append(out, col)
	}
	return out, nil
}
