package radarr

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dionysia/internal/httpapi"
	"dionysia/internal/memo"
	"dionysia/internal/retry"
	"dionysia/internal/services"
)

const (
	apiPrefix      = "/api/v3"
	defaultTimeout = 60 * time.Second
	searchCommand  = "MoviesSearch"

	memoMovies = "radarr.movies"
	memoTags   = "radarr.tags"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	HTTP    httpapi.Doer
	Retry   retry.Policy
	Logger  *slog.Logger
	Store   *memo.Store
	TTL     time.Duration
}

// Client is a Radarr v3 API client.
type Client struct {
	api    *httpapi.Client
	store  *memo.Store
	ttl    time.Duration
	logger *slog.Logger
}

type searchRequest struct {
	Name     string `json:"name"`
	MovieIDs []int  `json:"movieIds"`
}

type deleteQuery struct {
	DeleteFiles        bool `url:"deleteFiles"`
	AddImportExclusion bool `url:"addImportExclusion"`
}

// New constructs a Radarr client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" || strings.TrimSpace(opts.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "radarr", "init", "radarr.base_url and radarr.api_key are required", nil)
	}
	if !strings.HasSuffix(base, apiPrefix) {
		base += apiPrefix
	}
	doer := opts.HTTP
	if doer == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = httpapi.NewHTTPClient(timeout, true)
	}
	api := httpapi.New("radarr", base, httpapi.Options{
		Headers: map[string]string{"X-Api-Key": strings.TrimSpace(opts.APIKey)},
		HTTP:    doer,
		Retry:   opts.Retry,
		Logger:  opts.Logger,
	})
	return &Client{api: api, store: opts.Store, ttl: opts.TTL, logger: api.Logger()}, nil
}

// Movies returns every movie in the catalog. Results are memoized.
func (c *Client) Movies(ctx context.Context) ([]Movie, error) {
	return memo.Memoize(ctx, c.store, memoMovies, c.ttl, nil, func(ctx context.Context) ([]Movie, error) {
		var movies []Movie
		if err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/movie"}, &movies); err != nil {
			return nil, err
		}
		return movies, nil
	})
}

// Tags maps tag labels to ids. Results are memoized.
func (c *Client) Tags(ctx context.Context) (map[string]int, error) {
	return memo.Memoize(ctx, c.store, memoTags, c.ttl, nil, func(ctx context.Context) (map[string]int, error) {
		var tags []Tag
		if err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/tag"}, &tags); err != nil {
			return nil, err
		}
		labels := make(map[string]int, len(tags))
		for _, tag := range tags {
			labels[tag.Label] = tag.ID
		}
		return labels, nil
	})
}

// TagID returns the id of the tag label, or -1 when it does not exist.
func (c *Client) TagID(ctx context.Context, label string) (int, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return -1, err
	}
	if id, ok := tags[label]; ok {
		return id, nil
	}
	return -1, nil
}

// Search queues a MoviesSearch command for the given movie ids.
func (c *Client) Search(ctx context.Context, ids ...int) error {
	return c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/command",
		Body:   searchRequest{Name: searchCommand, MovieIDs: ids},
		Expect: []int{http.StatusCreated},
	}, nil)
}

// Delete removes a movie, optionally deleting its files and excluding it
// from future imports.
func (c *Client) Delete(ctx context.Context, id int, deleteFiles, addExclusion bool) error {
	return c.api.Do(ctx, httpapi.Request{
		Method: http.MethodDelete,
		Path:   "/movie/" + strconv.Itoa(id),
		Query:  deleteQuery{DeleteFiles: deleteFiles, AddImportExclusion: addExclusion},
		Expect: []int{http.StatusOK},
	}, nil)
}
