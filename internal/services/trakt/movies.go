package trakt

import (
	"context"
	"net/http"

	"dionysia/internal/httpapi"
)

type chartQuery struct {
	Limit int `url:"limit,omitempty"`
}

type trendingEntry struct {
	Watchers int   `json:"watchers"`
	Movie    Movie `json:"movie"`
}

type watchedEntry struct {
	WatcherCount int   `json:"watcher_count"`
	PlayCount    int   `json:"play_count"`
	Movie        Movie `json:"movie"`
}

// TrendingMovies returns the movies being watched right now, most watched first.
func (c *Client) TrendingMovies(ctx context.Context, limit int) ([]Movie, error) {
	var entries []trendingEntry
	req := httpapi.Request{Method: http.MethodGet, Path: "/movies/trending", Query: chartQuery{Limit: limit}}
	if err := c.api.Do(ctx, req, &entries); err != nil {
		return nil, err
	}
	movies := make([]Movie, 0, len(entries))
	for _, e := range entries {
		movies = append(movies, e.Movie)
	}
	return capMovies(movies, limit), nil
}

// WatchedMovies returns the most watched movies of the past week.
func (c *Client) WatchedMovies(ctx context.Context, limit int) ([]Movie, error) {
	var entries []watchedEntry
	req := httpapi.Request{Method: http.MethodGet, Path: "/movies/watched/weekly", Query: chartQuery{Limit: limit}}
	if err := c.api.Do(ctx, req, &entries); err != nil {
		return nil, err
	}
	movies := make([]Movie, 0, len(entries))
	for _, e := range entries {
		movies = append(movies, e.Movie)
	}
	return capMovies(movies, limit), nil
}

func capMovies(movies []Movie, limit int) []Movie {
	if limit > 0 && len(movies) > limit {
		return movies[:limit]
	}
	return movies
}
