package trakt

import (
	"context"
	"net/http"
	"strings"

	"dionysia/internal/httpapi"
	"dionysia/internal/logging"
	"dionysia/internal/memo"
)

const memoListIMDBIDs = "trakt.list_imdb_ids"

type listItem struct {
	Rank  int    `json:"rank"`
	Type  string `json:"type"`
	Movie *Movie `json:"movie"`
}

type itemIDs struct {
	IDs IDs `json:"ids"`
}

type itemsPayload struct {
	Movies []itemIDs `json:"movies"`
}

type counts struct {
	Movies int `json:"movies"`
}

// SyncResult is the response to a list add or remove.
type SyncResult struct {
	Added    counts `json:"added"`
	Existing counts `json:"existing"`
	Deleted  counts `json:"deleted"`
	NotFound struct {
		Movies []itemIDs `json:"movies"`
	} `json:"not_found"`
}

// NotFoundIMDBIDs lists the ids Trakt could not match.
func (r SyncResult) NotFoundIMDBIDs() []string {
	ids := make([]string, 0, len(r.NotFound.Movies))
	for _, m := range r.NotFound.Movies {
		if m.IDs.IMDB != "" {
			ids = append(ids, m.IDs.IMDB)
		}
	}
	return ids
}

// UserListMovies returns the movies of a user's list in rank order.
func (c *Client) UserListMovies(ctx context.Context, user, list string) ([]Movie, error) {
	var items []listItem
	if err := c.api.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: listPath(user, list, "/items/movies")}, &items); err != nil {
		return nil, err
	}
	movies := make([]Movie, 0, len(items))
	for _, item := range items {
		if item.Movie == nil {
			continue
		}
		movies = append(movies, *item.Movie)
	}
	return movies, nil
}

// UserListIMDBIDs returns the IMDb ids of a user's list. Results are memoized.
func (c *Client) UserListIMDBIDs(ctx context.Context, user, list string) ([]string, error) {
	args := map[string]string{"user": user, "list": list}
	return memo.Memoize(ctx, c.store, memoListIMDBIDs, c.ttl, args, func(ctx context.Context) ([]string, error) {
		movies, err := c.UserListMovies(ctx, user, list)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(movies))
		for _, m := range movies {
			if id := strings.TrimSpace(m.IDs.IMDB); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	})
}

// AddToList adds movies by IMDb id to the authorized user's list.
func (c *Client) AddToList(ctx context.Context, user, list string, imdbIDs []string) (SyncResult, error) {
	if err := c.requireAuthorization("add to list"); err != nil {
		return SyncResult{}, err
	}
	var result SyncResult
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   listPath(user, list, "/items"),
		Body:   payloadFor(imdbIDs),
		Expect: []int{http.StatusOK, http.StatusCreated},
	}, &result)
	return result, err
}

// RemoveFromList removes movies by IMDb id from the authorized user's list.
func (c *Client) RemoveFromList(ctx context.Context, user, list string, imdbIDs []string) (SyncResult, error) {
	if err := c.requireAuthorization("remove from list"); err != nil {
		return SyncResult{}, err
	}
	var result SyncResult
	err := c.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   listPath(user, list, "/items/remove"),
		Body:   payloadFor(imdbIDs),
		Expect: []int{http.StatusOK, http.StatusNoContent},
	}, &result)
	return result, err
}

func payloadFor(imdbIDs []string) itemsPayload {
	payload := itemsPayload{Movies: make([]itemIDs, 0, len(imdbIDs))}
	for _, id := range imdbIDs {
		payload.Movies = append(payload.Movies, itemIDs{IDs: IDs{IMDB: id}})
	}
	return payload
}

// ListTarget applies IMDb id reconciliation results to one Trakt list.
type ListTarget struct {
	Client *Client
	User   string
	List   string
}

// Add implements reconcile.Target.
func (t ListTarget) Add(ctx context.Context, imdbIDs []string) error {
	result, err := t.Client.AddToList(ctx, t.User, t.List, imdbIDs)
	if err != nil {
		return err
	}
	t.report(ctx, "added", result.Added.Movies, result)
	return nil
}

// Remove implements reconcile.Target.
func (t ListTarget) Remove(ctx context.Context, imdbIDs []string) error {
	result, err := t.Client.RemoveFromList(ctx, t.User, t.List, imdbIDs)
	if err != nil {
		return err
	}
	t.report(ctx, "deleted", result.Deleted.Movies, result)
	return nil
}

func (t ListTarget) report(ctx context.Context, action string, n int, result SyncResult) {
	logger := logging.WithContext(ctx, t.Client.logger)
	logger.Info("trakt list updated",
		logging.String("user", t.User),
		logging.String("trakt_list", t.List),
		logging.String("action", action),
		logging.Int("movies", n),
	)
	if missing := result.NotFoundIMDBIDs(); len(missing) > 0 {
		logging.WarnWithContext(logger, "trakt did not recognize some ids", "trakt_not_found",
			logging.String("trakt_list", t.List),
			logging.Any("imdb_ids", missing),
			logging.String(logging.FieldErrorHint, "check the feed for stale or malformed imdb ids"),
			logging.String(logging.FieldImpact, "those movies were skipped"),
		)
	}
}
