package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dionysia/internal/logging"
	"dionysia/internal/services"
)

const recentlyAddedBaseMinutes = 240

var recentlyAddedResolutions = []string{"1080", "4K"}

// RecentlyAdded moves the top trending Trakt movies to the front of Plex's
// recently added row.
type RecentlyAdded struct {
	Deps    *Deps
	Library string
	Number  int
}

// Run tags each high resolution trending movie found in Plex and rewrites its
// added date. The top movie gets now minus (240+Number) minutes and each
// following rank one minute earlier, keeping them in trending order.
func (j RecentlyAdded) Run(ctx context.Context) ([]Action, error) {
	ctx = services.WithJob(ctx, "update-recently-added")
	logger := logging.WithContext(ctx, j.Deps.Logger)

	number := j.Number
	if number <= 0 {
		number = 10
	}
	library := j.Library
	if library == "" {
		library = j.Deps.Config.Plex.Library
	}

	traktClient, err := j.Deps.Trakt(ctx)
	if err != nil {
		return nil, err
	}
	trending, err := traktClient.TrendingMovies(ctx, number)
	if err != nil {
		return nil, err
	}
	plexClient, err := j.Deps.Plex(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := plexClient.OpenCatalog(ctx, library)
	if err != nil {
		return nil, err
	}

	now := j.Deps.now()
	var actions []Action
	var errs []error
	for i, tm := range trending {
		ref := tm.Ref()
		addedAt := now.Add(-time.Duration(recentlyAddedBaseMinutes+number+i) * time.Minute)
		action := Action{Movie: ref.String(), Detail: addedAt.Format("2006-01-02 15:04")}

		m, ok := catalog.Find(ref)
		if !ok {
			logger.Debug("trending movie not in plex", logging.String("movie", ref.String()))
			action.Outcome = OutcomeSkipped
			action.Detail = "not in library"
			actions = append(actions, action)
			continue
		}
		if !m.HasResolution(recentlyAddedResolutions...) {
			logger.Debug("trending movie below 1080p", logging.String("movie", m.String()))
			action.Outcome = OutcomeSkipped
			action.Detail = "resolution below 1080p"
			actions = append(actions, action)
			continue
		}

		err := catalog.AddCollection(ctx, m, TrendingCollection)
		if err == nil {
			err = catalog.SetAddedAt(ctx, m, addedAt)
		}
		if err != nil {
			logging.WarnErr(logger, "recently added update failed", err, "", "movie keeps its position", logging.String("movie", m.String()))
			action.Outcome = OutcomeFailed
			errs = append(errs, fmt.Errorf("%s: %w", m, err))
		} else {
			logger.Info("moved to recently added",
				logging.String("movie", m.String()),
				logging.String("added_at", addedAt.Format(time.DateTime)),
			)
			action.Outcome = OutcomeDone
		}
		actions = append(actions, action)
	}
	return actions, errors.Join(errs...)
}
