package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"dionysia/internal/logging"
	"dionysia/internal/services"
	"dionysia/internal/services/radarr"
)

// SearchMissing triggers Radarr searches for the missing movies that stand
// out by age, rating or vote count.
type SearchMissing struct {
	Deps   *Deps
	Oldest bool
	Rating bool
	Votes  bool
	// Cutoff is a percentage of the extreme value, 99 by default.
	Cutoff float64
	Stage  bool
}

type selector struct {
	name   string
	enable bool
	pick   func([]radarr.Movie, float64, time.Time) []radarr.Movie
}

// Run applies each enabled selection in turn: oldest, rating, votes.
func (j SearchMissing) Run(ctx context.Context) ([]Action, error) {
	ctx = services.WithJob(ctx, "search-missing")
	logger := logging.WithContext(ctx, j.Deps.Logger)

	cutoff := j.Cutoff / 100
	if math.IsNaN(cutoff) || cutoff < 0 || cutoff > 1 {
		return nil, services.Wrap(services.ErrValidation, "search-missing", "cutoff", fmt.Sprintf("cutoff must be between 0 and 100, got %g", j.Cutoff), nil)
	}
	selectors := []selector{
		{name: "oldest", enable: j.Oldest, pick: radarr.SelectOldest},
		{name: "rating", enable: j.Rating, pick: radarr.SelectByRating},
		{name: "votes", enable: j.Votes, pick: radarr.SelectByVotes},
	}

	client, err := j.Deps.Radarr()
	if err != nil {
		return nil, err
	}
	movies, err := client.Movies(ctx)
	if err != nil {
		return nil, err
	}

	now := j.Deps.now()
	stats := radarr.ComputeStats(movies, now)
	logger.Debug("radarr stats",
		logging.Float64("highest_rating", stats.HighestRating),
		logging.Int("highest_votes", stats.HighestVotes),
		logging.String("oldest", stats.Oldest.Format(time.DateOnly)),
		logging.String("oldest_threshold", radarr.OldestThreshold(stats, cutoff, now).Format(time.DateOnly)),
	)

	var actions []Action
	var errs []error
	for _, sel := range selectors {
		if !sel.enable {
			continue
		}
		picked := sel.pick(movies, cutoff, now)
		logger.Info("selected missing movies", logging.String("selection", sel.name), logging.Int("count", len(picked)))
		for _, m := range picked {
			action := Action{ID: m.ID, Movie: m.String(), Detail: sel.name}
			switch {
			case j.Stage:
				logger.Info("STAGE: trigger search", logging.Int("id", m.ID), logging.String("movie", m.String()), logging.String("selection", sel.name))
				action.Outcome = OutcomeStaged
			default:
				if err := client.Search(ctx, m.ID); err != nil {
					logging.WarnErr(logger, "unable to search", err, "", "movie stays missing until the next run",
						logging.Int("id", m.ID),
						logging.String("movie", m.String()),
					)
					action.Outcome = OutcomeFailed
					errs = append(errs, fmt.Errorf("search %s: %w", m, err))
				} else {
					logger.Info("triggered search", logging.Int("id", m.ID), logging.String("movie", m.String()))
					action.Outcome = OutcomeDone
				}
			}
			actions = append(actions, action)
		}
	}
	return actions, errors.Join(errs...)
}
