package jobs

import (
	"context"
	"errors"
	"fmt"

	"dionysia/internal/logging"
	"dionysia/internal/services"
	"dionysia/internal/services/radarr"
)

// Purge removes movies from Radarr that are missing and no longer monitored.
type Purge struct {
	Deps         *Deps
	ProtectTag   string
	DeleteFiles  bool
	AddExclusion bool
	Stage        bool
}

// Run deletes every unmonitored missing movie not tagged with ProtectTag.
func (j Purge) Run(ctx context.Context) ([]Action, error) {
	ctx = services.WithJob(ctx, "purge-unmonitored")
	logger := logging.WithContext(ctx, j.Deps.Logger)

	client, err := j.Deps.Radarr()
	if err != nil {
		return nil, err
	}
	protectID := -1
	if j.ProtectTag != "" {
		if protectID, err = client.TagID(ctx, j.ProtectTag); err != nil {
			return nil, err
		}
		if protectID < 0 {
			logger.Info("protect tag not defined in radarr", logging.String("tag", j.ProtectTag))
		}
	}
	movies, err := client.Movies(ctx)
	if err != nil {
		return nil, err
	}

	purge, protected := radarr.SelectUnmonitoredMissing(movies, protectID)
	actions := make([]Action, 0, len(purge)+len(protected))
	for _, m := range protected {
		logger.Debug("skipping protected movie", logging.Int("id", m.ID), logging.String("movie", m.String()), logging.String("tag", j.ProtectTag))
		actions = append(actions, Action{ID: m.ID, Movie: m.String(), Detail: "tagged " + j.ProtectTag, Outcome: OutcomeSkipped})
	}

	var errs []error
	for _, m := range purge {
		action := Action{ID: m.ID, Movie: m.String(), Detail: "missing and unmonitored"}
		if j.Stage {
			logger.Info("STAGE: remove missing and unmonitored", logging.Int("id", m.ID), logging.String("movie", m.String()))
			action.Outcome = OutcomeStaged
			actions = append(actions, action)
			continue
		}
		if err := client.Delete(ctx, m.ID, j.DeleteFiles, j.AddExclusion); err != nil {
			logging.WarnErr(logger, "unable to remove", err, "", "movie stays in radarr",
				logging.Int("id", m.ID),
				logging.String("movie", m.String()),
			)
			action.Outcome = OutcomeFailed
			errs = append(errs, fmt.Errorf("delete %s: %w", m, err))
		} else {
			logger.Info("removed missing and unmonitored", logging.Int("id", m.ID), logging.String("movie", m.String()))
			action.Outcome = OutcomeDone
		}
		actions = append(actions, action)
	}
	return actions, errors.Join(errs...)
}
