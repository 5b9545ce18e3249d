package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dionysia/internal/logging"
	"dionysia/internal/reconcile"
	"dionysia/internal/services"
	"dionysia/internal/services/trakt"
)

// ExternalLists mirrors JSON feeds of IMDb ids into Trakt lists.
type ExternalLists struct {
	Deps      *Deps
	ListNames []string
	Stage     bool
}

// Run reconciles every selected list. All configured lists run when
// ListNames is empty.
func (j ExternalLists) Run(ctx context.Context) ([]reconcile.Summary, error) {
	ctx = services.WithJob(ctx, "update-external-list")
	cfg := j.Deps.Config
	mode := reconcile.ModeFor(j.Stage)

	names := j.ListNames
	if len(names) == 0 {
		names = cfg.ExternalListNames()
	}

	client, err := j.Deps.Trakt(ctx)
	if err != nil {
		return nil, err
	}

	var summaries []reconcile.Summary
	var errs []error
	fail := func(logger *slog.Logger, name string, err error) {
		logging.WarnErr(logger, "external list skipped", err, "", "trakt list left unchanged")
		summaries = append(summaries, reconcile.Summary{Name: name, Mode: mode, Err: err})
		errs = append(errs, err)
	}

	for _, name := range names {
		listCtx := services.WithList(ctx, name)
		logger := logging.WithContext(listCtx, j.Deps.Logger)
		def, ok := cfg.ExternalLists[name]
		if !ok {
			fail(logger, name, unknownList(logger, "external_lists", name, externalListExample))
			continue
		}

		desired, err := j.Deps.Feeds().IMDBIDs(listCtx, def.FeedURL)
		if err != nil {
			fail(logger, name, err)
			continue
		}
		current, err := client.UserListIMDBIDs(listCtx, def.User, def.ListID)
		if err != nil {
			fail(logger, name, err)
			continue
		}

		result := reconcile.Diff(desired, current)
		target := trakt.ListTarget{Client: client, User: def.User, List: def.ListID}
		summary, err := reconcile.Apply(listCtx, logger, mode, name, result, target)
		summaries = append(summaries, summary)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return summaries, errors.Join(errs...)
}
