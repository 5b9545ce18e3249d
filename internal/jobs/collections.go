package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dionysia/internal/config"
	"dionysia/internal/logging"
	"dionysia/internal/movie"
	"dionysia/internal/reconcile"
	"dionysia/internal/services"
	"dionysia/internal/services/plex"
	"dionysia/internal/services/trakt"
)

const (
	// TrendingCollection holds the movies currently trending on Trakt.
	TrendingCollection = "Trakt Trending"
	// PopularCollection holds the most watched movies of the week on Trakt.
	PopularCollection = "Trakt Popular"

	chartSize = 30
)

// Collections mirrors configured lists into Plex collections.
type Collections struct {
	Deps      *Deps
	ListNames []string
	Trending  bool
	Popular   bool
	Library   string
	Stage     bool
}

// Run reconciles every selected list, then the Trakt charts when requested.
// All configured lists run when ListNames is empty.
func (j Collections) Run(ctx context.Context) ([]reconcile.Summary, error) {
	ctx = services.WithJob(ctx, "update-collections")
	logger := logging.WithContext(ctx, j.Deps.Logger)
	cfg := j.Deps.Config

	names := j.ListNames
	if len(names) == 0 {
		names = cfg.CollectionNames()
	}
	library := j.Library
	if library == "" {
		library = cfg.Plex.Library
	}

	plexClient, err := j.Deps.Plex(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := plexClient.OpenCatalog(ctx, library)
	if err != nil {
		return nil, err
	}

	run := collectionRun{
		catalog: catalog,
		mode:    reconcile.ModeFor(j.Stage),
		year:    j.Deps.now().Year(),
		logger:  logger,
	}

	for _, name := range names {
		listCtx := services.WithList(ctx, name)
		def, ok := cfg.Collections[name]
		if !ok {
			err := unknownList(logging.WithContext(listCtx, j.Deps.Logger), "collections", name, collectionExample)
			run.fail(name, err)
			continue
		}
		switch def.Agent {
		case config.AgentJSON:
			j.syncFeed(listCtx, &run, name, def)
		case config.AgentTrakt:
			j.syncTraktList(listCtx, &run, def)
		default:
			run.fail(name, services.Wrap(services.ErrConfiguration, "collections", name, fmt.Sprintf("unknown agent %q", def.Agent), nil))
		}
	}

	if j.Trending {
		j.syncChart(services.WithList(ctx, TrendingCollection), &run, TrendingCollection, (*trakt.Client).TrendingMovies)
	}
	if j.Popular {
		j.syncChart(services.WithList(ctx, PopularCollection), &run, PopularCollection, (*trakt.Client).WatchedMovies)
	}

	return run.summaries, errors.Join(run.errs...)
}

func (j Collections) syncFeed(ctx context.Context, run *collectionRun, name string, def config.CollectionList) {
	collections, err := j.Deps.Feeds().Collections(ctx, def.URL)
	if err != nil {
		run.fail(name, err)
		return
	}
	if len(collections) == 0 {
		logging.WithContext(ctx, j.Deps.Logger).Info("feed lists no collections", logging.String("url", def.URL))
	}
	for _, col := range collections {
		run.sync(services.WithList(ctx, col.Name), col.Name, col.Refs())
	}
}

func (j Collections) syncTraktList(ctx context.Context, run *collectionRun, def config.CollectionList) {
	client, err := j.Deps.Trakt(ctx)
	if err != nil {
		run.fail(def.Name, err)
		return
	}
	movies, err := client.UserListMovies(ctx, def.User, def.ListID)
	if err != nil {
		run.fail(def.Name, err)
		return
	}
	run.sync(ctx, def.Name, traktRefs(movies))
}

func (j Collections) syncChart(ctx context.Context, run *collectionRun, name string, fetch func(*trakt.Client, context.Context, int) ([]trakt.Movie, error)) {
	client, err := j.Deps.Trakt(ctx)
	if err != nil {
		run.fail(name, err)
		return
	}
	movies, err := fetch(client, ctx, chartSize)
	if err != nil {
		run.fail(name, err)
		return
	}
	run.sync(ctx, name, traktRefs(movies))
}

func traktRefs(movies []trakt.Movie) []movie.Ref {
	refs := make([]movie.Ref, 0, len(movies))
	for _, m := range movies {
		refs = append(refs, movie.Ref{Title: m.Title, Year: m.Year})
	}
	return refs
}

type collectionRun struct {
	catalog   *plex.Catalog
	mode      reconcile.Mode
	year      int
	logger    *slog.Logger
	summaries []reconcile.Summary
	errs      []error
}

func (r *collectionRun) sync(ctx context.Context, name string, refs []movie.Ref) {
	desired := r.catalog.Resolve(ctx, refs, r.year)
	current := r.catalog.Collection(name)
	result := reconcile.DiffBy(desired, current, func(m plex.Movie) string { return m.RatingKey })
	target := plex.CollectionTarget{Catalog: r.catalog, Name: name}
	summary, err := reconcile.Apply(ctx, logging.WithContext(ctx, r.logger), r.mode, name, result, target)
	r.summaries = append(r.summaries, summary)
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func (r *collectionRun) fail(name string, err error) {
	logging.WarnErr(r.logger, "collection skipped", err, "", "collection left unchanged", logging.String("collection", name))
	r.summaries = append(r.summaries, reconcile.Summary{Name: name, Mode: r.mode, Err: err})
	r.errs = append(r.errs, err)
}
