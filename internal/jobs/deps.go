package jobs

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"dionysia/internal/config"
	"dionysia/internal/httpapi"
	"dionysia/internal/logging"
	"dionysia/internal/memo"
	"dionysia/internal/retry"
	"dionysia/internal/services"
	"dionysia/internal/services/jsonfeed"
	"dionysia/internal/services/plex"
	"dionysia/internal/services/radarr"
	"dionysia/internal/services/trakt"
)

// Deps holds the shared dependencies of every job.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *memo.Store

	// HTTP replaces the per-service HTTP clients when set.
	HTTP httpapi.Doer
	// Now replaces time.Now when set.
	Now func() time.Time

	plex   *plex.Client
	radarr *radarr.Client
	trakt  *trakt.Client
	feeds  *jsonfeed.Client
}

// NewDeps builds the dependency set for one command run.
func NewDeps(cfg *config.Config, logger *slog.Logger, store *memo.Store) *Deps {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Deps{Config: cfg, Logger: logger, Store: store}
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RetryPolicy returns the backoff policy configured for remote calls.
func (d *Deps) RetryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxTries = d.Config.Retry.MaxTries
	policy.InitialInterval = d.Config.RetryInitialInterval()
	policy.MaxInterval = d.Config.RetryMaxInterval()
	return policy
}

// Plex returns the Plex client.
func (d *Deps) Plex(ctx context.Context) (*plex.Client, error) {
	if d.plex != nil {
		return d.plex, nil
	}
	if err := d.Config.RequirePlex(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plex", "init", "", err)
	}
	cfg := d.Config.Plex
	client, err := plex.New(plex.Options{
		URL:              cfg.URL,
		Token:            cfg.Token,
		ClientIdentifier: plex.ClientIdentifier(ctx, d.Store),
		VerifyTLS:        cfg.VerifyTLS,
		Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
		HTTP:             d.HTTP,
		Retry:            d.RetryPolicy(),
		Logger:           d.Logger,
	})
	if err != nil {
		return nil, err
	}
	d.plex = client
	return client, nil
}

// Radarr returns the Radarr client.
func (d *Deps) Radarr() (*radarr.Client, error) {
	if d.radarr != nil {
		return d.radarr, nil
	}
	if err := d.Config.RequireRadarr(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "radarr", "init", "", err)
	}
	cfg := d.Config.Radarr
	client, err := radarr.New(radarr.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		HTTP:    d.HTTP,
		Retry:   d.RetryPolicy(),
		Logger:  d.Logger,
		Store:   d.Store,
		TTL:     d.Config.RadarrTTL(),
	})
	if err != nil {
		return nil, err
	}
	d.radarr = client
	return client, nil
}

// TraktOAuth returns the OAuth settings and token store for Trakt.
func (d *Deps) TraktOAuth() (*oauth2.Config, *trakt.FileTokenStore) {
	cfg := d.Config.Trakt
	conf := trakt.OAuthConfig(cfg.BaseURL, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)
	return conf, trakt.NewFileTokenStore(d.Config.Paths.TraktTokenFile)
}

// Trakt returns the Trakt client. A saved user token is attached when present.
func (d *Deps) Trakt(ctx context.Context) (*trakt.Client, error) {
	if d.trakt != nil {
		return d.trakt, nil
	}
	if err := d.Config.RequireTrakt(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "trakt", "init", "", err)
	}
	cfg := d.Config.Trakt
	conf, store := d.TraktOAuth()
	source, err := trakt.TokenSource(ctx, conf, store, d.Logger)
	if err != nil {
		return nil, err
	}
	opts := trakt.Options{
		BaseURL:         cfg.BaseURL,
		ClientID:        cfg.ClientID,
		Timeout:         time.Duration(cfg.TimeoutSeconds) * time.Second,
		RequestsPer5Min: cfg.RequestsPer5Min,
		HTTP:            d.HTTP,
		Retry:           d.RetryPolicy(),
		Logger:          d.Logger,
		Store:           d.Store,
		TTL:             d.Config.TraktTTL(),
		TokenSource:     source,
	}
	client, err := trakt.New(opts)
	if err != nil {
		return nil, err
	}
	d.trakt = client
	return client, nil
}

// Feeds returns the JSON feed client.
func (d *Deps) Feeds() *jsonfeed.Client {
	if d.feeds == nil {
		d.feeds = jsonfeed.New(jsonfeed.Options{
			HTTP:   d.HTTP,
			Retry:  d.RetryPolicy(),
			Logger: d.Logger,
			Store:  d.Store,
			TTL:    d.Config.FeedTTL(),
		})
	}
	return d.feeds
}
