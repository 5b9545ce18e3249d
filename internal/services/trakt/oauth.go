package trakt

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"dionysia/internal/logging"
	"dionysia/internal/services"
)

// OAuthConfig returns the OAuth application settings for a Trakt API base
// URL. The authorize page lives on the web host, the token endpoint on the
// API host.
func OAuthConfig(baseURL, clientID, clientSecret, redirectURL string) *oauth2.Config {
	apiBase := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	webBase := strings.Replace(apiBase, "://api.", "://", 1)
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   webBase + "/oauth/authorize",
			TokenURL:  apiBase + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Authorize exchanges an authorization code for a token and saves it.
func Authorize(ctx context.Context, conf *oauth2.Config, store *FileTokenStore, code string) (*oauth2.Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, services.Wrap(services.ErrValidation, "trakt", "authorize", "empty authorization code", nil)
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "trakt", "authorize", "exchange code", err)
	}
	if err := store.Save(token); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "trakt", "authorize", "save token", err)
	}
	return token, nil
}

// TokenSource returns a refreshing source for the saved token, or nil when
// no token has been saved yet. Refreshed tokens are written back to store.
func TokenSource(ctx context.Context, conf *oauth2.Config, store *FileTokenStore, logger *slog.Logger) (oauth2.TokenSource, error) {
	token, err := store.Load()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "trakt", "load token", "", err)
	}
	if token == nil {
		return nil, nil
	}
	return &persistingSource{
		base:   conf.TokenSource(ctx, token),
		store:  store,
		last:   token.AccessToken,
		logger: logging.NewComponentLogger(logger, "trakt"),
	}, nil
}

type persistingSource struct {
	base   oauth2.TokenSource
	store  *FileTokenStore
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last {
		return token, nil
	}
	s.last = token.AccessToken
	if err := s.store.Save(token); err != nil {
		logging.WarnWithContext(s.logger, "failed to persist refreshed token", "token_save_failed",
			logging.Error(err),
			logging.String("path", s.store.Path()),
			logging.String(logging.FieldErrorHint, "check permissions on the token file"),
			logging.String(logging.FieldImpact, "the token will be refreshed again next run"),
		)
		return token, nil
	}
	s.logger.Info("trakt token refreshed", logging.String("expires", token.Expiry.Format("2006-01-02 15:04")))
	return token, nil
}
