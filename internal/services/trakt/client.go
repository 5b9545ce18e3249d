package trakt

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"dionysia/internal/httpapi"
	"dionysia/internal/memo"
	"dionysia/internal/movie"
	"dionysia/internal/retry"
	"dionysia/internal/services"
)

const (
	apiVersion     = "2"
	rateWindow     = 5 * time.Minute
	defaultTimeout = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL         string
	ClientID        string
	Timeout         time.Duration
	RequestsPer5Min int
	HTTP            httpapi.Doer
	TokenSource     oauth2.TokenSource
	Retry           retry.Policy
	Logger          *slog.Logger
	Store           *memo.Store
	TTL             time.Duration
}

// Client is a Trakt API client.
type Client struct {
	api        *httpapi.Client
	store      *memo.Store
	ttl        time.Duration
	logger     *slog.Logger
	authorized bool
}

// IDs carries the external identifiers Trakt reports for a movie.
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

// Movie is the movie object embedded in list and chart responses.
type Movie struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// Ref converts the Trakt movie to a movie reference.
func (m Movie) Ref() movie.Ref {
	return movie.Ref{Title: m.Title, Year: m.Year, IMDBID: m.IDs.IMDB, TMDBID: m.IDs.TMDB}
}

// New constructs a Trakt client. When opts.TokenSource is set every request
// carries the user's bearer token.
func New(opts Options) (*Client, error) {
	clientID := strings.TrimSpace(opts.ClientID)
	if clientID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "trakt", "init", "trakt.client_id is required", nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	doer := opts.HTTP
	if doer == nil {
		doer = httpapi.NewHTTPClient(timeout, true)
	}
	if opts.TokenSource != nil {
		doer = &http.Client{Transport: &oauth2.Transport{Source: opts.TokenSource, Base: doerTransport{doer}}}
	}
	api := httpapi.New("trakt", opts.BaseURL, httpapi.Options{
		Headers: map[string]string{
			"trakt-api-version": apiVersion,
			"trakt-api-key":     clientID,
		},
		HTTP:    doer,
		Limiter: httpapi.PerWindow(opts.RequestsPer5Min, rateWindow),
		Retry:   opts.Retry,
		Logger:  opts.Logger,
	})
	return &Client{
		api:        api,
		store:      opts.Store,
		ttl:        opts.TTL,
		logger:     api.Logger(),
		authorized: opts.TokenSource != nil,
	}, nil
}

// Authorized reports whether the client carries a user token.
func (c *Client) Authorized() bool { return c.authorized }

func (c *Client) requireAuthorization(op string) error {
	if c.authorized {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "trakt", op, "no user token; run dionysia oauth-authenticate", nil)
}

func listPath(user, list string, suffix string) string {
	return fmt.Sprintf("/users/%s/lists/%s%s", escape(user), escape(list), suffix)
}

func escape(segment string) string {
	return strings.ReplaceAll(strings.TrimSpace(segment), "/", "%2F")
}

// doerTransport sends authorized requests through the configured Doer so a
// custom client keeps its transport, timeout and redirect policy.
type doerTransport struct {
	doer httpapi.Doer
}

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.doer.Do(req)
}
