package plex

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dionysia/internal/httpapi"
	"dionysia/internal/memo"
	"dionysia/internal/retry"
	"dionysia/internal/services"
)

const (
	productName    = "Dionysia"
	productVersion = "1.0.0"
	defaultTimeout = 30 * time.Second

	memoClientIdentifier = "plex.client_identifier"
	clientIdentifierTTL  = 10 * 365 * 24 * time.Hour
)

// Options configures a Client.
type Options struct {
	URL              string
	Token            string
	ClientIdentifier string
	VerifyTLS        bool
	Timeout          time.Duration
	HTTP             httpapi.Doer
	Retry            retry.Policy
	Logger           *slog.Logger
}

// Client talks to one Plex Media Server.
type Client struct {
	api    *httpapi.Client
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sections map[string]Section
}

// New constructs a Plex client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" || strings.TrimSpace(opts.Token) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "plex", "init", "plex.url and plex.token are required", nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	doer := opts.HTTP
	if doer == nil {
		doer = httpapi.NewHTTPClient(timeout, opts.VerifyTLS)
	}
	clientIdentifier := strings.TrimSpace(opts.ClientIdentifier)
	if clientIdentifier == "" {
		clientIdentifier = newClientIdentifier()
	}
	api := httpapi.New("plex", opts.URL, httpapi.Options{
		Headers: standardHeaders(opts.Token, clientIdentifier),
		HTTP:    doer,
		Retry:   opts.Retry,
		Logger:  opts.Logger,
	})
	return &Client{api: api, logger: api.Logger(), now: time.Now}, nil
}

func standardHeaders(token, clientIdentifier string) map[string]string {
	return map[string]string{
		"X-Plex-Token":             strings.TrimSpace(token),
		"X-Plex-Client-Identifier": clientIdentifier,
		"X-Plex-Product":           productName,
		"X-Plex-Version":           productVersion,
		"X-Plex-Device-Name":       productName,
		"X-Plex-Platform":          runtime.GOOS,
	}
}

func newClientIdentifier() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ClientIdentifier returns the identifier remembered in store, creating one
// on first use. Without a store a fresh identifier is returned.
func ClientIdentifier(ctx context.Context, store *memo.Store) string {
	id, err := memo.Memoize(ctx, store, memoClientIdentifier, clientIdentifierTTL, nil, func(context.Context) (string, error) {
		return newClientIdentifier(), nil
	})
	if err != nil || id == "" {
		return newClientIdentifier()
	}
	return id
}
