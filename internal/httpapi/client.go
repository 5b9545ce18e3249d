package httpapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-querystring/query"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"dionysia/internal/logging"
	"dionysia/internal/retry"
	"dionysia/internal/services"
)

const (
	maxErrorBody         = 2048
	breakerTripFailures  = 5
	breakerOpenTimeout   = time.Minute
	breakerHalfOpenProbe = 1
)

// Doer abstracts http.Client.Do for testing.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	Headers map[string]string
	HTTP    Doer
	Limiter *rate.Limiter
	Retry   retry.Policy
	Logger  *slog.Logger
}

// Client issues JSON requests against one remote service.
type Client struct {
	name    string
	baseURL string
	headers map[string]string
	http    Doer
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	policy  retry.Policy
	logger  *slog.Logger
}

// Request describes a single call. Path may be relative to the base URL or an
// absolute URL. Query is either url.Values or a struct with `url` tags.
type Request struct {
	Method   string
	Path     string
	Query    any
	Body     any
	Headers  map[string]string
	Expect   []int
	NonEmpty bool
}

// StatusError reports a response whose status was not expected.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// New builds a client named after the service it talks to.
func New(name, baseURL string, opts Options) *Client {
	logger := logging.NewComponentLogger(opts.Logger, name)
	doer := opts.HTTP
	if doer == nil {
		doer = NewHTTPClient(30*time.Second, true)
	}
	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		headers: headers,
		http:    doer,
		limiter: opts.Limiter,
		breaker: newBreaker(name, logger),
		policy:  opts.Retry,
		logger:  logger,
	}
}

// NewHTTPClient returns an http.Client with the given timeout. Certificate
// verification is skipped when verifyTLS is false.
func NewHTTPClient(timeout time.Duration, verifyTLS bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if !verifyTLS {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via plex.verify_tls
		client.Transport = transport
	}
	return client
}

// PerWindow returns a limiter allowing n requests per window.
func PerWindow(n int, window time.Duration) *rate.Limiter {
	if n <= 0 || window <= 0 {
		return nil
	}
	burst := n / 50
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(n)/window.Seconds()), burst)
}

// Name returns the service name used in logs and errors.
func (c *Client) Name() string { return c.name }

// Logger returns the component logger for the service.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Do sends req and decodes the response body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	label := method + " " + redact(req.Path)
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return services.Wrap(services.ErrValidation, c.name, label, "build url", err)
	}
	var payload []byte
	if req.Body != nil {
		if payload, err = json.Marshal(req.Body); err != nil {
			return services.Wrap(services.ErrValidation, c.name, label, "encode body", err)
		}
	}
	expect := req.Expect
	if len(expect) == 0 {
		expect = []int{http.StatusOK}
	}

	op := method + " " + redact(target)
	body, err := retry.Do(ctx, c.policy, c.logger, op, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, retry.Permanent(err)
			}
		}
		data, err := c.breaker.Execute(func() ([]byte, error) {
			return c.send(ctx, method, target, payload, req.Headers, expect)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, retry.Permanent(fmt.Errorf("%s circuit open: %w", c.name, err))
		}
		if err != nil {
			return nil, err
		}
		if req.NonEmpty && len(bytes.TrimSpace(data)) == 0 {
			return nil, retry.ErrBlank
		}
		return data, nil
	})
	if err != nil {
		marker := services.ErrTransient
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			marker = services.ErrExternal
			if statusErr.StatusCode == http.StatusNotFound {
				marker = services.ErrNotFound
			}
		}
		return services.Wrap(marker, c.name, label, "", err)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrValidation, c.name, label, "decode response", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte, extra map[string]string, expect []int) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		if strings.TrimSpace(v) != "" {
			httpReq.Header.Set(k, v)
		}
	}
	for k, v := range extra {
		if strings.TrimSpace(v) != "" {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		logging.String("method", method),
		logging.String("url", redact(target)),
		logging.String("payload", string(payload)),
		logging.Int("status", resp.StatusCode),
	)

	if !slices.Contains(expect, resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        redact(target),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}
	return data, nil
}

func (c *Client) resolve(path string, q any) (string, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if c.baseURL == "" {
			return "", fmt.Errorf("no base url for relative path %q", path)
		}
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = c.baseURL + path
	}
	values, err := encodeQuery(q)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return target, nil
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	merged := parsed.Query()
	for k, vs := range values {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	parsed.RawQuery = merged.Encode()
	return parsed.String(), nil
}

func encodeQuery(q any) (url.Values, error) {
	switch v := q.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return v, nil
	default:
		values, err := query.Values(q)
		if err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}
		return values, nil
	}
}

var secretParams = []string{"X-Plex-Token", "apikey", "api_key"}

// redact hides credentials passed as query parameters.
func redact(target string) string {
	parsed, err := url.Parse(target)
	if err != nil || parsed.RawQuery == "" {
		return target
	}
	values := parsed.Query()
	changed := false
	for _, key := range secretParams {
		if values.Has(key) {
			values.Set(key, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return target
	}
	parsed.RawQuery = values.Encode()
	return parsed.String()
}
