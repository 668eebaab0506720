package platform

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/log"
	"github.com/felixgeelhaar/certipro/internal/metrics"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Navigator decides where the user goes when the session ends.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// TokenStore is the part of the session the client reads and clears.
type TokenStore interface {
	Token() string
	Clear() error
}

// Default pages used by the 401 handling when no options override them.
var (
	DefaultLoginPage = "index.html"
	DefaultAllowList = []string{"index.html", "signup", "verify", "forgot", "set_pswd"}
)

// Client is the CertiPro API client
type Client struct {
	baseURL   string
	http      Doer
	store     TokenStore
	nav       Navigator
	loginPage string
	allowList []string
	userAgent string
	logger    *log.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithNavigator sets the strategy invoked after a 401
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.nav = n }
}

// WithLoginPage sets where a 401 navigates to
func WithLoginPage(path string) Option {
	return func(c *Client) { c.loginPage = path }
}

// WithAllowList sets the page substrings on which a 401 does not navigate
func WithAllowList(patterns ...string) Option {
	return func(c *Client) { c.allowList = patterns }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a new API client rooted at baseURL. The default
// transport sets no timeout; callers bound requests through the context.
func NewClient(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		store:     store,
		loginPage: DefaultLoginPage,
		allowList: DefaultAllowList,
		userAgent: "certipro-cli",
		logger:    log.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request sends one request and classifies the outcome. Every failure is a
// *errors.RequestError:
//   - transport failure: status 0, no payload, session untouched
//   - 401: session cleared, navigation to the login page unless the current
//     page is allow-listed
//   - other non-2xx: server message (or a generic one) and the status
func (c *Client) Request(ctx context.Context, endpoint, method string, body any, requiresAuth bool) (Payload, error) {
	requestID := uuid.NewString()

	var reqBody io.Reader
	if body != nil && method != http.MethodGet && method != http.MethodDelete {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(ctx, errors.NewRequestEncodingError(err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, c.fail(ctx, errors.Wrap(errors.ErrCodeRequestEncoding, 0, "Failed to build request", err))
	}

	token := ""
	if requiresAuth {
		token = c.store.Token()
	}
	c.setHeaders(req, token, requestID)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(ctx, requestID, method, endpoint, 0, start, token)
		return nil, c.fail(ctx, errors.NewNetworkError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(ctx, requestID, method, endpoint, resp.StatusCode, start, token)
	if err != nil {
		return nil, c.fail(ctx, errors.NewNetworkError(err))
	}

	payload, parseErr := decodePayload(data)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if parseErr != nil {
			return nil, c.fail(ctx, errors.NewMalformedResponseError(resp.StatusCode, parseErr))
		}
		return payload, nil

	case resp.StatusCode == http.StatusUnauthorized:
		c.expireSession(ctx)
		reqErr := errors.NewUnauthorizedError(payload.String("message"), payload)
		reqErr.Cause = parseErr
		return nil, c.fail(ctx, reqErr)

	default:
		reqErr := errors.NewStatusError(resp.StatusCode, payload.String("message"), payload)
		reqErr.Cause = parseErr
		return nil, c.fail(ctx, reqErr)
	}
}

func (c *Client) setHeaders(req *http.Request, token, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// expireSession clears the session after a 401 and leaves the current page
// unless it belongs to an auth flow.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.store.Clear(); err != nil {
		c.logger.WithError(err).WarnContext(ctx, "failed to clear expired session")
	}
	c.metrics.ObserveSessionExpired("unauthorized")

	if c.nav == nil {
		return
	}
	current := c.nav.CurrentPath()
	if AllowListed(current, c.allowList) {
		c.logger.DebugContext(ctx, "session expired on auth page, staying", "page", current)
		return
	}
	c.nav.Navigate(c.loginPage)
}

func (c *Client) fail(ctx context.Context, err *errors.RequestError) *errors.RequestError {
	c.metrics.ObserveError(string(err.Code))
	c.logger.WithError(err).DebugContext(ctx, "api request failed")
	return err
}

func (c *Client) observe(ctx context.Context, requestID, method, endpoint string, status int, start time.Time, token string) {
	elapsed := c.now().Sub(start)
	c.metrics.ObserveRequest(method, status, elapsed)
	c.logger.DebugContext(ctx, "api request",
		"request_id", requestID,
		"method", method,
		"endpoint", endpoint,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"token", Fingerprint(token),
	)
}

// AllowListed reports whether path contains any of the patterns.
func AllowListed(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Fingerprint returns a short blake3 digest identifying token in logs
// without revealing it. Empty tokens yield "".
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

// RequestOption adjusts a single verb call
type RequestOption func(*requestOptions)

type requestOptions struct {
	public bool
	query  url.Values
}

// Public sends the request without the bearer token
func Public() RequestOption {
	return func(o *requestOptions) { o.public = true }
}

// WithQuery appends query parameters to the endpoint
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, opts []RequestOption) (Payload, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	if encoded := o.query.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + encoded
	}
	return c.Request(ctx, endpoint, method, body, !o.public)
}

func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (Payload, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, opts)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (Payload, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, opts)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) (Payload, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, opts)
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (Payload, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, opts)
}
