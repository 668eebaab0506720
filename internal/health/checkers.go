package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/felixgeelhaar/certipro/internal/auth"
	"github.com/felixgeelhaar/certipro/internal/config"
	"github.com/felixgeelhaar/certipro/internal/platform"
	"github.com/felixgeelhaar/certipro/internal/session"
)

// APIChecker probes the public skill categories endpoint. It sends no
// token, so a failing probe never touches the session.
type APIChecker struct {
	baseURL   string
	http      platform.Doer
	userAgent string
}

func NewAPIChecker(baseURL string, doer platform.Doer, userAgent string) *APIChecker {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &APIChecker{baseURL: strings.TrimRight(baseURL, "/"), http: doer, userAgent: userAgent}
}

func (c *APIChecker) Name() string { return "api" }

func (c *APIChecker) Check(ctx context.Context) *Result {
	url := c.baseURL + config.EndpointSkillCategories
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unhealthy("invalid API URL").WithDetail("error", err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Unhealthy("API unreachable").
			WithDetail("url", c.baseURL).
			WithDetail("error", err.Error()).
			WithHint("Check --api-url, " + config.EnvAPIURL + " or 'certipro config set api.base_url'")
	}
	defer resp.Body.Close()

	r := Healthy(fmt.Sprintf("API reachable (HTTP %d)", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		r = Degraded(fmt.Sprintf("API answered with HTTP %d", resp.StatusCode)).
			WithHint("The CertiPro API is having problems; try again later")
	}
	r.Latency = time.Since(start)
	return r.WithDetail("url", c.baseURL).WithDetail("status", resp.StatusCode)
}

// SessionChecker inspects the session file and the stored token.
type SessionChecker struct {
	path  string
	store *session.Store
	now   func() time.Time
}

func NewSessionChecker(path string, store *session.Store, now func() time.Time) *SessionChecker {
	if now == nil {
		now = time.Now
	}
	return &SessionChecker{path: path, store: store, now: now}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	info, err := os.Stat(c.path)
	switch {
	case os.IsNotExist(err):
		return Healthy("not logged in")
	case err != nil:
		return Unhealthy("session file unreadable").
			WithDetail("path", c.path).
			WithDetail("error", err.Error())
	case info.Mode().Perm()&0o077 != 0:
		return Degraded("session file is accessible by other users").
			WithDetail("path", c.path).
			WithDetail("mode", info.Mode().Perm().String()).
			WithHint("chmod 600 " + c.path)
	}

	if !c.store.IsLoggedIn() {
		return Healthy("not logged in")
	}

	token := c.store.Token()
	r := Healthy("logged in").
		WithDetail("account_type", string(c.store.AccountType())).
		WithDetail("token_fingerprint", platform.Fingerprint(token))

	claims, err := auth.ParseTokenInfo(token)
	if err != nil || claims.ExpiresAt == nil {
		return r
	}
	r.WithDetail("expires_at", claims.ExpiresAt.UTC().Format(time.RFC3339))
	if claims.Expired(c.now()) {
		r.Status = StatusDegraded
		r.Message = "token has expired"
		r.Hint = "Run 'certipro auth login' to sign in again"
	}
	return r
}

// ClipboardChecker reports whether --copy and --copy-token can work.
type ClipboardChecker struct {
	unsupported func() bool
}

func NewClipboardChecker() *ClipboardChecker {
	return &ClipboardChecker{unsupported: func() bool { return clipboard.Unsupported }}
}

func (c *ClipboardChecker) Name() string { return "clipboard" }

func (c *ClipboardChecker) Check(ctx context.Context) *Result {
	if c.unsupported() {
		return Degraded("no clipboard utility found").
			WithHint("Install xclip, xsel or wl-clipboard to use --copy")
	}
	return Healthy("clipboard available")
}
