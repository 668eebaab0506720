package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/metrics"
	"github.com/felixgeelhaar/certipro/internal/session"
)

var testKeys = session.Keys{
	Token:       "certipro_token",
	User:        "certipro_user",
	AccountType: "certipro_account_type",
}

type fakeNavigator struct {
	mu      sync.Mutex
	current string
	visits  []string
}

func (n *fakeNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visits = append(n.visits, path)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func loggedInStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), testKeys)
	require.NoError(t, store.SetToken("abc"))
	require.NoError(t, store.SetUser(map[string]any{"id": 1}))
	require.NoError(t, store.SetAccountType(session.AccountUser))
	return store
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", loggedInStore(t), WithUserAgent("certipro-test"))

	payload, err := client.Get(context.Background(), "/auth/me")
	require.NoError(t, err)
	assert.True(t, payload.Success())

	assert.Equal(t, "/api/auth/me", gotPath)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Equal(t, "certipro-test", got.Get("User-Agent"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestPublicRequestOmitsToken(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, loggedInStore(t))
	_, err := client.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.co"}, Public())
	require.NoError(t, err)

	empty := NewClient(srv.URL, session.NewStore(session.NewMemoryStorage(), testKeys))
	_, err = empty.Get(context.Background(), "/auth/me")
	require.NoError(t, err)

	assert.Equal(t, []string{"", ""}, auth)
}

func TestRequestSendsJSONBody(t *testing.T) {
	var body map[string]any
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"success":true,"data":{"saved":true}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, loggedInStore(t))
	payload, err := client.Put(context.Background(), "/user/profile", map[string]any{"name": "A"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, map[string]any{"name": "A"}, body)
	assert.True(t, payload.Data().Bool("saved"))
}

func TestUnauthorizedClearsSessionAndRedirects(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusUnauthorized, `{"message":"Token expired"}`))
	defer srv.Close()

	store := loggedInStore(t)
	nav := &fakeNavigator{current: "dashboard.html"}
	_, m := metrics.NewRegistry()
	client := NewClient(srv.URL, store, WithNavigator(nav), WithMetrics(m))

	_, err := client.Get(context.Background(), "/user/dashboard/stats")

	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "Token expired", reqErr.Message)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, errors.ErrCodeUnauthorized, reqErr.Code)
	assert.Equal(t, "Token expired", reqErr.Payload["message"])

	assert.False(t, store.IsLoggedIn())
	_, hasUser := store.User()
	assert.False(t, hasUser)
	assert.Equal(t, session.AccountType(""), store.AccountType())

	assert.Equal(t, []string{"index.html"}, nav.visits)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionExpirations.WithLabelValues("unauthorized")))
}

func TestUnauthorizedOnAllowListedPageDoesNotRedirect(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusUnauthorized, `{"message":"Invalid credentials"}`))
	defer srv.Close()

	for _, page := range []string{"index.html", "signup.html", "verify.html", "forgot_password.html", "set_pswd.html"} {
		t.Run(page, func(t *testing.T) {
			store := loggedInStore(t)
			nav := &fakeNavigator{current: "/app/" + page}
			client := NewClient(srv.URL, store, WithNavigator(nav))

			_, err := client.Post(context.Background(), "/auth/login", map[string]string{}, Public())

			assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err))
			assert.False(t, store.IsLoggedIn(), "session is cleared even without redirect")
			assert.Empty(t, nav.visits)
		})
	}
}

func TestCustomLoginPageAndAllowList(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusUnauthorized, `{}`))
	defer srv.Close()

	nav := &fakeNavigator{current: "verify.html"}
	client := NewClient(srv.URL, loggedInStore(t),
		WithNavigator(nav),
		WithLoginPage("login"),
		WithAllowList("welcome"),
	)

	_, err := client.Get(context.Background(), "/auth/me")
	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, errors.MsgGeneric, reqErr.Message)
	assert.Equal(t, []string{"login"}, nav.visits)
}

func TestServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusInternalServerError, `{"message":"server exploded"}`))
	defer srv.Close()

	store := loggedInStore(t)
	nav := &fakeNavigator{current: "dashboard.html"}
	client := NewClient(srv.URL, store, WithNavigator(nav))

	_, err := client.Get(context.Background(), "/skills")

	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "server exploded", reqErr.Message)
	assert.Equal(t, 500, reqErr.StatusCode)
	assert.Equal(t, errors.ErrCodeRejected, reqErr.Code)
	assert.Equal(t, map[string]any{"message": "server exploded"}, map[string]any(reqErr.Payload))
	assert.True(t, store.IsLoggedIn(), "only a 401 ends the session")
	assert.Empty(t, nav.visits)
}

func TestServerErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusNotFound, `{"error":"nope"}`))
	defer srv.Close()

	_, err := NewClient(srv.URL, loggedInStore(t)).Get(context.Background(), "/skills/42")

	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "Something went wrong", reqErr.Message)
	assert.Equal(t, 404, reqErr.StatusCode)
	assert.Equal(t, "nope", reqErr.Payload["error"])
}

func TestNetworkErrorKeepsSession(t *testing.T) {
	store := loggedInStore(t)
	nav := &fakeNavigator{current: "dashboard.html"}
	client := NewClient("http://certipro.invalid/api", store,
		WithNavigator(nav),
		WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("dial tcp: connection refused")
		})),
	)

	_, err := client.Get(context.Background(), "/auth/me")

	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.Equal(t, "Network error. Please check your connection.", reqErr.Message)
	assert.Nil(t, reqErr.Payload)
	assert.True(t, reqErr.IsNetwork())
	assert.True(t, store.IsLoggedIn())
	assert.Empty(t, nav.visits)
}

func TestClosedServerIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{}`))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, loggedInStore(t)).Get(context.Background(), "/skills")
	assert.Equal(t, 0, errors.StatusCode(err))
}

func TestCancelledContextIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{}`))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, loggedInStore(t)).Get(ctx, "/skills")
	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.True(t, reqErr.IsNetwork())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
		loggedIn bool
	}{
		{"html on success", http.StatusOK, "<html>oops</html>", errors.ErrCodeMalformedResponse, true},
		{"array on success", http.StatusOK, `[1,2]`, errors.ErrCodeMalformedResponse, true},
		{"null on success", http.StatusOK, `null`, errors.ErrCodeMalformedResponse, true},
		{"html on bad gateway", http.StatusBadGateway, "<html>bad gateway</html>", errors.ErrCodeRejected, true},
		{"html on unauthorized", http.StatusUnauthorized, "Unauthorized", errors.ErrCodeUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(tt.status, tt.body))
			defer srv.Close()

			store := loggedInStore(t)
			_, err := NewClient(srv.URL, store).Get(context.Background(), "/skills")

			reqErr, ok := errors.AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, reqErr.Code)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.NotNil(t, reqErr.Cause)
			assert.Equal(t, tt.loggedIn, store.IsLoggedIn())
		})
	}
}

func TestEmptyBodyIsEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusNoContent, ""))
	defer srv.Close()

	payload, err := NewClient(srv.URL, loggedInStore(t)).Delete(context.Background(), "/user/certificates/1")
	require.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Empty(t, payload)
}

func TestUnencodableBody(t *testing.T) {
	called := false
	client := NewClient("http://example.com", loggedInStore(t),
		WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
			called = true
			return nil, fmt.Errorf("unreachable")
		})),
	)

	_, err := client.Post(context.Background(), "/x", map[string]any{"ch": make(chan int)})

	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRequestEncoding, reqErr.Code)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.False(t, called)
}

func TestRequestErrorsPropagateUnchanged(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusConflict, `{"message":"Already attempted"}`))
	defer srv.Close()

	client := NewClient(srv.URL, loggedInStore(t))
	_, err := client.StartTest(context.Background(), "skill-1")

	wrapped := fmt.Errorf("starting test: %w", err)
	reqErr, ok := errors.AsRequestError(wrapped)
	require.True(t, ok)
	assert.Same(t, err.(*errors.RequestError), reqErr)
	assert.Equal(t, "Already attempted", reqErr.Message)
}

func TestRequestMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/fail") {
			w.WriteHeader(http.StatusBadRequest)
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, m := metrics.NewRegistry()
	client := NewClient(srv.URL, loggedInStore(t), WithMetrics(m))

	_, _ = client.Get(context.Background(), "/ok")
	_, _ = client.Get(context.Background(), "/fail")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.APIRequests.WithLabelValues("GET", "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Errors.WithLabelValues("API-003")))
}

func TestAllowListed(t *testing.T) {
	assert.True(t, AllowListed("/pages/forgot_password.html", DefaultAllowList))
	assert.False(t, AllowListed("dashboard.html", DefaultAllowList))
	assert.False(t, AllowListed("anything", []string{""}))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "", Fingerprint(""))
	fp := Fingerprint("abc")
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, Fingerprint("abc"))
	assert.NotEqual(t, fp, Fingerprint("abd"))
	assert.NotContains(t, fp, "abc")
}
