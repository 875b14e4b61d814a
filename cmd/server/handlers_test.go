package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"niftyops/internal/authstate"
	"niftyops/internal/config"
	"niftyops/internal/fyers"
	"niftyops/internal/httpx"
	"niftyops/internal/instruments"
	"niftyops/internal/quote"
	"niftyops/internal/sim"
)

func init() { gin.SetMode(gin.TestMode) }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", RequestTimeoutSec: 5},
		Fyers:  config.FyersConfig{RedirectURI: "http://localhost:8080/api/auth/callback"},
		Poll:   config.PollConfig{IntervalMs: 20, FetchTimeoutSec: 5},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...fyers.ClientOption) *App {
	t.Helper()
	logger := zap.NewNop()
	client := fyers.NewClient(opts...)
	app := newApp(cfg, logger, client, authstate.NewMemory(), NewHub(logger))
	t.Cleanup(app.disconnect)
	return app
}

func TestQuotes_EmptyBeforeConnect(t *testing.T) {
	t.Parallel()

	// Arrange
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	// Act
	resp, err := http.Get(srv.URL + "/api/quotes")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Connected bool              `json:"connected"`
		Quotes    []json.RawMessage `json:"quotes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Connected)
	require.Empty(t, body.Quotes)
}

func TestConnect_SimulatedServesSnapshots(t *testing.T) {
	t.Parallel()

	// Arrange
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	// Act
	resp, err := http.Post(srv.URL+"/api/connect", "application/json",
		bytes.NewBufferString(`{"simulated":true}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Assert: the first simulated cycle lands within its synthetic latency.
	require.Eventually(t, func() bool {
		stocks, _, _ := app.latest()
		return len(stocks) == 50
	}, 3*time.Second, 20*time.Millisecond)

	_, stats, _ := app.latest()
	require.Equal(t, 50, stats.Advancers+stats.Decliners+stats.Unchanged)
}

func TestConnect_LiveWithoutCredentialRejected(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/connect", "application/json",
		bytes.NewBufferString(`{"app_id":"XV1-100"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, app.connected())
}

func TestDisconnect_Idempotent(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/api/disconnect", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.False(t, app.connected())
}

func TestAuthLogin_StoresPendingAndBuildsURL(t *testing.T) {
	t.Parallel()

	// Arrange
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	// Act
	resp, err := http.Get(srv.URL + "/api/auth/login?app_id=XV1-100&secret_id=s3cr3t")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		LoginURL string `json:"login_url"`
		State    string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body.LoginURL, "client_id=XV1-100")
	require.Contains(t, body.LoginURL, "state="+body.State)
	require.NotEmpty(t, body.State)

	pending, ok, err := app.pending.Take(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "XV1-100", pending.AppID)
	require.Equal(t, "s3cr3t", pending.SecretID)
}

func TestAuthLogin_MissingCredentialRejected(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/auth/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthCallback_NoPendingFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/auth/callback?auth_code=abc123")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthCallback_ProviderError(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/auth/callback?error=access_denied")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAuthCallback_ExchangesAndConnects(t *testing.T) {
	t.Parallel()

	// Arrange: a stub provider that validates the code and serves quotes.
	var quotesAuth atomic.Value
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/validate"):
			var req struct {
				Code string `json:"code"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Code != "abc123" {
				fmt.Fprint(w, `{"s":"error","message":"invalid code"}`)
				return
			}
			fmt.Fprint(w, `{"s":"ok","access_token":"tok_xyz"}`)
		case strings.HasPrefix(r.URL.Path, "/quotes"):
			quotesAuth.Store(r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"s":"ok","d":[{"n":"NSE:RELIANCE-EQ","v":{"lp":2870.5,"ch":12.3,"chp":0.43,"o":2858.2,"h":2881,"l":2844.95,"v":5214321}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	cfg := testConfig()
	httpClient := httpx.New(5 * time.Second)
	app := newTestApp(t, cfg,
		fyers.WithHTTPClient(httpClient.HTTP),
		fyers.WithValidateAuthURL(provider.URL+"/validate"),
		fyers.WithQuotesURL(provider.URL+"/quotes"),
	)
	require.NoError(t, app.pending.Put(t.Context(), authstate.Pending{
		AppID:       "XV1-100",
		SecretID:    "s3cr3t",
		RedirectURI: cfg.Fyers.RedirectURI,
	}))
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	// Act
	resp, err := http.Get(srv.URL + "/api/auth/callback?auth_code=abc123")
	require.NoError(t, err)
	resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, app.connected())
	require.Eventually(t, func() bool {
		stocks, _, _ := app.latest()
		return len(stocks) == 1 && stocks[0].Symbol == "NSE:RELIANCE-EQ"
	}, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, "XV1-100:tok_xyz", quotesAuth.Load())

	// The one-time code is consumed with the pending slot.
	_, ok, err := app.pending.Take(t.Context())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuthCallback_RejectedCredentialUnauthorized(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"s":"error","message":"invalid auth code"}`)
	}))
	defer provider.Close()

	httpClient := httpx.New(5 * time.Second)
	app := newTestApp(t, testConfig(),
		fyers.WithHTTPClient(httpClient.HTTP),
		fyers.WithValidateAuthURL(provider.URL),
	)
	require.NoError(t, app.pending.Put(t.Context(), authstate.Pending{AppID: "XV1-100", SecretID: "s3cr3t"}))
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/auth/callback?auth_code=stale")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, app.connected())
}

func simSnapshot(t *testing.T) []quote.Stock {
	t.Helper()
	stocks, err := sim.New(sim.NewRealRand(), quote.RealClock{}, 0).
		Fetch(t.Context(), instruments.Symbols())
	require.NoError(t, err)
	return stocks
}

func TestWebSocket_ReplaysLatestSnapshotOnConnect(t *testing.T) {
	t.Parallel()

	// Arrange
	app := newTestApp(t, testConfig())
	srv := httptest.NewServer(newRouter(app))
	defer srv.Close()

	app.onSnapshot(simSnapshot(t))

	// Act
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Assert: a fresh subscriber gets the last snapshot immediately.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got wsMessage
	require.NoError(t, json.Unmarshal(msg, &got))
	require.Equal(t, "snapshot", got.Type)
	require.Len(t, got.Quotes, 50)
	require.Equal(t, 50, got.Breadth.Advancers+got.Breadth.Decliners+got.Breadth.Unchanged)
}
