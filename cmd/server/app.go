package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"niftyops/internal/authstate"
	"niftyops/internal/breadth"
	"niftyops/internal/config"
	"niftyops/internal/fyers"
	"niftyops/internal/instruments"
	"niftyops/internal/poller"
	"niftyops/internal/quote"
	"niftyops/internal/ratelimit"
	"niftyops/internal/sim"
)

// App owns one dashboard session: at most one credential, one polling
// session, and the latest completed snapshot.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *fyers.Client
	pending authstate.Store
	hub     *Hub

	// exchanges coalesces concurrent token exchanges per auth code: the
	// code is single-use and a duplicate in-flight attempt would
	// spuriously fail.
	exchanges singleflight.Group

	mu       sync.RWMutex
	session  *poller.Session
	cred     *fyers.Credential
	snapshot []quote.Stock
	stats    breadth.Stats
	lastErr  string
}

func newApp(cfg *config.Config, logger *zap.Logger, client *fyers.Client, pending authstate.Store, hub *Hub) *App {
	return &App{cfg: cfg, logger: logger, client: client, pending: pending, hub: hub}
}

// connect starts a polling session for cred, stopping any previous session
// first so two timers never run concurrently.
func (a *App) connect(cred fyers.Credential) {
	a.mu.Lock()
	prev := a.session
	a.session = nil
	a.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}

	var src quote.Source
	if cred.Simulated {
		src = sim.New(sim.NewRealRand(), quote.RealClock{}, sim.DefaultLatency)
	} else {
		src = fyers.NewSource(a.client, cred)
		if gap := a.cfg.Poll.MinRequestIntervalMs; gap > 0 {
			src = &ratelimit.MinInterval{Source: src, Interval: time.Duration(gap) * time.Millisecond}
		}
	}

	session := poller.Start(poller.Config{
		Source:       src,
		Symbols:      instruments.Symbols(),
		Interval:     time.Duration(a.cfg.Poll.IntervalMs) * time.Millisecond,
		FetchTimeout: time.Duration(a.cfg.Poll.FetchTimeoutSec) * time.Second,
		OnQuotes:     a.onSnapshot,
		OnError:      a.onPollError,
		Logger:       a.logger,
	})

	a.mu.Lock()
	a.cred = &cred
	a.session = session
	a.mu.Unlock()
	a.logger.Info("polling session started",
		zap.String("source", src.Name()),
		zap.Bool("simulated", cred.Simulated))
}

// disconnect stops the session and discards the credential. Idempotent.
func (a *App) disconnect() {
	a.mu.Lock()
	session := a.session
	a.session = nil
	a.cred = nil
	a.mu.Unlock()
	if session != nil {
		session.Stop()
		a.logger.Info("polling session stopped")
	}
}

func (a *App) connected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session != nil
}

// onSnapshot applies "last completed wins": the cycle that finished last
// replaces the whole collection.
func (a *App) onSnapshot(stocks []quote.Stock) {
	stats := breadth.Compute(stocks)
	a.mu.Lock()
	a.snapshot = stocks
	a.stats = stats
	a.lastErr = ""
	a.mu.Unlock()

	if b, err := json.Marshal(wsMessage{Type: "snapshot", Quotes: stocks, Breadth: stats}); err == nil {
		a.hub.Broadcast(b)
	}
}

func (a *App) onPollError(err error) {
	a.mu.Lock()
	a.lastErr = err.Error()
	a.mu.Unlock()

	if b, marshalErr := json.Marshal(wsMessage{Type: "error", Error: err.Error()}); marshalErr == nil {
		a.hub.Broadcast(b)
	}
}

func (a *App) latest() ([]quote.Stock, breadth.Stats, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot, a.stats, a.lastErr
}

// exchangeAndConnect consumes the pending slot, trades the one-time code for
// a token and starts live polling.
func (a *App) exchangeAndConnect(ctx context.Context, authCode string) error {
	pending, ok, err := a.pending.Take(ctx)
	if err != nil {
		return fmt.Errorf("reading pending auth state: %w", err)
	}
	if !ok {
		return fmt.Errorf("no pending authorization flow")
	}

	token, err, _ := a.exchanges.Do(authCode, func() (any, error) {
		return a.client.ExchangeCode(ctx, authCode, pending.AppID, pending.SecretID)
	})
	if err != nil {
		return err
	}

	a.connect(fyers.Credential{AppID: pending.AppID, AccessToken: token.(string)})
	return nil
}

type wsMessage struct {
	Type    string        `json:"type"`
	Quotes  []quote.Stock `json:"quotes,omitempty"`
	Breadth breadth.Stats `json:"breadth,omitempty"`
	Error   string        `json:"error,omitempty"`
}
