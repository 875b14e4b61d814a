package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"niftyops/internal/authstate"
	"niftyops/internal/config"
	"niftyops/internal/fyers"
	"niftyops/internal/httpx"
	"niftyops/internal/relay"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	relays, err := relay.Parse(cfg.Fyers.Relays)
	if err != nil {
		logger.Fatal("parsing relay routes", zap.Error(err))
	}

	client := fyers.NewClient(
		fyers.WithHTTPClient(relay.New(httpClient, relays...)),
		fyers.WithQuotesURL(cfg.Fyers.QuotesURL),
		fyers.WithValidateAuthURL(cfg.Fyers.ValidateAuthURL),
		fyers.WithAuthorizeURL(cfg.Fyers.AuthorizeURL),
	)

	var pending authstate.Store
	if cfg.Session.DBPath != "" {
		store, err := authstate.OpenSQLite(cfg.Session.DBPath)
		if err != nil {
			logger.Fatal("opening session store", zap.Error(err), zap.String("path", cfg.Session.DBPath))
		}
		defer store.Close()
		pending = store
	} else {
		pending = authstate.NewMemory()
	}

	hub := NewHub(logger)
	app := newApp(cfg, logger, client, pending, hub)

	// Connect on boot when the environment already carries a credential or
	// asks for the simulated feed.
	switch {
	case cfg.Fyers.Simulated:
		app.connect(fyers.Credential{Simulated: true})
	case cfg.Fyers.AppID != "" && cfg.Fyers.AccessToken != "":
		app.connect(fyers.Credential{AppID: cfg.Fyers.AppID, AccessToken: cfg.Fyers.AccessToken})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	app.disconnect()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
