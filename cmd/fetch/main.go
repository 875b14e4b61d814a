package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"niftyops/internal/breadth"
	"niftyops/internal/config"
	"niftyops/internal/fyers"
	"niftyops/internal/httpx"
	"niftyops/internal/instruments"
	"niftyops/internal/quote"
	"niftyops/internal/relay"
	"niftyops/internal/sim"
)

// fetch grabs a single snapshot for the tracked universe and prints it as
// JSON, handy for smoke-testing credentials and relay routes.
func main() {
	var symbolsCSV string
	var simulated bool
	var timeout int

	flag.StringVar(&symbolsCSV, "symbols", "", "comma-separated symbols (default: full tracked universe)")
	flag.BoolVar(&simulated, "sim", false, "use the simulated feed instead of a live credential")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	symbols := instruments.Symbols()
	if symbolsCSV != "" {
		symbols = splitCSV(symbolsCSV)
	}

	var src quote.Source
	if simulated || cfg.Fyers.Simulated {
		src = sim.New(sim.NewRealRand(), quote.RealClock{}, sim.DefaultLatency)
	} else {
		if cfg.Fyers.AppID == "" || cfg.Fyers.AccessToken == "" {
			logger.Fatal("live mode needs FYERS_APP_ID and FYERS_ACCESS_TOKEN, or pass -sim")
		}
		relays, err := relay.Parse(cfg.Fyers.Relays)
		if err != nil {
			logger.Fatal("parsing relay routes", zap.Error(err))
		}
		httpClient := httpx.New(time.Duration(timeout) * time.Second)
		client := fyers.NewClient(
			fyers.WithHTTPClient(relay.New(httpClient, relays...)),
			fyers.WithQuotesURL(cfg.Fyers.QuotesURL),
		)
		src = fyers.NewSource(client, fyers.Credential{
			AppID:       cfg.Fyers.AppID,
			AccessToken: cfg.Fyers.AccessToken,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	stocks, err := src.Fetch(ctx, symbols)
	if err != nil {
		logger.Fatal("fetch failed", zap.String("source", src.Name()), zap.Error(err))
	}

	out := struct {
		Source  string        `json:"source"`
		Quotes  []quote.Stock `json:"quotes"`
		Breadth breadth.Stats `json:"breadth"`
	}{Source: src.Name(), Quotes: stocks, Breadth: breadth.Compute(stocks)}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(out)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
