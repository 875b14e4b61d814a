package fyers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"niftyops/internal/instruments"
	"niftyops/internal/quote"
)

type quoteValues struct {
	LP  float64 `json:"lp"`
	CH  float64 `json:"ch"`
	CHP float64 `json:"chp"`
	O   float64 `json:"o"`
	H   float64 `json:"h"`
	L   float64 `json:"l"`
	V   float64 `json:"v"`
}

type quoteEntry struct {
	N string      `json:"n"`
	V quoteValues `json:"v"`
}

type quoteEnvelope struct {
	S       string       `json:"s"`
	D       []quoteEntry `json:"d"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
}

// Quotes fetches one batch snapshot for symbols and normalizes it. The call
// either returns a full sequence or a single error; provider ordering is
// preserved and duplicate symbols collapse to the last entry seen.
func (c *Client) Quotes(ctx context.Context, cred Credential, symbols []string) ([]quote.Stock, error) {
	u := c.quotesURL + "?symbols=" + url.QueryEscape(strings.Join(symbols, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating quotes request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Authorization", cred.AppID+":"+cred.AccessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errorsIsRouteFailure(err) {
			return nil, fmt.Errorf("fetching quotes: %w", err)
		}
		return nil, fmt.Errorf("fetching quotes: %w: %w", quote.ErrTransport, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("%w: http %d: %s", quote.ErrCredentialRejected, res.StatusCode, strings.TrimSpace(string(b)))
	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("provider error: http %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}

	var env quoteEnvelope
	if err := json.NewDecoder(io.LimitReader(res.Body, 4<<20)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decoding quotes response: %v", quote.ErrMalformedResponse, err)
	}
	if env.S != "ok" || env.D == nil {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected envelope s=%q", env.S)
		}
		return nil, fmt.Errorf("%w: %s", quote.ErrMalformedResponse, msg)
	}

	out := make([]quote.Stock, 0, len(env.D))
	index := make(map[string]int, len(env.D))
	for _, e := range env.D {
		s := quote.Stock{
			Symbol:     e.N,
			Name:       instruments.NameFor(e.N),
			LastPrice:  e.V.LP,
			Change:     e.V.CH,
			ChangePct:  e.V.CHP,
			Open:       e.V.O,
			High:       e.V.H,
			Low:        e.V.L,
			Volume:     e.V.V,
			ObservedAt: c.clock.Now().UnixMilli(),
		}
		if i, seen := index[e.N]; seen {
			out[i] = s
			continue
		}
		index[e.N] = len(out)
		out = append(out, s)
	}
	return out, nil
}

func errorsIsRouteFailure(err error) bool {
	return errors.Is(err, quote.ErrRoutesExhausted)
}

// Source adapts a Client plus Credential to the quote.Source interface for
// the polling loop.
type Source struct {
	client *Client
	cred   Credential
}

func NewSource(client *Client, cred Credential) *Source {
	return &Source{client: client, cred: cred}
}

func (s *Source) Name() string { return "Fyers" }

func (s *Source) Fetch(ctx context.Context, symbols []string) ([]quote.Stock, error) {
	return s.client.Quotes(ctx, s.cred, symbols)
}
