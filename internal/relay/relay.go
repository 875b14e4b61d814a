// Package relay implements sequential failover across intermediary relay
// endpoints for environments where direct calls to the provider are blocked.
package relay

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"niftyops/internal/quote"
)

// EncodeMode selects how a relay expects the target URL to be embedded.
type EncodeMode int

const (
	// EncodeNone appends the target URL verbatim to the relay endpoint.
	EncodeNone EncodeMode = iota
	// EncodeQuery percent-encodes the target URL before appending.
	EncodeQuery
)

// Relay is one intermediary route. An empty Endpoint means the direct route.
type Relay struct {
	Endpoint string
	Encode   EncodeMode
}

// Direct is the conceptual first route: no relay at all.
var Direct = Relay{}

// URLFor wraps target for this relay.
func (r Relay) URLFor(target string) string {
	if r.Endpoint == "" {
		return target
	}
	if r.Encode == EncodeQuery {
		return r.Endpoint + url.QueryEscape(target)
	}
	return r.Endpoint + target
}

// HTTPClient is the transport the Doer fans requests out over.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Doer issues a request through an ordered relay list with pure sequential
// fallback. A transport-level failure moves to the next relay; any returned
// HTTP status, success or error, means the request reached a server and
// failover stops. The list is walked from the top on every call; there is no
// sticky last-good relay.
type Doer struct {
	Client HTTPClient
	Relays []Relay
}

// New builds a Doer. With no relays configured requests go direct.
func New(client HTTPClient, relays ...Relay) *Doer {
	if len(relays) == 0 {
		relays = []Relay{Direct}
	}
	return &Doer{Client: client, Relays: relays}
}

// Do attempts req through each relay in order. The request body, if any, must
// be rewindable via req.GetBody.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	target := req.URL.String()
	var lastErr error
	for _, r := range d.Relays {
		attempt, err := rewriteRequest(req, r.URLFor(target))
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := d.Client.Do(attempt)
		if err != nil {
			// Transport failure: this route never reached a server.
			lastErr = err
			continue
		}
		// A status came back, even an error one. The real endpoint (or the
		// relay) answered, so failover stops here.
		return resp, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrRoutesExhausted, lastErr)
	}
	return nil, fmt.Errorf("%w: no relays configured", quote.ErrRoutesExhausted)
}

// rewriteRequest clones req with its URL swapped for the relay-wrapped one.
func rewriteRequest(req *http.Request, rawURL string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.URL = u
	clone.Host = ""
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind body: %w", err)
		}
		clone.Body = body
	}
	return clone, nil
}

// Parse builds a relay list from "endpoint|mode" specs, mode one of
// "raw" (default) or "query". An empty spec is the direct route.
func Parse(specs []string) ([]Relay, error) {
	out := make([]Relay, 0, len(specs))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" {
			out = append(out, Direct)
			continue
		}
		endpoint, mode := s, "raw"
		if i := strings.LastIndex(s, "|"); i >= 0 {
			endpoint, mode = s[:i], strings.TrimSpace(s[i+1:])
		}
		r := Relay{Endpoint: endpoint}
		switch strings.ToLower(mode) {
		case "", "raw":
			r.Encode = EncodeNone
		case "query":
			r.Encode = EncodeQuery
		default:
			return nil, fmt.Errorf("unknown relay mode %q", mode)
		}
		out = append(out, r)
	}
	return out, nil
}
