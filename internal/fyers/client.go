package fyers

import (
	"net/http"

	"niftyops/internal/quote"
)

const (
	defaultQuotesURL    = "https://api.fyers.in/data-rest/v2/quotes/"
	defaultValidateURL  = "https://api.fyers.in/api/v2/validate-authcode"
	defaultAuthorizeURL = "https://api.fyers.in/api/v2/generate-authcode"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=fyers_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credential is an immutable connected-session credential. It is created by
// manual entry or by ExchangeCode and discarded on disconnect.
type Credential struct {
	AppID       string
	AccessToken string
	Simulated   bool
}

// Client is a client for the Fyers quote and auth-validation endpoints.
type Client struct {
	// quotesURL is the batch quote snapshot endpoint.
	quotesURL string
	// validateURL is the auth-code validation endpoint.
	validateURL string
	// authorizeURL is the login page the browser is redirected to.
	authorizeURL string
	// httpClient is the HTTP client, typically a relay.Doer in live use.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// clock stamps quote records at mapping time.
	clock quote.Clock
}

// ClientOption is a configuration option for the Fyers client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithQuotesURL overrides the quote endpoint.
func WithQuotesURL(u string) ClientOption {
	return func(c *Client) {
		c.quotesURL = u
	}
}

// WithValidateAuthURL overrides the auth-validation endpoint.
func WithValidateAuthURL(u string) ClientOption {
	return func(c *Client) {
		c.validateURL = u
	}
}

// WithAuthorizeURL overrides the login redirect base URL.
func WithAuthorizeURL(u string) ClientOption {
	return func(c *Client) {
		c.authorizeURL = u
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithClock sets the clock used for ObservedAt stamping.
func WithClock(clock quote.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a new Fyers API client.
func NewClient(options ...ClientOption) *Client {
	var client = &Client{
		quotesURL:    defaultQuotesURL,
		validateURL:  defaultValidateURL,
		authorizeURL: defaultAuthorizeURL,
		httpClient:   http.DefaultClient,
		header:       http.Header{},
		clock:        quote.RealClock{},
	}
	for _, option := range options {
		option(client)
	}
	return client
}
