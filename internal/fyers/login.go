package fyers

import (
	"net/url"

	"github.com/google/uuid"
)

// NewState returns an opaque unique token for the login redirect round-trip.
func NewState() string {
	return uuid.NewString()
}

// LoginURL constructs the provider login page URL the browser is redirected
// to. The redirect flow returns control on redirectURI with either auth_code
// or error as a query parameter.
func (c *Client) LoginURL(appID, redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", appID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	return c.authorizeURL + "?" + q.Encode()
}
