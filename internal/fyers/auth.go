package fyers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"niftyops/internal/quote"
)

type validateRequest struct {
	GrantType string `json:"grant_type"`
	AppIDHash string `json:"appIdHash"`
	Code      string `json:"code"`
	ClientID  string `json:"client_id"`
}

type validateResponse struct {
	S           string `json:"s"`
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// ExchangeCode converts a one-time authorization code plus application
// credentials into an access token. Exactly one POST is attempted: the code
// is single-use, so retry policy belongs to the caller, who must restart the
// authorization flow from scratch on failure.
func (c *Client) ExchangeCode(ctx context.Context, authCode, appID, secret string) (string, error) {
	payload := validateRequest{
		GrantType: "authorization_code",
		AppIDHash: AppIDHash(appID, secret),
		Code:      authCode,
		ClientID:  appID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.validateURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating exchange request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errorsIsRouteFailure(err) {
			return "", fmt.Errorf("exchanging auth code: %w", err)
		}
		return "", fmt.Errorf("exchanging auth code: %w: %w", quote.ErrTransport, err)
	}
	defer res.Body.Close()

	var parsed validateResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decoding exchange response: %v", quote.ErrMalformedResponse, err)
	}
	if parsed.S != "ok" {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("authorization code validation failed (http %d)", res.StatusCode)
		}
		return "", fmt.Errorf("%w: %s", quote.ErrCredentialRejected, msg)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("%w: ok status without access_token", quote.ErrMalformedResponse)
	}
	return parsed.AccessToken, nil
}
