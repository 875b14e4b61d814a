package fyers

import (
	"crypto/sha256"
	"encoding/hex"
)

// AppIDHash computes the shared-secret proof sent with the token exchange:
// the lowercase hex sha256 of "appID:secret". The provider recomputes the
// same digest, so encoding and casing must never vary.
func AppIDHash(appID, secret string) string {
	sum := sha256.Sum256([]byte(appID + ":" + secret))
	return hex.EncodeToString(sum[:])
}
