package models

import (
	"fmt"
	"time"
)

// RefreshSkew is subtracted from the computed expiry instant so a token is
// renewed before it can lapse mid-request.
const RefreshSkew = 300 * time.Second

// Credential stores the OAuth token pair for one connected account.
// The stored record is the single source of truth: callers must not cache
// access tokens beyond a single use.
type Credential struct {
	AccountKey         string    `json:"account_key"`
	AccessToken        string    `json:"access_token"`
	RefreshToken       string    `json:"refresh_token"`
	AccessExpiresInSec int64     `json:"expires_in"`
	RefreshExpiresSec  int64     `json:"refresh_expires_in,omitempty"`
	IssuedAt           time.Time `json:"issued_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validate checks if the credential is storable.
func (c *Credential) Validate() error {
	if c.AccountKey == "" {
		return fmt.Errorf("account key is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("access token is required")
	}
	if c.AccessExpiresInSec < 0 {
		return fmt.Errorf("expires_in cannot be negative")
	}
	return nil
}

// ExpiresAt returns the authoritative expiry instant of the access token.
func (c *Credential) ExpiresAt() time.Time {
	return c.IssuedAt.Add(time.Duration(c.AccessExpiresInSec) * time.Second)
}

// Expired reports whether the access token should be renewed as of now.
// The refresh skew makes a token count as expired while it is still
// technically valid on the remote side.
func (c *Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt().Add(-RefreshSkew))
}
