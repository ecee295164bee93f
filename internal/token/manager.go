package token

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/metrics"
	"github.com/reelsync/reelsync/internal/models"
	"github.com/reelsync/reelsync/internal/platform"
	"github.com/reelsync/reelsync/internal/store"
)

// Refresher trades a refresh token for a new token pair.
type Refresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (*platform.TokenGrant, error)
}

// Manager hands out usable access tokens. The stored credential record is
// the single source of truth; callers take a token for one unit of work and
// come back for the next one.
type Manager struct {
	store     store.Store
	refresher Refresher
	metrics   *metrics.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewManager creates a token manager. metrics may be nil.
func NewManager(s store.Store, r Refresher, m *metrics.Metrics) *Manager {
	return &Manager{
		store:     s,
		refresher: r,
		metrics:   m,
		logger:    logging.NewLogger(),
		now:       time.Now,
	}
}

// GetValidToken returns an access token for the account, refreshing it first
// when the stored one is expired or inside the renewal skew. A failed
// refresh leaves the stored record untouched.
func (m *Manager) GetValidToken(ctx context.Context, accountKey string) (string, error) {
	cred, ok := m.store.GetCredential(accountKey)
	if !ok {
		return "", &errors.ErrCredentialNotFound{AccountKey: accountKey}
	}

	if !cred.Expired(m.now()) {
		return cred.AccessToken, nil
	}

	grant, err := m.refresher.RefreshAccessToken(ctx, cred.RefreshToken)
	if err != nil {
		var revoked *errors.ErrAuthRevoked
		if stderrors.As(err, &revoked) {
			revoked.AccountKey = accountKey
			m.recordRefresh("revoked")
			m.logger.Warn("token refresh rejected by remote",
				"account_key", accountKey, "code", revoked.Code)
		} else {
			m.recordRefresh("transient")
		}
		return "", err
	}

	renewed := &models.Credential{
		AccountKey:         accountKey,
		AccessToken:        grant.AccessToken,
		RefreshToken:       grant.RefreshToken,
		AccessExpiresInSec: grant.AccessExpiresInSec,
		RefreshExpiresSec:  grant.RefreshExpiresSec,
		IssuedAt:           m.now(),
	}
	// The remote omits the refresh token when it is not rotated.
	if renewed.RefreshToken == "" {
		renewed.RefreshToken = cred.RefreshToken
	}
	if renewed.RefreshExpiresSec == 0 {
		renewed.RefreshExpiresSec = cred.RefreshExpiresSec
	}

	if err := m.store.SetCredential(renewed); err != nil {
		return "", err
	}

	m.recordRefresh("success")
	m.logger.Debug("access token refreshed", "account_key", accountKey)
	return renewed.AccessToken, nil
}

func (m *Manager) recordRefresh(status string) {
	if m.metrics != nil {
		m.metrics.RecordTokenRefresh(status)
	}
}
