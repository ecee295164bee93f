package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/models"
)

// handleOAuthCallback finishes the connect flow. The platform redirects the
// user here with a one-time authorization code; exchanging it yields the
// account's first credential record. The account key is the platform's
// open ID from the grant.
func (s *Server) handleOAuthCallback(c *gin.Context) {
	if errCode := c.Query("error"); errCode != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             errCode,
			"error_description": c.Query("error_description"),
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}
	if s.exchanger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "oauth connect flow is not configured"})
		return
	}

	ctx := c.Request.Context()
	grant, err := s.exchanger.ExchangeAuthCode(ctx, code)
	if err != nil {
		s.logger.WarnWithContext(ctx, "authorization code exchange failed", "error", err.Error())
		if errors.IsTransient(err) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountKey := grant.OpenID
	if accountKey == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "grant is missing the account identity"})
		return
	}

	cred := &models.Credential{
		AccountKey:         accountKey,
		AccessToken:        grant.AccessToken,
		RefreshToken:       grant.RefreshToken,
		AccessExpiresInSec: grant.AccessExpiresInSec,
		RefreshExpiresSec:  grant.RefreshExpiresSec,
		IssuedAt:           time.Now().UTC(),
	}
	if err := s.store.SetCredential(cred); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.InfoWithContext(ctx, "account connected", "account_key", accountKey)
	c.JSON(http.StatusOK, gin.H{"account_key": accountKey, "connected": true})
}
