package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
)

// listFields is the field selection sent to the listing endpoint.
const listFields = "id,title,video_description,duration,cover_image_url,share_url,view_count,like_count,comment_count,share_count,create_time"

// Client talks to the platform's auth and open API endpoints. AuthURL is the
// token endpoint itself, APIURL is the base the listing path is joined to.
type Client struct {
	cfg    config.PlatformConfig
	client *http.Client
	logger *logging.Logger
}

// NewClient creates a platform client with the configured request timeout.
func NewClient(cfg config.PlatformConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: newTransport(),
		},
		logger: logging.NewLogger(),
	}
}

func newTransport() http.RoundTripper {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
}

// ExchangeAuthCode trades an authorization code for the initial token pair.
func (c *Client) ExchangeAuthCode(ctx context.Context, code string) (*TokenGrant, error) {
	form := url.Values{}
	form.Set("client_key", c.cfg.ClientKey)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)

	return c.requestToken(ctx, "exchange auth code", form)
}

// RefreshAccessToken trades a refresh token for a fresh token pair. The
// remote may omit the refresh token from the response when it stays valid.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	form := url.Values{}
	form.Set("client_key", c.cfg.ClientKey)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	return c.requestToken(ctx, "refresh access token", form)
}

func (c *Client) requestToken(ctx context.Context, op string, form url.Values) (*TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, &errors.ErrTransient{Op: op, Err: fmt.Errorf("auth endpoint status %d", resp.StatusCode)}
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &errors.ErrAuthRevoked{Code: fmt.Sprintf("http_%d", resp.StatusCode)}
		}
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}

	if parsed.ErrorCode != "" {
		return nil, &errors.ErrAuthRevoked{Code: parsed.ErrorCode, Message: parsed.ErrorDescription}
	}
	if resp.StatusCode != http.StatusOK || parsed.AccessToken == "" {
		return nil, &errors.ErrAuthRevoked{Code: fmt.Sprintf("http_%d", resp.StatusCode), Message: "auth endpoint returned no grant"}
	}

	return &parsed.TokenGrant, nil
}

// ListVideos fetches one page of the account's catalog. Cursor 0 requests
// the first page. An application-level error in the envelope comes back as
// ErrRemoteRejected, transport failures as ErrTransient.
func (c *Client) ListVideos(ctx context.Context, accessToken string, cursor int64) (*VideoPage, error) {
	const op = "list videos"

	pageSize := c.cfg.PageSize
	if pageSize <= 0 || pageSize > 20 {
		pageSize = 20
	}

	body, err := json.Marshal(listRequest{MaxCount: pageSize, Cursor: cursor})
	if err != nil {
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}

	endpoint := strings.TrimRight(c.cfg.APIURL, "/") + "/video/list/?fields=" + url.QueryEscape(listFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, &errors.ErrTransient{Op: op, Err: fmt.Errorf("listing endpoint status %d", resp.StatusCode)}
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &errors.ErrTransient{Op: op, Err: err}
	}

	if parsed.Error.Code != "" && parsed.Error.Code != "ok" {
		c.logger.Warn("listing endpoint rejected request",
			"code", parsed.Error.Code, "message", parsed.Error.Message, "log_id", parsed.Error.LogID)
		return nil, &errors.ErrRemoteRejected{Code: parsed.Error.Code, Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errors.ErrTransient{Op: op, Err: fmt.Errorf("listing endpoint status %d", resp.StatusCode)}
	}

	return &VideoPage{
		Videos:  parsed.Data.Videos,
		HasMore: parsed.Data.HasMore,
		Cursor:  parsed.Data.Cursor,
	}, nil
}
