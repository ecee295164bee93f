package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/models"
	"github.com/reelsync/reelsync/internal/platform"
	"github.com/reelsync/reelsync/internal/store"
	"github.com/reelsync/reelsync/internal/syncer"
)

type mockRunner struct {
	lastKeys []string
	report   *models.SyncReport
}

func (m *mockRunner) SyncMany(ctx context.Context, accountKeys []string) *models.SyncReport {
	m.lastKeys = accountKeys
	if m.report != nil {
		return m.report
	}
	return &models.SyncReport{
		RunID:     "run-test",
		Total:     len(accountKeys),
		Succeeded: len(accountKeys),
	}
}

type mockExchanger struct {
	grant *platform.TokenGrant
	err   error
}

func (m *mockExchanger) ExchangeAuthCode(ctx context.Context, code string) (*platform.TokenGrant, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.grant, nil
}

type staticLookup struct{}

func (staticLookup) Lookup(ctx context.Context, ownerIDs []string) ([]string, error) {
	keys := make([]string, 0, len(ownerIDs))
	for _, owner := range ownerIDs {
		keys = append(keys, "acct-of-"+owner)
	}
	return keys, nil
}

func newTestServer(t *testing.T, st store.Store, runner SyncRunner, exchanger CodeExchanger) *Server {
	t.Helper()
	cfg := config.Default()
	return NewServer(cfg.Server, cfg.API, st, runner, exchanger,
		syncer.NewDirectoryResolver(staticLookup{}, 10), nil, nil)
}

func seedAccount(t *testing.T, s store.Store, key string) {
	t.Helper()
	require.NoError(t, s.SetCredential(&models.Credential{
		AccountKey:         key,
		AccessToken:        "act-" + key,
		RefreshToken:       "rft-" + key,
		AccessExpiresInSec: 3600,
		IssuedAt:           time.Now().UTC(),
	}))
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	s := store.NewMemoryStore()
	seedAccount(t, s, "acct-1")
	require.NoError(t, s.Settings().Set(store.SettingLastRunStatus, "ok"))
	srv := newTestServer(t, s, &mockRunner{}, nil)

	w := doRequest(srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, float64(1), resp["accounts"])
	assert.Equal(t, "ok", resp["last_run_status"])
}

func TestHandleSync(t *testing.T) {
	t.Run("explicit account keys", func(t *testing.T) {
		s := store.NewMemoryStore()
		runner := &mockRunner{}
		srv := newTestServer(t, s, runner, nil)

		w := doRequest(srv, http.MethodPost, "/api/v1/sync",
			SyncRequest{AccountKeys: []string{"acct-1", "acct-2"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"acct-1", "acct-2"}, runner.lastKeys)

		var report models.SyncReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 2, report.Total)
	})

	t.Run("empty request syncs every connected account", func(t *testing.T) {
		s := store.NewMemoryStore()
		seedAccount(t, s, "acct-a")
		seedAccount(t, s, "acct-b")
		runner := &mockRunner{}
		srv := newTestServer(t, s, runner, nil)

		w := doRequest(srv, http.MethodPost, "/api/v1/sync", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, runner.lastKeys, 2)
	})

	t.Run("owner ids resolve through the directory", func(t *testing.T) {
		s := store.NewMemoryStore()
		runner := &mockRunner{}
		srv := newTestServer(t, s, runner, nil)

		w := doRequest(srv, http.MethodPost, "/api/v1/sync",
			SyncRequest{OwnerIDs: []string{"u1", "u2"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.ElementsMatch(t, []string{"acct-of-u1", "acct-of-u2"}, runner.lastKeys)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleListAccounts(t *testing.T) {
	s := store.NewMemoryStore()
	seedAccount(t, s, "acct-1")
	require.NoError(t, s.UpsertVideo(&models.Video{VideoID: "v1", OwnerAccountKey: "acct-1"}))
	srv := newTestServer(t, s, &mockRunner{}, nil)

	w := doRequest(srv, http.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Accounts []AccountSummary `json:"accounts"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "acct-1", resp.Accounts[0].AccountKey)
	assert.Equal(t, 1, resp.Accounts[0].VideosCatalogued)
}

func TestHandleAccountVideos(t *testing.T) {
	s := store.NewMemoryStore()
	seedAccount(t, s, "acct-1")
	for i := 0; i < 3; i++ {
		require.NoError(t, s.UpsertVideo(&models.Video{
			VideoID:         fmt.Sprintf("v%d", i),
			OwnerAccountKey: "acct-1",
		}))
	}
	srv := newTestServer(t, s, &mockRunner{}, nil)

	t.Run("found", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/v1/accounts/acct-1/videos", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Total  int            `json:"total"`
			Videos []models.Video `json:"videos"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Total)
	})

	t.Run("unknown account", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/v1/accounts/nope/videos", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleDisconnectAccount(t *testing.T) {
	s := store.NewMemoryStore()
	seedAccount(t, s, "acct-1")
	require.NoError(t, s.UpsertVideo(&models.Video{VideoID: "v1", OwnerAccountKey: "acct-1"}))
	srv := newTestServer(t, s, &mockRunner{}, nil)

	w := doRequest(srv, http.MethodDelete, "/api/v1/accounts/acct-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := s.GetCredential("acct-1")
	assert.False(t, ok)
	// The synced catalog survives a disconnect.
	assert.Equal(t, 1, s.CountVideos())

	w = doRequest(srv, http.MethodDelete, "/api/v1/accounts/acct-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.Default()
	cfg.API.Auth.APIKeys = []string{"secret-key"}
	s := store.NewMemoryStore()
	srv := NewServer(cfg.Server, cfg.API, s, &mockRunner{}, nil, nil, nil, nil)

	t.Run("missing key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		req.Header.Set("X-API-Key", "wrong")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid key passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		req.Header.Set("X-API-Key", "secret-key")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("health needs no key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMaskAPIKeys(t *testing.T) {
	masked := MaskAPIKeys([]string{"abc", "secret-key"})
	assert.Equal(t, []string{"***", "secr******"}, masked)
}

func TestHandleOAuthCallback(t *testing.T) {
	t.Run("connects the account", func(t *testing.T) {
		s := store.NewMemoryStore()
		exchanger := &mockExchanger{grant: &platform.TokenGrant{
			AccessToken:        "act-first",
			RefreshToken:       "rft-first",
			AccessExpiresInSec: 3600,
			RefreshExpiresSec:  86400,
			OpenID:             "open-123",
		}}
		srv := newTestServer(t, s, &mockRunner{}, exchanger)

		w := doRequest(srv, http.MethodGet, "/oauth/callback?code=one-time-code", nil)
		require.Equal(t, http.StatusOK, w.Code)

		cred, ok := s.GetCredential("open-123")
		require.True(t, ok)
		assert.Equal(t, "act-first", cred.AccessToken)
		assert.Equal(t, "rft-first", cred.RefreshToken)
	})

	t.Run("missing code", func(t *testing.T) {
		srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{}, &mockExchanger{})
		w := doRequest(srv, http.MethodGet, "/oauth/callback", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("denied authorization", func(t *testing.T) {
		srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{}, &mockExchanger{})
		w := doRequest(srv, http.MethodGet, "/oauth/callback?error=access_denied", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejected exchange", func(t *testing.T) {
		exchanger := &mockExchanger{err: &errors.ErrAuthRevoked{Code: "invalid_grant"}}
		srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{}, exchanger)
		w := doRequest(srv, http.MethodGet, "/oauth/callback?code=stale", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("transient exchange failure", func(t *testing.T) {
		exchanger := &mockExchanger{err: &errors.ErrTransient{Op: "exchange auth code", Err: context.DeadlineExceeded}}
		srv := newTestServer(t, store.NewMemoryStore(), &mockRunner{}, exchanger)
		w := doRequest(srv, http.MethodGet, "/oauth/callback?code=any", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
