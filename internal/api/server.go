package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/metrics"
	"github.com/reelsync/reelsync/internal/models"
	"github.com/reelsync/reelsync/internal/platform"
	"github.com/reelsync/reelsync/internal/store"
	"github.com/reelsync/reelsync/internal/syncer"
)

// SyncRunner executes one orchestrated sync run.
type SyncRunner interface {
	SyncMany(ctx context.Context, accountKeys []string) *models.SyncReport
}

// CodeExchanger trades an authorization code for the first token pair of a
// freshly connected account.
type CodeExchanger interface {
	ExchangeAuthCode(ctx context.Context, code string) (*platform.TokenGrant, error)
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	config     config.ServerConfig
	apiConfig  config.APIConfig
	store      store.Store
	runner     SyncRunner
	exchanger  CodeExchanger
	resolver   *syncer.DirectoryResolver
	scheduler  *syncer.Scheduler
	metrics    *metrics.Metrics
	logger     *logging.Logger
	httpServer *http.Server
}

// Router returns the gin router for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// NewServer creates a new API server. m, resolver and scheduler may be nil;
// passing a shared metrics instance exposes the sync counters on /metrics.
func NewServer(cfg config.ServerConfig, apiCfg config.APIConfig, st store.Store, runner SyncRunner, exchanger CodeExchanger, resolver *syncer.DirectoryResolver, scheduler *syncer.Scheduler, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)

	if m == nil {
		m = metrics.NewMetrics("reelsync")
	}
	logger := logging.NewLogger()

	server := &Server{
		router:    gin.New(),
		config:    cfg,
		apiConfig: apiCfg,
		store:     st,
		runner:    runner,
		exchanger: exchanger,
		resolver:  resolver,
		scheduler: scheduler,
		metrics:   m,
		logger:    logger,
	}
	server.router.HandleMethodNotAllowed = true

	server.router.Use(gin.Recovery())
	server.router.Use(metrics.Middleware(m, logger))
	server.router.Use(loggingMiddleware(logger))

	server.setupRoutes()
	return server
}

// loggingMiddleware provides structured logging for all requests
func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}
		ctx := logging.WithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.InfoWithContext(ctx, "request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_seconds", time.Since(start).Seconds(),
		)
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Prometheus metrics and health need no authentication
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.router.GET("/health", s.handleHealth)

	// OAuth callback is called by the platform redirect, not by API clients
	s.router.GET("/oauth/callback", s.handleOAuthCallback)

	authMiddleware := APIKeyAuth(s.apiConfig.Auth.APIKeys, s.apiConfig.Auth.HeaderName, s.logger)

	api := s.router.Group(s.apiConfig.BasePath)
	api.Use(authMiddleware)
	{
		api.POST("/sync", s.handleSync)
		api.GET("/accounts", s.handleListAccounts)
		api.GET("/accounts/:key/videos", s.handleAccountVideos)
		api.DELETE("/accounts/:key", s.handleDisconnectAccount)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)

	if s.httpServer == nil {
		s.httpServer = NewHTTPServer(addr, s.router)
	}

	s.logger.Info("starting HTTP server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return &errors.ErrServerStart{Addr: addr, Err: err}
	}
	return nil
}

// Shutdown gracefully shuts down the server and its components
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	var wg sync.WaitGroup
	errs := make(chan error, 3)

	if s.httpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				errs <- &errors.ErrServerShutdown{Err: err}
			}
		}()
	}

	if s.scheduler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.scheduler.Stop(); err != nil {
				errs <- fmt.Errorf("scheduler stop: %w", err)
			}
		}()
	}

	if s.store != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.store.Close(); err != nil {
				errs <- fmt.Errorf("store close: %w", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	close(errs)
	var errList []error
	for err := range errs {
		if err != nil {
			errList = append(errList, err)
		}
	}
	if len(errList) > 0 {
		return fmt.Errorf("shutdown errors: %v", errList)
	}

	s.logger.Info("graceful shutdown completed")
	return nil
}

// handleHealth returns health status
func (s *Server) handleHealth(c *gin.Context) {
	stats := s.store.Stats()

	resp := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"accounts":  stats.CredentialCount,
		"videos":    stats.VideoCount,
	}
	if lastRun, ok := s.store.Settings().Get(store.SettingLastRunAt); ok {
		resp["last_run_at"] = lastRun
	}
	if status, ok := s.store.Settings().Get(store.SettingLastRunStatus); ok {
		resp["last_run_status"] = status
	}
	if s.scheduler != nil {
		resp["scheduler_running"] = s.scheduler.IsRunning()
	}

	c.JSON(http.StatusOK, resp)
}

// SyncRequest selects which accounts to sync. With neither field set, every
// connected account is synced.
type SyncRequest struct {
	AccountKeys []string `json:"account_keys,omitempty"`
	OwnerIDs    []string `json:"owner_ids,omitempty"`
}

// handleSync runs a sync over the requested accounts and returns the report
func (s *Server) handleSync(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	keys := req.AccountKeys
	if len(req.OwnerIDs) > 0 {
		if s.resolver == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner lookup is not configured"})
			return
		}
		resolved, err := s.resolver.Resolve(c.Request.Context(), req.OwnerIDs)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		keys = append(keys, resolved...)
	}
	if len(keys) == 0 {
		for _, cred := range s.store.ListCredentials() {
			keys = append(keys, cred.AccountKey)
		}
	}

	s.metrics.RecordSyncRun("api")
	report := s.runner.SyncMany(c.Request.Context(), keys)
	c.JSON(http.StatusOK, report)
}

// AccountSummary is one connected account in the listing response
type AccountSummary struct {
	AccountKey       string    `json:"account_key"`
	TokenExpiresAt   time.Time `json:"token_expires_at"`
	ConnectedSince   time.Time `json:"connected_since"`
	UpdatedAt        time.Time `json:"updated_at"`
	VideosCatalogued int       `json:"videos_catalogued"`
}

// handleListAccounts lists connected accounts
func (s *Server) handleListAccounts(c *gin.Context) {
	creds := s.store.ListCredentials()

	accounts := make([]AccountSummary, 0, len(creds))
	for _, cred := range creds {
		accounts = append(accounts, AccountSummary{
			AccountKey:       cred.AccountKey,
			TokenExpiresAt:   cred.ExpiresAt(),
			ConnectedSince:   cred.IssuedAt,
			UpdatedAt:        cred.UpdatedAt,
			VideosCatalogued: len(s.store.ListVideosByAccount(cred.AccountKey)),
		})
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "total": len(accounts)})
}

// handleAccountVideos returns the synced catalog of one account
func (s *Server) handleAccountVideos(c *gin.Context) {
	key := c.Param("key")
	if _, ok := s.store.GetCredential(key); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("account %s is not connected", key)})
		return
	}

	videos := s.store.ListVideosByAccount(key)
	c.JSON(http.StatusOK, gin.H{
		"account_key": key,
		"total":       len(videos),
		"videos":      videos,
	})
}

// handleDisconnectAccount removes an account's credential. Synced videos
// stay in the catalog.
func (s *Server) handleDisconnectAccount(c *gin.Context) {
	key := c.Param("key")
	if _, ok := s.store.GetCredential(key); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("account %s is not connected", key)})
		return
	}

	if err := s.store.DeleteCredential(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.InfoWithContext(c.Request.Context(), "account disconnected", "account_key", key)
	c.JSON(http.StatusOK, gin.H{"account_key": key, "disconnected": true})
}
