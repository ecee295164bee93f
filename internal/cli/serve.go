package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/reelsync/reelsync/internal/api"
	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/ingest"
	"github.com/reelsync/reelsync/internal/metrics"
	"github.com/reelsync/reelsync/internal/notify"
	"github.com/reelsync/reelsync/internal/platform"
	"github.com/reelsync/reelsync/internal/store"
	"github.com/reelsync/reelsync/internal/syncer"
	"github.com/reelsync/reelsync/internal/token"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s", "server", "run"},
	Short:   "Start the ReelSync server",
	Long: `Start the ReelSync server in main mode.

This command starts the HTTP API, the OAuth callback endpoint and, when
enabled, the periodic sync scheduler that keeps every connected
account's catalog fresh.

Example:
  reelsync serve --config config.yaml --db ./data/reelsync.db

The server will start listening on the address configured in the config file.`,
	RunE: runServe,
}

var serveFlags struct {
	Host        string
	Port        int
	Timeout     time.Duration
	NoScheduler bool
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.Host, "host", "", "Server host (overrides config)")
	serveCmd.Flags().IntVar(&serveFlags.Port, "port", 0, "Server port (overrides config)")
	serveCmd.Flags().DurationVar(&serveFlags.Timeout, "timeout", envDuration("REELSYNC_SHUTDOWN_TIMEOUT", 30*time.Second), "Shutdown timeout")
	serveCmd.Flags().BoolVar(&serveFlags.NoScheduler, "no-scheduler", false, "Disable the periodic sync scheduler")

	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if globalFlags.Verbose {
		log.Println("Starting ReelSync server...")
		log.Printf("Config path: %s", globalFlags.Config)
		log.Printf("Database path: %s", globalFlags.DBPath)
	}

	// Load configuration
	loader := config.NewLoader(globalFlags.Config)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Apply CLI flags to config
	if serveFlags.Host != "" {
		cfg.Server.Host = serveFlags.Host
	}
	if serveFlags.Port != 0 {
		cfg.Server.HTTPPort = serveFlags.Port
	}
	if serveFlags.NoScheduler {
		cfg.Sync.Scheduler.Enabled = false
	}

	if globalFlags.Verbose {
		log.Printf("Configuration loaded successfully")
		log.Printf("Server host: %s, port: %d", cfg.Server.Host, cfg.Server.HTTPPort)
	}

	// Create SQLite store with WAL mode enabled
	sqliteStore, err := store.NewSQLiteStore(globalFlags.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if globalFlags.Verbose {
		log.Printf("Database initialized at: %s", globalFlags.DBPath)
	}

	m := metrics.NewMetrics("reelsync")

	// Platform client serves both token operations and the listing API
	platformClient := platform.NewClient(cfg.Platform)
	tokenManager := token.NewManager(sqliteStore, platformClient, m)
	engine := ingest.NewEngine(sqliteStore, tokenManager, platformClient, m, cfg.Sync.MaxPages)
	orchestrator := syncer.NewOrchestrator(engine, m, cfg.Sync.Concurrency)
	resolver := syncer.NewDirectoryResolver(syncer.NewStoreDirectory(sqliteStore), cfg.Sync.DirectoryBatch)

	// Telegram digest notifier (if enabled)
	var notifier syncer.Notifier
	if cfg.Telegram.Enabled {
		bot, botErr := notify.NewTGBotAPIClient(cfg.Telegram.BotToken)
		if botErr != nil {
			log.Printf("Telegram notifier disabled: %v", botErr)
		} else {
			notifier = notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, true)
			if globalFlags.Verbose {
				log.Printf("Telegram digests enabled for chat %d", cfg.Telegram.ChatID)
			}
		}
	}

	scheduler := syncer.NewScheduler(sqliteStore, orchestrator, notifier, cfg.Sync, m)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if cfg.Sync.Scheduler.Enabled {
		if err := scheduler.Start(schedulerCtx); err != nil {
			return fmt.Errorf("failed to start sync scheduler: %w", err)
		}
		log.Printf("Sync scheduler started, interval %s", cfg.Sync.Scheduler.Interval)
	}

	server := api.NewServer(cfg.Server, cfg.API, sqliteStore, orchestrator, platformClient, resolver, scheduler, m)

	// Reload platform credentials and API keys on config file changes
	loader.SetOnChange(func(next *config.Config) {
		log.Printf("Configuration reloaded from %s", globalFlags.Config)
	})
	if err := loader.StartWatcher(); err != nil && globalFlags.Verbose {
		log.Printf("Config watcher disabled: %v", err)
	}
	defer loader.StopWatcher()

	// Setup graceful shutdown with all components
	setupGracefulShutdown(server, scheduler, schedulerCancel, serveFlags.Timeout)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
	log.Printf("Starting ReelSync HTTP server on %s", addr)
	log.Printf("Database: %s (WAL mode enabled)", globalFlags.DBPath)

	if err := server.Run(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupGracefulShutdown handles graceful shutdown of all components
func setupGracefulShutdown(server *api.Server, scheduler *syncer.Scheduler, schedulerCancel context.CancelFunc, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// Shutdown server (stops HTTP listener, scheduler and store)
		log.Println("Shutting down API server...")
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
		if schedulerCancel != nil {
			schedulerCancel()
		}
		if scheduler != nil && scheduler.IsRunning() {
			if err := scheduler.Stop(); err != nil {
				log.Printf("Error stopping sync scheduler: %v", err)
			}
		}

		log.Println("Graceful shutdown completed")
	}()
}

// envDuration reads a duration from the environment with a fallback
func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}

// envInt reads an integer from the environment with a fallback
func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}
