package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/ingest"
	"github.com/reelsync/reelsync/internal/platform"
	"github.com/reelsync/reelsync/internal/store"
	"github.com/reelsync/reelsync/internal/syncer"
	"github.com/reelsync/reelsync/internal/token"
	"github.com/spf13/cobra"
)

// syncCmd represents the one-off sync command
var syncCmd = &cobra.Command{
	Use:   "sync [account-key...]",
	Short: "Run a one-off catalog sync",
	Long: `Run a single sync pass and exit.

With no arguments every connected account is synced. Pass one or more
account keys to sync only those accounts.

Example:
  reelsync sync
  reelsync sync open-abc123 open-def456 --concurrency 8`,
	RunE: runSync,
}

var syncFlags struct {
	Concurrency int
	Timeout     time.Duration
}

func init() {
	syncCmd.Flags().IntVar(&syncFlags.Concurrency, "concurrency", 0, "Accounts synced in parallel (overrides config)")
	syncCmd.Flags().DurationVar(&syncFlags.Timeout, "run-timeout", envDuration("REELSYNC_SYNC_TIMEOUT", 10*time.Minute), "Abort the run after this long")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(globalFlags.Config)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if syncFlags.Concurrency > 0 {
		cfg.Sync.Concurrency = syncFlags.Concurrency
	}

	sqliteStore, err := store.NewSQLiteStore(globalFlags.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqliteStore.Close()

	platformClient := platform.NewClient(cfg.Platform)
	tokenManager := token.NewManager(sqliteStore, platformClient, nil)
	engine := ingest.NewEngine(sqliteStore, tokenManager, platformClient, nil, cfg.Sync.MaxPages)
	orchestrator := syncer.NewOrchestrator(engine, nil, cfg.Sync.Concurrency)

	keys := args
	if len(keys) == 0 {
		for _, cred := range sqliteStore.ListCredentials() {
			keys = append(keys, cred.AccountKey)
		}
	}
	if len(keys) == 0 {
		fmt.Println("No connected accounts to sync.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncFlags.Timeout)
	defer cancel()

	report := orchestrator.SyncMany(ctx, keys)

	if globalFlags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Run %s: %d/%d accounts, %d videos in %s\n",
		report.RunID, report.Succeeded, report.Total, report.Videos,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	for _, res := range report.Results {
		if res.Succeeded() {
			fmt.Printf("  ok      %-24s %5d videos  (%s)\n",
				res.AccountKey, res.VideosSynced, res.Duration.Round(time.Millisecond))
		} else {
			fmt.Printf("  failed  %-24s %s\n", res.AccountKey, res.ErrorMessage)
		}
	}

	if report.Succeeded < report.Total {
		return fmt.Errorf("%d of %d accounts failed", report.Total-report.Succeeded, report.Total)
	}
	return nil
}
