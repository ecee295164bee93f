package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/reelsync/reelsync/internal/store"
	"github.com/spf13/cobra"
)

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"acc", "ls"},
	Short:   "List connected accounts",
	Long: `List every account with stored credentials, its token expiry and
how many of its videos are catalogued locally.`,
	RunE: runAccounts,
}

func init() {
	RootCmd.AddCommand(accountsCmd)
}

type accountRow struct {
	AccountKey     string    `json:"account_key"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	TokenExpired   bool      `json:"token_expired"`
	Videos         int       `json:"videos_catalogued"`
}

func runAccounts(cmd *cobra.Command, args []string) error {
	sqliteStore, err := store.NewSQLiteStore(globalFlags.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqliteStore.Close()

	creds := sqliteStore.ListCredentials()
	rows := make([]accountRow, 0, len(creds))
	now := time.Now()
	for _, cred := range creds {
		rows = append(rows, accountRow{
			AccountKey:     cred.AccountKey,
			TokenExpiresAt: cred.ExpiresAt(),
			TokenExpired:   cred.Expired(now),
			Videos:         len(sqliteStore.ListVideosByAccount(cred.AccountKey)),
		})
	}

	if globalFlags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No connected accounts.")
		return nil
	}

	fmt.Printf("%-24s %-25s %-8s %s\n", "ACCOUNT", "TOKEN EXPIRES", "EXPIRED", "VIDEOS")
	for _, row := range rows {
		fmt.Printf("%-24s %-25s %-8t %d\n",
			row.AccountKey, row.TokenExpiresAt.Format(time.RFC3339), row.TokenExpired, row.Videos)
	}
	return nil
}
