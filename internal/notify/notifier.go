package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/models"
	"github.com/reelsync/reelsync/internal/syncer"
)

// BotAPI is the minimal messaging surface the notifier needs. It allows
// mocking in tests.
type BotAPI interface {
	SendMessage(chatID int64, text string) error
}

// TelegramNotifier delivers a one-message digest of each sync run to a chat.
type TelegramNotifier struct {
	bot     BotAPI
	chatID  int64
	enabled bool
	logger  *logging.Logger
}

// NewTelegramNotifier creates a digest notifier. A disabled notifier accepts
// digests and drops them.
func NewTelegramNotifier(bot BotAPI, chatID int64, enabled bool) *TelegramNotifier {
	return &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		enabled: enabled,
		logger:  logging.NewLogger(),
	}
}

// SendDigest formats and sends the run summary.
func (n *TelegramNotifier) SendDigest(ctx context.Context, report *models.SyncReport) error {
	if !n.enabled || n.bot == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.bot.SendMessage(n.chatID, FormatDigest(report)); err != nil {
		return fmt.Errorf("failed to send sync digest: %w", err)
	}
	n.logger.Debug("sync digest sent", "run_id", report.RunID, "chat_id", n.chatID)
	return nil
}

// FormatDigest renders the run report as a plain-text chat message.
func FormatDigest(report *models.SyncReport) string {
	var b strings.Builder

	if report.Succeeded == report.Total {
		b.WriteString("✅ Sync run finished\n")
	} else if report.Succeeded == 0 && report.Total > 0 {
		b.WriteString("❌ Sync run failed\n")
	} else {
		b.WriteString("⚠️ Sync run partially finished\n")
	}

	fmt.Fprintf(&b, "Accounts: %d/%d\n", report.Succeeded, report.Total)
	fmt.Fprintf(&b, "Videos synced: %d\n", report.Videos)
	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Duration: %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}

	if failed := report.FailedKeys(); len(failed) > 0 {
		b.WriteString("Failed: ")
		b.WriteString(strings.Join(failed, ", "))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Run: %s", report.RunID)
	return b.String()
}

var _ syncer.Notifier = (*TelegramNotifier)(nil)
