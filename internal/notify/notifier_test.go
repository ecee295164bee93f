package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelsync/reelsync/internal/models"
)

type mockBotAPI struct {
	messages []mockMessage
	err      error
}

type mockMessage struct {
	chatID int64
	text   string
}

func (m *mockBotAPI) SendMessage(chatID int64, text string) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, mockMessage{chatID: chatID, text: text})
	return nil
}

func sampleReport() *models.SyncReport {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.SyncReport{
		RunID:     "run-123",
		Succeeded: 2,
		Total:     3,
		Videos:    41,
		Results: []models.AccountResult{
			{AccountKey: "acct-1", VideosSynced: 20},
			{AccountKey: "acct-2", VideosSynced: 21},
			{AccountKey: "acct-3", Err: fmt.Errorf("boom"), ErrorMessage: "boom"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
	}
}

func TestSendDigest(t *testing.T) {
	t.Run("sends formatted digest", func(t *testing.T) {
		bot := &mockBotAPI{}
		n := NewTelegramNotifier(bot, 42, true)

		require.NoError(t, n.SendDigest(context.Background(), sampleReport()))
		require.Len(t, bot.messages, 1)
		assert.Equal(t, int64(42), bot.messages[0].chatID)
		assert.Contains(t, bot.messages[0].text, "2/3")
		assert.Contains(t, bot.messages[0].text, "41")
		assert.Contains(t, bot.messages[0].text, "acct-3")
		assert.Contains(t, bot.messages[0].text, "run-123")
	})

	t.Run("disabled notifier drops the digest", func(t *testing.T) {
		bot := &mockBotAPI{}
		n := NewTelegramNotifier(bot, 42, false)

		require.NoError(t, n.SendDigest(context.Background(), sampleReport()))
		assert.Empty(t, bot.messages)
	})

	t.Run("send failure surfaces", func(t *testing.T) {
		bot := &mockBotAPI{err: fmt.Errorf("telegram unavailable")}
		n := NewTelegramNotifier(bot, 42, true)

		err := n.SendDigest(context.Background(), sampleReport())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telegram unavailable")
	})

	t.Run("cancelled context stops delivery", func(t *testing.T) {
		bot := &mockBotAPI{}
		n := NewTelegramNotifier(bot, 42, true)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, n.SendDigest(ctx, sampleReport()))
		assert.Empty(t, bot.messages)
	})
}

func TestFormatDigest(t *testing.T) {
	t.Run("full success", func(t *testing.T) {
		report := sampleReport()
		report.Succeeded = 3
		report.Results[2].Err = nil
		report.Results[2].ErrorMessage = ""

		text := FormatDigest(report)
		assert.Contains(t, text, "finished")
		assert.NotContains(t, text, "Failed:")
	})

	t.Run("total failure", func(t *testing.T) {
		report := sampleReport()
		report.Succeeded = 0

		text := FormatDigest(report)
		assert.Contains(t, text, "failed")
	})

	t.Run("partial", func(t *testing.T) {
		text := FormatDigest(sampleReport())
		assert.Contains(t, text, "partially")
		assert.Contains(t, text, "Failed: acct-3")
	})
}
