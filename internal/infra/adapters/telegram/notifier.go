// Package telegram announces pipeline outcomes to an operator chat.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/adapter"
)

var (
	_ adapter.Notifier = (*Notifier)(nil)
	_ adapter.Notifier = (*NoopNotifier)(nil)
)

// Notifier sends one-way status messages. Send errors are logged and
// dropped; notification must never affect item state.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zerolog.Logger
}

func NewNotifier(token string, chatID int64, log *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

func (n *Notifier) ItemCompleted(ctx context.Context, item *model.Item, chunkCount int) {
	n.send(fmt.Sprintf("✅ indexed %q (%d chunks)", item.Title, chunkCount))
}

func (n *Notifier) ItemFailed(ctx context.Context, item *model.Item, reason string) {
	n.send(fmt.Sprintf("❌ failed %q: %s", item.Title, reason))
}

func (n *Notifier) send(text string) {
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.log.Warn().Err(err).Msg("telegram notification failed")
	}
}

// NoopNotifier is used when no telegram token is configured.
type NoopNotifier struct{}

func NewNoopNotifier() NoopNotifier { return NoopNotifier{} }

func (NoopNotifier) ItemCompleted(ctx context.Context, item *model.Item, chunkCount int) {}
func (NoopNotifier) ItemFailed(ctx context.Context, item *model.Item, reason string)     {}
