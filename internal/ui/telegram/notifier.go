package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// Notifier pushes operator notices (cycle failures, reply summaries) to a
// Telegram chat. Delivery is fire-and-forget: a Telegram outage must never
// stall the mention pipeline.
type Notifier struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
}

func NewNotifier(token, chatIDStr string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id: %w", err)
	}

	return &Notifier{Bot: bot, ChatID: chatID}, nil
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, title, body string) {
	msgText := fmt.Sprintf("*[%s]*\n\n%s", escapeMarkdown(title), escapeMarkdown(body))
	msg := tgbotapi.NewMessage(n.ChatID, msgText)
	msg.ParseMode = "Markdown"

	if _, err := n.Bot.Send(msg); err != nil {
		slog.Warn("Telegram notification failed", "error", err)
	}
}

// escapeMarkdown escapes characters that break Telegram's markdown parser.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
