package kitchen

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender is the subset of the bot API used to post messages.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts orders to a kitchen group chat.
type TelegramNotifier struct {
	bot    TelegramSender
	chatID int64
}

// NewTelegramNotifier creates a chat notifier.
func NewTelegramNotifier(bot TelegramSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Notify sends the order as a plain text message.
func (t *TelegramNotifier) Notify(ctx context.Context, o Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatText(o))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatText renders the order for chat clients without embeds.
func FormatText(o Order) string {
	var b strings.Builder
	if o.Cancelled() {
		fmt.Fprintf(&b, "❌ ORDER CANCELLED #%s\n", o.ID)
	} else {
		fmt.Fprintf(&b, "🍽️ NEW KITCHEN ORDER #%s\n", o.ID)
	}
	fmt.Fprintf(&b, "📋 %s x%d\n", o.Service, o.Quantity)
	fmt.Fprintf(&b, "👤 %s\n", o.Guest)
	fmt.Fprintf(&b, "🏠 %s\n", o.Room)
	fmt.Fprintf(&b, "🧾 %s\n", o.Invoice)
	fmt.Fprintf(&b, "⏰ %s\n", o.PlacedAt.Format("03:04 PM"))
	fmt.Fprintf(&b, "📊 %s", o.Status)
	return b.String()
}
