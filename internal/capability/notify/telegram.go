package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/oshokin/med-reminder/internal/capability"
)

var (
	// errTelegramToken is returned when no bot token is configured.
	errTelegramToken = errors.New("telegram token is empty")
	// errTelegramChat is returned when no chat is configured.
	errTelegramChat = errors.New("telegram chat id is empty")
)

// Telegram sends reminders to one chat through a bot.
type Telegram struct {
	// bot is created offline; it never polls for updates.
	bot *tele.Bot
	// chat receives every reminder.
	chat tele.ChatID
}

// NewTelegram creates a notifier for chatID using the bot token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errTelegramToken
	}

	if chatID == 0 {
		return nil, errTelegramChat
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{
		bot:  bot,
		chat: tele.ChatID(chatID),
	}, nil
}

// Permission is granted once the notifier is configured.
func (t *Telegram) Permission(context.Context) capability.Permission {
	return capability.PermissionGranted
}

// Request resolves to granted.
func (t *Telegram) Request(ctx context.Context) (capability.Permission, error) {
	return t.Permission(ctx), nil
}

// Raise sends the notification as a chat message.
func (t *Telegram) Raise(_ context.Context, title, body string) error {
	if _, err := t.bot.Send(t.chat, title+"\n"+body); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
