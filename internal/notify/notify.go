// Package notify delivers timer reports to the log or a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"timetracker/internal/config"
)

// Notifier sends a plain-text message somewhere a human will read it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// New returns a Telegram notifier when a token is configured and a log
// notifier otherwise.
func New(cfg config.Config, logger *log.Logger) (Notifier, error) {
	if cfg.TelegramToken == "" {
		return NewLog(logger), nil
	}
	return NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
}

// Log writes messages to a logger.
type Log struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		logger = log.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, text string) error {
	l.logger.Printf("[info] report\n%s", text)
	return nil
}

// Telegram sends messages to one chat through the Bot API.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] telegram notifier authorized on account %s", api.Self.UserName)

	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
