package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, "event",
		"type", e.Type,
		"family_id", e.FamilyID,
		"actor_id", e.ActorID,
		"entity_id", e.EntityID,
		"detail", e.Detail,
	)
	return nil
}

// messageSender is the part of *tgbotapi.BotAPI the sink needs.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink posts events to one chat.
type TelegramSink struct {
	api    messageSender
	chatID int64
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	slog.Info("telegram notifications enabled", "bot", bot.Self.UserName)
	return &TelegramSink{api: bot, chatID: chatID}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Send(_ context.Context, e Event) error {
	msg := tgbotapi.NewMessage(s.chatID, e.Text())
	msg.DisableNotification = e.Type == EventItemToggled
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
