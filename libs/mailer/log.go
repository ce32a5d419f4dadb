package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// LogProvider logs messages instead of delivering them. It is the fallback
// when no real provider is configured, so local environments never need an
// API key to exercise email paths.
type LogProvider struct {
	Logger *slog.Logger
}

// NewLogProvider creates a log-only provider.
func NewLogProvider(logger *slog.Logger) *LogProvider {
	return &LogProvider{Logger: logger}
}

// Name returns the provider name.
func (l *LogProvider) Name() string {
	return "log"
}

// Send logs the message and returns a synthetic message ID.
func (l *LogProvider) Send(_ context.Context, msg Message) (SendResult, error) {
	fakeID := uuid.New().String()
	l.Logger.Info("mailer: email logged (not sent)",
		"provider", "log",
		"from", msg.From,
		"to", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"html_length", len(msg.HTML),
		"text_length", len(msg.Text),
		"fake_message_id", fakeID,
	)
	return SendResult{ProviderMessageID: fmt.Sprintf("log-%s", fakeID)}, nil
}
