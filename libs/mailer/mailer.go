package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SendResult carries the provider's response for a sent message.
type SendResult struct {
	ProviderMessageID string
}

// Provider delivers messages through a specific email backend.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// Mailer is the entry point for sending email. It applies the default
// sender address and delegates delivery to the configured provider.
type Mailer struct {
	provider    Provider
	fromAddress string
}

// New creates a Mailer backed by the given provider. fromAddress is used
// whenever a message does not set its own From.
func New(provider Provider, fromAddress string) *Mailer {
	return &Mailer{
		provider:    provider,
		fromAddress: fromAddress,
	}
}

// Send delivers msg via the configured provider.
func (m *Mailer) Send(ctx context.Context, msg Message) (SendResult, error) {
	if msg.From == "" {
		msg.From = m.fromAddress
	}
	return m.provider.Send(ctx, msg)
}

// ProviderName reports which backend this Mailer delivers through.
func (m *Mailer) ProviderName() string {
	return m.provider.Name()
}
