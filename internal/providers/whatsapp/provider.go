package whatsapp

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrMissingRecipient = errors.New("whatsapp_missing_recipient")
	ErrEmptyMessage     = errors.New("whatsapp_empty_message")
)

type Message struct {
	To     string
	Body   string
	APIKey string
}

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// LogProvider writes the composed message to the log instead of calling a
// gateway.
type LogProvider struct {
	name string
	log  *zap.Logger
}

func NewLogProvider(name string, log *zap.Logger) *LogProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogProvider{name: name, log: log.Named("whatsapp." + name)}
}

func (p *LogProvider) Name() string { return p.name }

func (p *LogProvider) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	p.log.Info("whatsapp message sent",
		zap.String("provider", p.name),
		zap.String("to", msg.To),
		zap.String("body", msg.Body),
		zap.Bool("api_key_configured", msg.APIKey != ""),
	)
	return nil
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyMessage
	}
	return nil
}
