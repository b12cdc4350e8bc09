package notification

import (
	"context"
	"errors"

	"empathic-credit/internal/domain"
)

// Channel identifica un canal de entrega de notificaciones.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

// Sender entrega una notificacion por multiples canales. El resultado es
// por canal: el fallo de uno no corta la entrega en los demas.
type Sender interface {
	Notify(ctx context.Context, user domain.User, subject, body string, channels []Channel) map[Channel]error
}

// ChannelSender entrega por un unico canal.
type ChannelSender interface {
	Send(ctx context.Context, user domain.User, subject, body string) error
}

// MultiSender compone un ChannelSender por canal.
type MultiSender struct {
	channels map[Channel]ChannelSender
}

func NewMultiSender(email, push ChannelSender) *MultiSender {
	return &MultiSender{
		channels: map[Channel]ChannelSender{
			ChannelEmail: email,
			ChannelPush:  push,
		},
	}
}

func (s *MultiSender) Notify(ctx context.Context, user domain.User, subject, body string, channels []Channel) map[Channel]error {
	results := make(map[Channel]error, len(channels))
	for _, ch := range channels {
		sender, ok := s.channels[ch]
		if !ok || sender == nil {
			results[ch] = errors.New("channel not configured")
			continue
		}
		results[ch] = sender.Send(ctx, user, subject, body)
	}
	return results
}

type disabledChannel struct {
	reason string
}

// NewDisabledChannel devuelve un canal que siempre falla con la razon dada.
func NewDisabledChannel(reason string) ChannelSender {
	return &disabledChannel{reason: reason}
}

func (s *disabledChannel) Send(_ context.Context, _ domain.User, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("channel disabled")
	}
	return errors.New(s.reason)
}
