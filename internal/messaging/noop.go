package messaging

import (
	"context"

	"github.com/tayritours/booking-assistant/pkg/logging"
)

// NoopSender logs outbound messages instead of delivering them. Used when no
// provider credentials are configured so local runs still show the dialogue.
type NoopSender struct {
	logger *logging.Logger
}

func NewNoopSender(logger *logging.Logger) *NoopSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &NoopSender{logger: logger}
}

var _ Sender = (*NoopSender)(nil)

func (s *NoopSender) SendText(_ context.Context, to, body string) error {
	s.logger.Info("outbound message suppressed (no provider configured)", "to", normalizeRecipient(to), "body", body)
	return nil
}
