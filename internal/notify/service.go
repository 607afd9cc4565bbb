package notify

import (
	"context"
	"fmt"

	"github.com/tayritours/booking-assistant/internal/orders"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

// Service alerts the operator when a customer completes a booking request.
type Service struct {
	email     EmailSender
	recipient string
	logger    *logging.Logger
}

// NewService creates a notification service. With no email sender or recipient
// configured it degrades to logging only.
func NewService(email EmailSender, recipient string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		recipient: recipient,
		logger:    logger,
	}
}

// NotifyOrderCaptured emails the operator a summary of the captured order.
func (s *Service) NotifyOrderCaptured(ctx context.Context, order *orders.Order) error {
	if order == nil {
		return nil
	}
	if s.email == nil || s.recipient == "" {
		s.logger.Info("order captured (operator email not configured)",
			"order_id", order.ID,
			"customer_id", order.CustomerID,
		)
		return nil
	}

	name := order.CustomerName
	if name == "" {
		name = order.CustomerID
	}

	subject := fmt.Sprintf("🚖 New ride request - %s", name)
	body := fmt.Sprintf(`A complete ride request came in over WhatsApp.

Customer: %s (%s)
Date: %s
Time: %s
Pickup: %s
Destination: %s
Passengers: %s
Luggage: %s
Captured: %s

Please send the customer a quote for approval.

— Tayri Tours Assistant`,
		name, order.CustomerID,
		order.Fields.Date, order.Fields.Time,
		order.Fields.Pickup, order.Fields.Destination,
		order.Fields.Passengers, order.Fields.Luggage,
		order.CreatedAt.Format("January 2, 2006 at 15:04"),
	)

	msg := EmailMessage{
		To:      s.recipient,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send order email", "error", err, "order_id", order.ID)
		return fmt.Errorf("notify: order notification failed: %w", err)
	}

	s.logger.Info("notify: order email sent", "to", s.recipient, "order_id", order.ID)
	return nil
}
