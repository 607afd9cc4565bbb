package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayritours/booking-assistant/internal/booking"
	"github.com/tayritours/booking-assistant/internal/orders"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

type capturingEmailSender struct {
	sent []EmailMessage
	err  error
}

func (s *capturingEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func capturedOrder() *orders.Order {
	return &orders.Order{
		ID:           "ord-1",
		CustomerID:   "972501234567",
		CustomerName: "Dana",
		Language:     booking.LanguageHebrew,
		Fields: booking.Fields{
			Date:        "03/08/2025",
			Time:        "17:30",
			Pickup:      "הרצל 5",
			Destination: "שדה התעופה",
			Passengers:  "3",
			Luggage:     "2",
		},
		CreatedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNotifyOrderCaptured(t *testing.T) {
	email := &capturingEmailSender{}
	svc := NewService(email, "ops@tayritours.example", logging.Default())

	require.NoError(t, svc.NotifyOrderCaptured(context.Background(), capturedOrder()))
	require.Len(t, email.sent, 1)

	msg := email.sent[0]
	assert.Equal(t, "ops@tayritours.example", msg.To)
	assert.Contains(t, msg.Subject, "Dana")
	assert.Contains(t, msg.Body, "03/08/2025")
	assert.Contains(t, msg.Body, "שדה התעופה")
}

func TestNotifyOrderCapturedNoSenderConfigured(t *testing.T) {
	svc := NewService(nil, "", logging.Default())
	assert.NoError(t, svc.NotifyOrderCaptured(context.Background(), capturedOrder()))
}

func TestNotifyOrderCapturedSendFailure(t *testing.T) {
	email := &capturingEmailSender{err: errors.New("quota exceeded")}
	svc := NewService(email, "ops@tayritours.example", logging.Default())

	err := svc.NotifyOrderCaptured(context.Background(), capturedOrder())
	require.Error(t, err)
}

func TestStubEmailSender(t *testing.T) {
	stub := NewStubEmailSender(logging.Default())
	assert.NoError(t, stub.Send(context.Background(), EmailMessage{To: "x@example.com"}))
}
