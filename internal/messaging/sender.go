// Package messaging delivers outbound WhatsApp text messages through a
// Business Solution Provider.
package messaging

import (
	"context"
	"strings"
)

// Sender delivers one text message to a WhatsApp recipient. The recipient is
// the wa_id from the inbound webhook, with or without a leading plus.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// normalizeRecipient strips the leading plus; BSP APIs expect the bare wa_id.
func normalizeRecipient(to string) string {
	return strings.TrimPrefix(strings.TrimSpace(to), "+")
}
