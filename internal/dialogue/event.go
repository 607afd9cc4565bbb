package dialogue

import "time"

// InboundMessage is one customer text message, normalized from the webhook
// payload. CustomerID is the WhatsApp sender id (wa_id).
type InboundMessage struct {
	CustomerID  string    `json:"customer_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Text        string    `json:"text"`
	MessageID   string    `json:"message_id,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}
