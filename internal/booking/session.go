package booking

import "time"

// Stage is the coarse conversational phase of a session.
type Stage string

const (
	// StageStart marks a session with no interaction yet.
	StageStart Stage = "start"
	// StageCollecting marks a session with at least one turn but an
	// incomplete booking.
	StageCollecting Stage = "collecting"
	// StageDone marks a session whose six fields are filled and whose
	// summary has been sent at least once.
	StageDone Stage = "done"
)

// Session is the per-customer conversation state. One session owns exactly
// one Fields value; sessions are keyed by the WhatsApp sender id and are
// never explicitly destroyed.
type Session struct {
	CustomerID  string    `json:"customer_id"`
	Language    string    `json:"language"`
	DisplayName string    `json:"display_name,omitempty"`
	Stage       Stage     `json:"stage"`
	Fields      Fields    `json:"fields"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSession returns a fresh session in StageStart with empty fields.
func NewSession(customerID string) *Session {
	now := time.Now().UTC()
	return &Session{
		CustomerID: customerID,
		Stage:      StageStart,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
