// Package reply renders the outbound message for each dialogue turn. Rendering
// is a pure function of the session snapshot: same session and action, same
// text, which keeps re-delivered webhook events harmless.
package reply

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// Action names the kind of reply a dialogue turn produced.
type Action string

const (
	// ActionGreeting opens a new conversation and lists what is needed.
	ActionGreeting Action = "greeting"
	// ActionAsk requests the highest-priority missing field.
	ActionAsk Action = "ask"
	// ActionSummary confirms a complete booking back to the customer.
	ActionSummary Action = "summary"
	// ActionAck acknowledges a message that changed nothing.
	ActionAck Action = "ack"
)

const (
	greetingHE = "היי! כאן הסוכן החכם של טיירי טורס 😊\n" +
		"כדי להכין הצעת מחיר אצטרך: תאריך, שעה, כתובת איסוף, יעד, מספר נוסעים ומספר מזוודות.\n" +
		"אפשר לכתוב הכול בהודעה אחת, ואם חסר משהו אשאל צעד אחר צעד."
	greetingEN = "Hi! I'm the Tayri Tours smart agent 😊\n" +
		"To prepare a quote I need: date, time, pickup address, destination, passengers and luggage.\n" +
		"You can write everything in one message; if something is missing I'll ask step by step."

	ackHE = "תודה! קיבלתי 🙌"
	ackEN = "Thanks! Noted 🙌"
)

var questionsHE = map[string]string{
	booking.FieldDate:        "מה תאריך הנסיעה? (למשל 03/08/2025)",
	booking.FieldTime:        "באיזו שעה? (למשל 17:30)",
	booking.FieldPickup:      "מה כתובת האיסוף המדויקת?",
	booking.FieldDestination: "מה היעד?",
	booking.FieldPassengers:  "כמה נוסעים יהיו?",
	booking.FieldLuggage:     "כמה מזוודות?",
}

var questionsEN = map[string]string{
	booking.FieldDate:        "What's the date? (e.g. 03/08/2025)",
	booking.FieldTime:        "What time? (e.g. 17:30)",
	booking.FieldPickup:      "What's the exact pickup address?",
	booking.FieldDestination: "What's the destination?",
	booking.FieldPassengers:  "How many passengers?",
	booking.FieldLuggage:     "How many suitcases?",
}

const summaryHE = `✅ קיבלתי הזמנה מלאה מ-{{.Name}}:
• תאריך: {{.Date}}
• שעה: {{.Time}}
• איסוף: {{.Pickup}}
• יעד: {{.Destination}}
• נוסעים: {{.Passengers}}
• מזוודות: {{.Luggage}}

מעביר למנהל לאישור הצעת מחיר ונחזור אליך מיד.`

const summaryEN = `✅ Got your full request, {{.Name}}:
• Date: {{.Date}}
• Time: {{.Time}}
• Pickup: {{.Pickup}}
• Destination: {{.Destination}}
• Passengers: {{.Passengers}}
• Luggage: {{.Luggage}}

I'm sending this to the manager for quote approval and will get back to you shortly.`

var summaryTemplates = map[string]*template.Template{
	booking.LanguageHebrew:  template.Must(template.New("summary_he").Option("missingkey=error").Parse(summaryHE)),
	booking.LanguageEnglish: template.Must(template.New("summary_en").Option("missingkey=error").Parse(summaryEN)),
}

type summaryData struct {
	Name        string
	Date        string
	Time        string
	Pickup      string
	Destination string
	Passengers  string
	Luggage     string
}

// Renderer maps a dialogue action onto customer-facing text in the session's
// language. Unknown languages fall back to English.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the reply text for action against the given session.
func (r *Renderer) Render(action Action, sess *booking.Session) (string, error) {
	hebrew := sess.Language == booking.LanguageHebrew

	switch action {
	case ActionGreeting:
		if hebrew {
			return greetingHE, nil
		}
		return greetingEN, nil

	case ActionAsk:
		missing := sess.Fields.Missing()
		if len(missing) == 0 {
			return "", fmt.Errorf("reply: nothing to ask, booking is complete")
		}
		questions := questionsEN
		if hebrew {
			questions = questionsHE
		}
		return questions[missing[0]], nil

	case ActionSummary:
		if !sess.Fields.Complete() {
			return "", fmt.Errorf("reply: summary requires all fields, missing %v", sess.Fields.Missing())
		}
		name := sess.DisplayName
		if name == "" {
			name = sess.CustomerID
		}
		tmpl := summaryTemplates[booking.LanguageEnglish]
		if hebrew {
			tmpl = summaryTemplates[booking.LanguageHebrew]
		}
		var buf bytes.Buffer
		err := tmpl.Execute(&buf, summaryData{
			Name:        name,
			Date:        sess.Fields.Date,
			Time:        sess.Fields.Time,
			Pickup:      sess.Fields.Pickup,
			Destination: sess.Fields.Destination,
			Passengers:  sess.Fields.Passengers,
			Luggage:     sess.Fields.Luggage,
		})
		if err != nil {
			return "", fmt.Errorf("reply: execute summary: %w", err)
		}
		return buf.String(), nil

	case ActionAck:
		if hebrew {
			return ackHE, nil
		}
		return ackEN, nil
	}
	return "", fmt.Errorf("reply: unknown action %q", action)
}
