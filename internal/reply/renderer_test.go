package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayritours/booking-assistant/internal/booking"
)

func hebrewSession() *booking.Session {
	sess := booking.NewSession("972501234567")
	sess.Language = booking.LanguageHebrew
	sess.DisplayName = "דנה"
	return sess
}

func completeSession(lang string) *booking.Session {
	sess := booking.NewSession("972501234567")
	sess.Language = lang
	sess.DisplayName = "Dana"
	sess.Fields = booking.Fields{
		Date:        "03/08/2025",
		Time:        "17:30",
		Pickup:      "הרצל 5",
		Destination: "שדה התעופה",
		Passengers:  "3",
		Luggage:     "2",
	}
	return sess
}

func TestRenderGreetingBothLanguages(t *testing.T) {
	r := NewRenderer()

	he, err := r.Render(ActionGreeting, hebrewSession())
	require.NoError(t, err)
	assert.Contains(t, he, "טיירי טורס")

	sess := booking.NewSession("15551230000")
	sess.Language = booking.LanguageEnglish
	en, err := r.Render(ActionGreeting, sess)
	require.NoError(t, err)
	assert.Contains(t, en, "Tayri Tours")
}

func TestRenderAskFollowsFieldPriority(t *testing.T) {
	r := NewRenderer()
	sess := hebrewSession()
	sess.Fields.Set(booking.FieldPickup, "הרצל 5")
	sess.Fields.Set(booking.FieldLuggage, "2")

	// Date outranks the other missing fields.
	text, err := r.Render(ActionAsk, sess)
	require.NoError(t, err)
	assert.Equal(t, questionsHE[booking.FieldDate], text)

	sess.Fields.Set(booking.FieldDate, "03/08/2025")
	text, err = r.Render(ActionAsk, sess)
	require.NoError(t, err)
	assert.Equal(t, questionsHE[booking.FieldTime], text)
}

func TestRenderAskIsIdempotent(t *testing.T) {
	r := NewRenderer()
	sess := hebrewSession()

	first, err := r.Render(ActionAsk, sess)
	require.NoError(t, err)
	second, err := r.Render(ActionAsk, sess)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderAskCompleteBookingFails(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render(ActionAsk, completeSession(booking.LanguageHebrew))
	require.Error(t, err)
}

func TestRenderSummaryHebrew(t *testing.T) {
	r := NewRenderer()

	text, err := r.Render(ActionSummary, completeSession(booking.LanguageHebrew))
	require.NoError(t, err)
	assert.Contains(t, text, "03/08/2025")
	assert.Contains(t, text, "17:30")
	assert.Contains(t, text, "הרצל 5")
	assert.Contains(t, text, "שדה התעופה")
	assert.Contains(t, text, "Dana")
}

func TestRenderSummaryEnglishFallsBackToCustomerID(t *testing.T) {
	r := NewRenderer()
	sess := completeSession(booking.LanguageEnglish)
	sess.DisplayName = ""

	text, err := r.Render(ActionSummary, sess)
	require.NoError(t, err)
	assert.Contains(t, text, "972501234567")
	assert.Contains(t, text, "Destination:")
}

func TestRenderSummaryIncompleteFails(t *testing.T) {
	r := NewRenderer()
	sess := hebrewSession()
	sess.Fields.Set(booking.FieldDate, "03/08/2025")

	_, err := r.Render(ActionSummary, sess)
	require.Error(t, err)
}

func TestRenderAckUnknownLanguageUsesEnglish(t *testing.T) {
	r := NewRenderer()
	sess := booking.NewSession("15551230000")
	sess.Language = "fr"

	text, err := r.Render(ActionAck, sess)
	require.NoError(t, err)
	assert.Equal(t, ackEN, text)
}
