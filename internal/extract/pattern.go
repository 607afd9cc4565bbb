package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// ---------- package-level compiled regexes ----------

// One independent pattern per field; each covers the Hebrew and English
// phrasings customers actually use. First match wins and no cross-field
// consistency is enforced, since merges downstream are last-write-wins.
var (
	dateRE       = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	timeRE       = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	pickupRE     = regexp.MustCompile(`(?:איסוף[:\s]*|מרחוב\s*|מרח׳\s*|מ-\s*|(?i:pickup(?:\s+address)?[:\s]+|from\s+))([^\n,.]+)`)
	destRE       = regexp.MustCompile(`(?:יעד[:\s]*|ל־\s*|ל\s+|(?i:destination[:\s]+|to\s+))([^\n,.]+)`)
	passengersRE = regexp.MustCompile(`(\d+)\s*(?:נוסע(?:ים|ות)?|(?i:passengers?|people|pax))`)
	luggageRE    = regexp.MustCompile(`(\d+)\s*(?:מזוודות?|(?i:suitcases?|bags?|luggage))`)
)

var fieldPatterns = map[string]*regexp.Regexp{
	booking.FieldDate:        dateRE,
	booking.FieldTime:        timeRE,
	booking.FieldPickup:      pickupRE,
	booking.FieldDestination: destRE,
	booking.FieldPassengers:  passengersRE,
	booking.FieldLuggage:     luggageRE,
}

// PatternExtractor extracts booking fields with regular expressions. It never
// fails: a message with nothing recognizable yields empty fields.
type PatternExtractor struct{}

// NewPatternExtractor returns the regex-based extraction strategy.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

var _ Extractor = (*PatternExtractor)(nil)

// Extract scans the message with one regex per field. The language tag is not
// needed here; every pattern covers both template sets.
func (e *PatternExtractor) Extract(_ context.Context, text, _ string) (booking.Fields, error) {
	var fields booking.Fields
	for _, key := range booking.FieldOrder {
		m := fieldPatterns[key].FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		fields.Set(key, strings.TrimSpace(m[1]))
	}
	return fields, nil
}
