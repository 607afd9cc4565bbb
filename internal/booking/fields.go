package booking

import "strings"

// Field keys shared by extraction output, session merging and reply rendering.
const (
	FieldDate        = "date"
	FieldTime        = "time"
	FieldPickup      = "pickup"
	FieldDestination = "destination"
	FieldPassengers  = "passengers"
	FieldLuggage     = "luggage"
)

// FieldOrder is the fixed priority order used when asking for missing fields.
var FieldOrder = []string{
	FieldDate,
	FieldTime,
	FieldPickup,
	FieldDestination,
	FieldPassengers,
	FieldLuggage,
}

// Fields holds the six ride-booking slots. A slot is either empty (unknown)
// or a non-empty trimmed string; values are stored as the customer wrote them,
// with no calendar or numeric validation.
type Fields struct {
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Pickup      string `json:"pickup,omitempty"`
	Destination string `json:"destination,omitempty"`
	Passengers  string `json:"passengers,omitempty"`
	Luggage     string `json:"luggage,omitempty"`
}

// Get returns the value of the named slot, or "" for an unknown key.
func (f Fields) Get(key string) string {
	switch key {
	case FieldDate:
		return f.Date
	case FieldTime:
		return f.Time
	case FieldPickup:
		return f.Pickup
	case FieldDestination:
		return f.Destination
	case FieldPassengers:
		return f.Passengers
	case FieldLuggage:
		return f.Luggage
	}
	return ""
}

// Set stores a trimmed value in the named slot. Empty values are ignored so a
// slot never moves from set back to unset.
func (f *Fields) Set(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch key {
	case FieldDate:
		f.Date = value
	case FieldTime:
		f.Time = value
	case FieldPickup:
		f.Pickup = value
	case FieldDestination:
		f.Destination = value
	case FieldPassengers:
		f.Passengers = value
	case FieldLuggage:
		f.Luggage = value
	}
}

// Merge applies this turn's extraction on top of the existing fields.
// Last write wins per slot; slots the extractor did not produce keep their
// prior value. Returns true if any slot changed.
func (f *Fields) Merge(extracted Fields) bool {
	changed := false
	for _, key := range FieldOrder {
		value := strings.TrimSpace(extracted.Get(key))
		if value == "" || value == f.Get(key) {
			continue
		}
		f.Set(key, value)
		changed = true
	}
	return changed
}

// Missing returns the unset slots in fixed priority order.
func (f Fields) Missing() []string {
	var missing []string
	for _, key := range FieldOrder {
		if f.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Complete reports whether all six slots are set.
func (f Fields) Complete() bool {
	for _, key := range FieldOrder {
		if f.Get(key) == "" {
			return false
		}
	}
	return true
}

// Empty reports whether no slot is set.
func (f Fields) Empty() bool {
	return len(f.Missing()) == len(FieldOrder)
}
