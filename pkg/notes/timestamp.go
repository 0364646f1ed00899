package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const wallClockLayout = "2006-01-02T15:04:05.999999999"

// The backend is not strict about its timestamp layout. Values without a zone
// are wall-clock times in the viewer's local zone.
var zonelessLayouts = []string{
	wallClockLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type Timestamp struct {
	time.Time
	// wallClock marks a value that carried no zone.
	wallClock bool
}

// WallClock reports whether the value was sent without a zone. Such values
// are shown as-is rather than converted to another zone.
func (t Timestamp) WallClock() bool {
	return t.wallClock
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.wallClock {
		return json.Marshal(t.Time.Format(wallClockLayout))
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO forms. Zone-less
// values are read in time.Local.
func ParseTimestamp(raw string) (Timestamp, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return Timestamp{Time: parsed}, nil
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return Timestamp{Time: parsed, wallClock: true}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp: %q", raw)
}
