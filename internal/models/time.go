package models

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout — формат календарных дат на проводе (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// timestampLayouts — форматы меток времени, которые отдаёт backend.
// Python isoformat() без таймзоны не является RFC 3339, поэтому
// naive-варианты трактуются как UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp — момент времени из ответа backend.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("models.Timestamp: not a string: %s", b)
	}

	s := string(b[1 : len(b)-1])
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}

	return fmt.Errorf("models.Timestamp: unsupported format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
