package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Timestamp keeps a timestamp exactly as the remote service sent it, be it
// an RFC 3339 string, a naive ISO string or epoch seconds. The zero value
// is an absent timestamp and is omitted when encoded with omitempty.
type Timestamp json.RawMessage

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// TimestampOf renders t as an RFC 3339 string timestamp.
func TimestampOf(t time.Time) Timestamp {
	data, _ := json.Marshal(t.UTC().Format(time.RFC3339Nano))
	return Timestamp(data)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if len(ts) == 0 {
		return []byte("null"), nil
	}
	return ts, nil
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ts = nil
		return nil
	}
	*ts = Timestamp(bytes.Clone(data))
	return nil
}

// IsZero reports whether no timestamp was sent.
func (ts Timestamp) IsZero() bool {
	return len(ts) == 0
}

// String returns the text as sent, without JSON quoting.
func (ts Timestamp) String() string {
	var s string
	if err := json.Unmarshal(ts, &s); err == nil {
		return s
	}
	return string(ts)
}

// Time interprets the timestamp. Naive strings are taken as UTC, numbers as
// epoch seconds, or milliseconds when too large to be seconds.
func (ts Timestamp) Time() (time.Time, bool) {
	if ts.IsZero() {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(ts, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	f, err := strconv.ParseFloat(string(ts), 64)
	if err != nil {
		return time.Time{}, false
	}
	if math.Abs(f) >= 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}
