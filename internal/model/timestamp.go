package model

import (
	"encoding/json"
	"reflect"
	"time"
)

// timestampLayouts are the ISO 8601 forms accepted in request bodies.
// Values without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is a request time that accepts a calendar date or a full
// date-time.
type Timestamp time.Time

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t))
}

// UnmarshalJSON reports bad input as *json.UnmarshalTypeError so the decoder
// attaches the offending field name.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: reflect.TypeOf(Timestamp{})}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp(parsed)
			return nil
		}
	}
	return &json.UnmarshalTypeError{Value: "string " + s, Type: reflect.TypeOf(Timestamp{})}
}
