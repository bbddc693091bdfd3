// Package duration provides a `time.Duration` which marshals to
// and from its human readable form in JSON documents.
package duration

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration :
// Wraps the standard library duration to marshal it as a string
// such as `1h2m3s` rather than a number of nanoseconds. Both forms
// are accepted when unmarshalling.
type Duration struct {
	time.Duration
}

// ErrInvalidInput :
// Indicates that the value provided as input cannot
// be unmarshalled into a valid duration.
var ErrInvalidInput = fmt.Errorf("could not unmarshal value to duration")

// NewDuration creates a new duration from a base `time.Duration`.
func NewDuration(t time.Duration) Duration {
	return Duration{
		t,
	}
}

// Since :
// Returns the time elapsed since `t`, truncated to the second
// so that it reads well in a status report.
func Since(t time.Time) Duration {
	return NewDuration(time.Since(t).Truncate(time.Second))
}

// MarshalJSON :
// Implementation of the marshaller interface producing the
// string representation of the duration.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON :
// Extracts the duration from either a number of nanoseconds
// or a string parsed with `time.ParseDuration`.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w (err: %v)", ErrInvalidInput, err)
		}
		d.Duration = parsed
		return nil
	default:
		return ErrInvalidInput
	}
}
