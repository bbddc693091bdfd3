package logger

import (
	"fmt"
	"strings"
)

// Severity :
// Describes the importance of a log record. The six values
// are ordered so that a larger value is more important: it
// allows backends to filter records by comparing against a
// minimum severity.
type Severity int

const (
	TraceLevel Severity = iota
	DebugLevel
	InfoLevel
	WarningLevel
	ErrorLevel
	CriticalLevel
)

// ErrInvalidSeverity :
// Indicates that a string could not be converted into one
// of the known severities.
var ErrInvalidSeverity = fmt.Errorf("invalid severity")

// Severities :
// Returns all the severities from the least important to
// the most important one.
func Severities() []Severity {
	return []Severity{TraceLevel, DebugLevel, InfoLevel, WarningLevel, ErrorLevel, CriticalLevel}
}

// Valid :
// Returns `true` if the severity is one of the six known
// values.
func (s Severity) Valid() bool {
	return s >= TraceLevel && s <= CriticalLevel
}

// Name :
// Provides a string value from the input level identifier. This
// is very useful when actually producing the logs for a given
// level. Unknown values are displayed as `unknown`.
//
// Returns the string representing the input log level.
func (s Severity) Name() string {
	if !s.Valid() {
		return "unknown"
	}

	return [...]string{
		"trace",
		"debug",
		"info",
		"warning",
		"error",
		"critical",
	}[s]
}

// Color :
// Provides a color value representing the severity. This is used
// as a visual way to distinguish between severity when displayed
// in a logging device.
func (s Severity) Color() Color {
	if !s.Valid() {
		return White
	}

	return [...]Color{
		Grey,
		Blue,
		Green,
		Yellow,
		Red,
		Magenta,
	}[s]
}

// String :
// Provides a complete string representing the severity which
// includes some color formatting to display it with a color that
// matches its importance.
func (s Severity) String() string {
	return FormatWithBrackets(s.Name(), s.Color())
}

// MarshalText :
// Used to serialize the severity as its plain name, so that
// configuration and JSON payloads use `info` rather than an
// integer or an escape sequence.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidSeverity
	}
	return []byte(s.Name()), nil
}

// UnmarshalText :
// Counterpart of `MarshalText`, relies on `ParseSeverity`.
func (s *Severity) UnmarshalText(text []byte) error {
	level, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}

	*s = level
	return nil
}

// ParseSeverity :
// Converts the input string into the corresponding severity value.
// Note that the case is not important (so `Debug`, `DeBug`, `debug`
// or any other variations will all be converted to `DebugLevel`).
// The short `warn` and the legacy `fatal` names are also accepted
// as aliases of `WarningLevel` and `CriticalLevel`.
//
// The `level` represents the string to convert to a severity.
//
// Returns the severity associated to the input string along with
// any error.
func ParseSeverity(level string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "verbose":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warning", "warn":
		return WarningLevel, nil
	case "error":
		return ErrorLevel, nil
	case "critical", "fatal":
		return CriticalLevel, nil
	}

	return TraceLevel, fmt.Errorf("%w: \"%s\"", ErrInvalidSeverity, level)
}

// fromString :
// Lenient version of `ParseSeverity` used when reading values from
// the configuration: unknown values fall back to the provided one.
func fromString(level string, fallback Severity) Severity {
	s, err := ParseSeverity(level)
	if err != nil {
		return fallback
	}

	return s
}
