package logger

// Color :
// Defines the color that can be produced as valid standard
// output display.
type Color int

const (
	Black Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	Grey
)

// colorCodes holds the ANSI foreground code for each color.
var colorCodes = [...]string{
	"30",
	"31",
	"32",
	"33",
	"34",
	"35",
	"36",
	"37",
	"90",
}

// GetColorCode :
// Returns the escape sequence switching the terminal to
// the input color.
func GetColorCode(c Color) string {
	if c < Black || c > Grey {
		c = White
	}
	return "\033[1;" + colorCodes[c] + "m"
}

// NoOp :
// Resets the color display of the standard output to the default
// color.
func NoOp() string {
	return "\033[0m"
}

// format :
// Used to wrap the input message with the escape sequences for
// the color `c`, optionally surrounding it with brackets. When
// `colored` is false only the brackets are applied.
func format(msg string, c Color, addBracket bool, colored bool) string {
	fMsg := msg
	if addBracket {
		fMsg = "[" + msg + "]"
	}

	if !colored {
		return fMsg
	}

	return GetColorCode(c) + fMsg + NoOp()
}

// FormatWithBrackets :
// Displays `msg` between brackets in the desired color.
func FormatWithBrackets(msg string, c Color) string {
	return format(msg, c, true, true)
}

// FormatWithNoBrackets :
// Similar to `FormatWithBrackets` but does not include some
// brackets around the message.
func FormatWithNoBrackets(msg string, c Color) string {
	return format(msg, c, false, true)
}
