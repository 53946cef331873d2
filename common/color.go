package common

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorGray   = "\033[90m"
)

var colorsEnabled = true

// SetColorsEnabled switches Colorize off for CI logs and redirected output.
func SetColorsEnabled(on bool) { colorsEnabled = on }

func Colorize(color, s string) string {
	if !colorsEnabled {
		return s
	}
	return color + s + ColorReset
}
