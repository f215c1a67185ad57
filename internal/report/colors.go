package report

import (
	"io"

	"github.com/fatih/color"
)

// ColorScheme defines the colors used for the different parts of the text report
type ColorScheme struct {
	Mean    *color.Color
	StdErr  *color.Color
	Heading *color.Color
	Label   *color.Color
	Warning *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Mean:    color.New(color.FgWhite, color.Bold),
		StdErr:  color.New(color.FgWhite, color.Faint),
		Heading: color.New(color.Bold),
		Label:   color.New(color.FgCyan),
		Warning: color.New(color.FgRed, color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Mean.DisableColor()
	scheme.StdErr.DisableColor()
	scheme.Heading.DisableColor()
	scheme.Label.DisableColor()
	scheme.Warning.DisableColor()

	return scheme
}

// SchemeFor picks the scheme for writing to w.
func SchemeFor(w io.Writer, noColor bool) *ColorScheme {
	if noColor || !ColorEnabled(w) {
		return NoColorScheme()
	}
	scheme := DefaultColorScheme()
	// color.NoColor is decided for stdout; the text report goes to stderr,
	// so force the decision made here.
	scheme.Mean.EnableColor()
	scheme.StdErr.EnableColor()
	scheme.Heading.EnableColor()
	scheme.Label.EnableColor()
	scheme.Warning.EnableColor()
	return scheme
}
