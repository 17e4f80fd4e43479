package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Icons used on status lines
const (
	successGlyph = "✓"
	errorGlyph   = "✗"
	arrowGlyph   = "→"
)

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	return paint(successGlyph, noColor, color.FgGreen)
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	return paint(errorGlyph, noColor, color.FgRed)
}

// ArrowIcon returns the arrow used for fire-and-forget notices
func ArrowIcon(noColor bool) string {
	return paint(arrowGlyph, noColor, color.FgCyan)
}

func paint(glyph string, noColor bool, attr color.Attribute) string {
	if noColor {
		return glyph
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(glyph)
}

// ColorSupported reports whether w is a terminal that can render colors.
func ColorSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
