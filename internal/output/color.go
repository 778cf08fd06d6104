package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls highlighting of text output
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always and never
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (expected auto, always or never)", s)
	}
}

// UseColor decides whether w gets colored output. Auto enables color only for
// terminals and honours NO_COLOR.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette holds the colors of one writer. Colors are enabled explicitly so the
// decision does not depend on the global color.NoColor.
type palette struct {
	path  *color.Color
	match *color.Color
	stats *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		path:  color.New(color.FgMagenta, color.Bold),
		match: color.New(color.FgRed, color.Bold),
		stats: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.path, p.match, p.stats} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
