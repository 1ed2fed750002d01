// Package tex emits XeLaTeX chart documents and optionally drives the
// external compiler. The layout mirrors a monospace chart sheet:
// Courier New in a Verbatim body, chord suffixes as scaled
// superscripts, thin-font filler restoring the column grid behind
// them.
package tex

import "fmt"

// BaseFontSize is the document class font size everything scales from.
const BaseFontSize = 10.0

// AllFontSizes are the extarticle sizes accepted for rendering.
var AllFontSizes = []float64{8, 9, 10, 11, 12, 14, 17, 20}

// Config carries the layout constants for a renderer. It is immutable
// and threaded in at construction, never read from package globals.
type Config struct {
	// FontSize is the body font size in points.
	FontSize float64

	// Margin is the page margin on all sides, in inches.
	Margin float64

	// SuperscriptRaise is the superscript baseline raise, in ex.
	SuperscriptRaise float64

	// SuperscriptScale is the superscript font scale relative to the
	// body font. It matches the alignment formatter's width weight.
	SuperscriptScale float64

	// FillerScale is the scale of the thin filler font used to pad
	// superscript runs back onto the monospace grid.
	FillerScale float64

	// TitleSize is the title font size in points.
	TitleSize float64

	// TitleFont is the title font family name.
	TitleFont string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{
		FontSize:         BaseFontSize,
		Margin:           0.5,
		SuperscriptRaise: 0.3,
		SuperscriptScale: 0.75,
		FillerScale:      0.25,
		TitleSize:        16,
		TitleFont:        "Courier New",
	}
}

// Validate checks that the configured font size is an accepted
// extarticle size.
func (c Config) Validate() error {
	for _, size := range AllFontSizes {
		if c.FontSize == size {
			return nil
		}
	}
	return fmt.Errorf("font size %v not in %v", c.FontSize, AllFontSizes)
}

// scaleRatio is the body font scale relative to the document class
// base size, rounded to two decimals.
func (c Config) scaleRatio() float64 {
	ratio := c.FontSize / BaseFontSize
	return float64(int(ratio*100+0.5)) / 100
}
