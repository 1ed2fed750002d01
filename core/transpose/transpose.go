// Package transpose renders a parsed chart into target keys. It
// combines the chord parser's output with the key mapper, keeps chord
// columns aligned above lyrics as chord text changes width, and runs
// the per-key transforms in parallel.
package transpose

import (
	"github.com/chartworks/nashville/core/chord"
	"github.com/chartworks/nashville/core/key"
)

// DefaultSuperscriptWeight is the visual width of a superscripted
// suffix character relative to a base character. It matches the
// renderer's superscript font scale.
const DefaultSuperscriptWeight = 0.75

// Config carries the formatting constants for a transposer. It is
// immutable and threaded in at construction, never read from globals.
type Config struct {
	// SuperscriptWeight is the fractional width of a superscript
	// character (quality/extension suffix characters).
	SuperscriptWeight float64
}

// DefaultConfig returns the default transposer configuration.
func DefaultConfig() Config {
	return Config{SuperscriptWeight: DefaultSuperscriptWeight}
}

// Transposer renders chords and documents into target keys.
type Transposer struct {
	cfg Config
}

// New creates a Transposer with the given configuration.
func New(cfg Config) *Transposer {
	if cfg.SuperscriptWeight <= 0 {
		cfg.SuperscriptWeight = DefaultSuperscriptWeight
	}
	return &Transposer{cfg: cfg}
}

// RenderedChord is a rendered chord split into its display portions.
// Prefix and Suffix render as scaled superscripts; Root renders at base
// size. Prefix is only set for the NNS target, where a leading
// accidental is superscripted ahead of the degree digit.
type RenderedChord struct {
	Prefix string
	Root   string
	Suffix string
}

// Text returns the plain-text rendering of the chord.
func (r RenderedChord) Text() string {
	return r.Prefix + r.Root + r.Suffix
}

// RenderParts renders a chord into the target key, keeping the base
// and superscript portions separate for the typesetting layer. The
// quality suffix is carried verbatim; the slash bass is spelled
// independently of the root.
func (t *Transposer) RenderParts(c *chord.Chord, k *key.Key) RenderedChord {
	if k.NNS {
		return RenderedChord{
			Prefix: string(c.Accidental),
			Root:   string(rune('0' + c.Root)),
			Suffix: suffixText(c, ""),
		}
	}

	var spelledBass string
	if c.Bass != nil {
		spelledBass = k.Spell(c.Bass.Degree, c.Bass.Accidental)
	}
	return RenderedChord{
		Root:   k.Spell(c.Root, c.Accidental),
		Suffix: suffixText(c, spelledBass),
	}
}

// Render returns the rendered chord text for the target key: spelled
// root, quality suffix verbatim, and an independently spelled slash
// bass. The NNS passthrough target renders the chord unchanged.
func (t *Transposer) Render(c *chord.Chord, k *key.Key) string {
	return t.RenderParts(c, k).Text()
}
