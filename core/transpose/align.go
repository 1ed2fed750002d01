package transpose

import (
	"math"
	"strings"

	"github.com/chartworks/nashville/core/chart"
	"github.com/chartworks/nashville/core/chord"
	"github.com/chartworks/nashville/core/key"
)

// weightedWidth sums the visual width of a chord rendering: 1.0 per
// root character, the superscript weight per suffix character. The △
// glyph renders as a math symbol outside the monospace cell and counts
// at zero width.
func (t *Transposer) weightedWidth(root, suffix string) float64 {
	w := float64(len([]rune(root)))
	for _, r := range suffix {
		if r == '△' || r == 'Δ' {
			continue
		}
		w += t.cfg.SuperscriptWeight
	}
	return w
}

// originalWidth is the weighted width of the chord as written in the
// source: accidental and degree digit at base width, everything after
// at suffix width.
func (t *Transposer) originalWidth(c *chord.Chord) float64 {
	root := string(c.Accidental) + "0" // degree is always one digit
	return t.weightedWidth(root, suffixText(c, ""))
}

// renderedWidth is the weighted width of the chord rendered in the
// target key: spelled root at base width, suffix and spelled bass at
// suffix width.
func (t *Transposer) renderedWidth(c *chord.Chord, k *key.Key) float64 {
	if k.NNS {
		return t.originalWidth(c)
	}
	root := k.Spell(c.Root, c.Accidental)
	return t.weightedWidth(root, suffixText(c, k.Spell(bassDegree(c), bassAccidental(c))))
}

// suffixText joins the quality and slash bass into the superscripted
// suffix portion. spelledBass substitutes for the bass degree when
// rendering into a lettered key; pass "" for source notation.
func suffixText(c *chord.Chord, spelledBass string) string {
	if c.Bass == nil {
		return c.Quality
	}
	bass := spelledBass
	if bass == "" {
		bass = string(c.Bass.Accidental) + string(rune('0'+c.Bass.Degree))
	}
	return c.Quality + "/" + bass
}

func bassDegree(c *chord.Chord) chord.ScaleDegree {
	if c.Bass == nil {
		return c.Root
	}
	return c.Bass.Degree
}

func bassAccidental(c *chord.Chord) chord.Accidental {
	if c.Bass == nil {
		return c.Accidental
	}
	return c.Bass.Accidental
}

// Delta returns the rounded weighted-width change of a chord rendered
// into the target key. Quality suffixes are transposition-invariant, so
// the delta reduces to the root (and bass) width difference.
func (t *Transposer) Delta(c *chord.Chord, k *key.Key) int {
	return int(math.Round(t.renderedWidth(c, k) - t.originalWidth(c)))
}

// alignLine replaces each chord segment's text with its rendering in
// the target key and compensates the neighboring text segment so that
// subsequent columns keep their position:
//
//   - a chord that grew eats up to delta whitespace characters from the
//     following text segment, never non-whitespace, floor at zero;
//   - a chord that shrank pushes delta space characters into the
//     following text segment, creating one if absent.
func (t *Transposer) alignLine(line *chart.Line, k *key.Key) {
	out := make([]*chart.Segment, 0, len(line.Segments))

	for i := 0; i < len(line.Segments); i++ {
		seg := line.Segments[i]
		out = append(out, seg)
		if !seg.IsChord() {
			continue
		}

		rendered := t.Render(seg.Chord, k)
		delta := t.Delta(seg.Chord, k)
		seg.Text = rendered
		if delta == 0 {
			continue
		}

		var next *chart.Segment
		if i+1 < len(line.Segments) && line.Segments[i+1].Kind == chart.SegmentText {
			next = line.Segments[i+1]
		}

		if delta < 0 {
			pad := strings.Repeat(" ", -delta)
			if next != nil {
				next.Text = pad + next.Text
			} else {
				out = append(out, chart.NewText(pad))
			}
			continue
		}

		if next != nil {
			next.Text = trimLeadingSpaces(next.Text, delta)
		}
	}

	line.Segments = out
}

// trimLeadingSpaces removes up to n leading space characters, never
// touching non-whitespace content.
func trimLeadingSpaces(s string, n int) string {
	i := 0
	for i < len(s) && i < n && s[i] == ' ' {
		i++
	}
	return s[i:]
}
