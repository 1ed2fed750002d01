package tex

import (
	"fmt"
	"strings"

	"github.com/chartworks/nashville/core/chart"
	"github.com/chartworks/nashville/core/errors"
	"github.com/chartworks/nashville/core/key"
	"github.com/chartworks/nashville/core/transpose"
)

// Renderer emits a XeLaTeX document for one rendered chart.
type Renderer struct {
	cfg Config
	tr  *transpose.Transposer
}

// NewRenderer creates a Renderer with the given layout configuration.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{
		cfg: cfg,
		tr:  transpose.New(transpose.Config{SuperscriptWeight: cfg.SuperscriptScale}),
	}
}

// Render emits the complete .tex source for the document. The document
// must already be rendered into its target key; Render only typesets.
func (r *Renderer) Render(doc *chart.Document) (string, error) {
	if doc.Key == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "document has no render key")
	}
	k, err := key.Parse(doc.Key)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	r.preamble(&sb)

	fmt.Fprintf(&sb, "\\begin{Verbatim}[fontsize=\\scalefont{%v},commandchars=\\\\\\{\\}]\n", r.cfg.scaleRatio())
	for _, line := range doc.Lines {
		sb.WriteString(r.line(line, k))
		sb.WriteString("\n")
	}
	sb.WriteString("\\end{Verbatim}\n")
	sb.WriteString("\\end{document}\n")

	return sb.String(), nil
}

// preamble writes the document class and font machinery: monospace
// body, scalable superscripts, thin filler font, title font, and the
// unicode chord glyphs.
func (r *Renderer) preamble(sb *strings.Builder) {
	fmt.Fprintf(sb, "\\documentclass[%vpt]{extarticle}\n", BaseFontSize)
	sb.WriteString("\\usepackage{fontspec,xfp}\n")
	sb.WriteString("\\usepackage{parskip}\n")
	sb.WriteString("\\usepackage{courier}\n")
	sb.WriteString("\\usepackage{fancyvrb}\n")
	sb.WriteString("\\usepackage{fvextra}\n")
	fmt.Fprintf(sb, "\\usepackage[margin=%vin]{geometry}\n", r.cfg.Margin)
	sb.WriteString("\\usepackage[verbose]{newunicodechar}\n")
	sb.WriteString("\\pagenumbering{gobble}\n")
	sb.WriteString("\\setmonofont{Courier New}\n")
	sb.WriteString("\\makeatletter\n")
	sb.WriteString("\\newcommand{\\scalefont}[1]{\n")
	sb.WriteString("    \\edef\\scale@fontsize{\\fpeval{#1*\\f@size}}\n")
	sb.WriteString("    \\edef\\scale@fontbaselineskip{\\fpeval{1.2*\\scale@fontsize}}\n")
	sb.WriteString("    \\fontsize{\\scale@fontsize}{\\scale@fontbaselineskip}\\selectfont}\n")
	sb.WriteString("\\makeatother\n")
	fmt.Fprintf(sb, "\\renewcommand{\\textsuperscript}[1]{\\raisebox{%vex}{\\scalefont{%v}#1}}\n",
		r.cfg.SuperscriptRaise, r.cfg.SuperscriptScale)
	sb.WriteString("\\renewcommand{\\familydefault}{\\ttdefault}\n")
	sb.WriteString("\\newcommand{\\ts}{\\textsuperscript}\n")
	fmt.Fprintf(sb, "\\newfontfamily{\\thin}[Scale=%v]{Courier New}\n", r.cfg.FillerScale)
	fmt.Fprintf(sb, "\\newfontfamily\\bigtitle[SizeFeatures={Size=%v}]{%s}\n",
		r.cfg.TitleSize, r.cfg.TitleFont)
	sb.WriteString("\\newunicodechar{△}{$\\bigtriangleup$}\n")
	sb.WriteString("\\newunicodechar{ø}{$\\o$}\n")
	sb.WriteString("\\begin{document}\n")
}

// line typesets one chart line. Chord suffixes become superscripts
// backed by thin filler spaces so the following columns stay on the
// monospace grid; titles and section labels get their fixed markup.
func (r *Renderer) line(line *chart.Line, k *key.Key) string {
	var sb strings.Builder
	hasTitle := false

	for _, seg := range line.Segments {
		switch seg.Kind {
		case chart.SegmentTitle:
			sb.WriteString("\\underline{\\bigtitle{" + seg.Text + "}}")
			hasTitle = true
		case chart.SegmentLabel:
			if hasTitle {
				// A tag on the title line is pushed to the right edge.
				sb.WriteString("\\hfill{\\textbf{" + seg.Text + "}}")
			} else {
				sb.WriteString("\\textbf{" + seg.Text + "}")
			}
		case chart.SegmentChord:
			sb.WriteString(r.chord(seg, k))
		default:
			sb.WriteString(seg.Text)
		}
	}

	return sb.String()
}

// chord typesets one chord segment from its parsed parts.
func (r *Renderer) chord(seg *chart.Segment, k *key.Key) string {
	parts := r.tr.RenderParts(seg.Chord, k)

	var sb strings.Builder
	if parts.Prefix != "" {
		// NNS leading accidental: superscripted, left-padded with a
		// thin filler space per character.
		sb.WriteString("\\ts{{\\thin" + filler(parts.Prefix) + "}" + parts.Prefix + "}")
	}
	sb.WriteString(parts.Root)
	if parts.Suffix != "" {
		sb.WriteString("\\ts{" + parts.Suffix + "{\\thin" + filler(parts.Suffix) + "}}")
	}
	return sb.String()
}

// filler returns one space per monospace cell the superscript text
// occupies. △ and Δ render outside the grid and take no filler.
func filler(s string) string {
	n := 0
	for _, r := range s {
		if r == '△' || r == 'Δ' {
			continue
		}
		n++
	}
	return strings.Repeat(" ", n)
}

// FileName returns the output base name for a rendered document:
// "<name> (<key>)".
func FileName(name, keyName string) string {
	return fmt.Sprintf("%s (%s)", name, keyName)
}
