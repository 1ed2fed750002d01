// Package tokenize scans raw chart lines into document segments. The
// chord grammar is implemented as an explicit scanner rather than a
// regular expression so that diagnostics carry exact line and column
// positions.
//
// A span is a chord token only when it is isolated by whitespace or
// line boundaries and matches [#b]?digit[0-9susb#+-/oø△Δ]*. Two chord
// tokens separated by a single space violate the two-space rule and are
// reported as a non-fatal FormattingError.
package tokenize

import (
	"strings"

	"github.com/chartworks/nashville/core/chart"
	"github.com/chartworks/nashville/core/chord"
	"github.com/chartworks/nashville/core/errors"
)

// Options configures tokenization.
type Options struct {
	// TwoSpaceRule enables the two-space minimum between adjacent
	// chord tokens. Violations are diagnostics, never corrections.
	TwoSpaceRule bool
}

// DefaultOptions returns the default tokenizer options.
func DefaultOptions() Options {
	return Options{TwoSpaceRule: true}
}

// Result is a fully tokenized source document. Chord syntax errors are
// collected rather than returned early so a chart author sees every
// offending token at once.
type Result struct {
	Document    *chart.Document
	Diagnostics []*errors.FormattingError
	ChordErrors []*errors.ChordSyntaxError
}

// titleOpen marks a chart title: Title{My Song}.
const titleOpen = "Title{"

// sectionLabels is the set of recognized section label words.
var sectionLabels = map[string]bool{
	"Intro":        true,
	"Verse":        true,
	"Chorus":       true,
	"Bridge":       true,
	"Pre-Chorus":   true,
	"Tag":          true,
	"Outro":        true,
	"Interlude":    true,
	"Turnaround":   true,
	"Vamp":         true,
	"Refrain":      true,
	"Ending":       true,
	"Instrumental": true,
	"Solo":         true,
}

// suffixChars is the chord grammar's suffix character class.
var suffixChars = map[rune]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	's': true, 'u': true, 'b': true, '#': true, '+': true,
	'-': true, '/': true, 'o': true, 'ø': true, '△': true, 'Δ': true,
}

// Parse tokenizes all source lines into a document.
func Parse(lines []string, opts Options) *Result {
	res := &Result{Document: &chart.Document{}}

	for i, text := range lines {
		line, diags, chordErrs := Line(text, i+1, opts)
		res.Diagnostics = append(res.Diagnostics, diags...)
		res.ChordErrors = append(res.ChordErrors, chordErrs...)
		for _, seg := range line.Segments {
			if seg.Kind == chart.SegmentTitle && res.Document.Title == "" {
				res.Document.Title = seg.Text
			}
		}
		res.Document.Lines = append(res.Document.Lines, line)
	}

	return res
}

// Line tokenizes a single line into segments covering the entire line
// with no gaps or overlaps. The line number is 1-indexed and used only
// for diagnostics.
func Line(text string, number int, opts Options) (*chart.Line, []*errors.FormattingError, []*errors.ChordSyntaxError) {
	s := &scanner{
		text:   text,
		number: number,
		opts:   opts,
		line:   &chart.Line{Number: number},
	}
	s.run()
	return s.line, s.diags, s.chordErrs
}

// scanner walks a line byte by byte, buffering plain text and flushing
// it whenever a chord, title, or label segment begins.
type scanner struct {
	text   string
	number int
	opts   Options
	line   *chart.Line

	pos       int
	buf       strings.Builder
	diags     []*errors.FormattingError
	chordErrs []*errors.ChordSyntaxError

	// prevChordEnd is the byte offset just past the last chord
	// segment, -1 when the previous segment was not a chord.
	prevChordEnd int
}

func (s *scanner) run() {
	s.prevChordEnd = -1

	for s.pos < len(s.text) {
		if s.atTitle() {
			s.scanTitle()
			continue
		}

		start := s.pos
		token := s.nextToken()
		if token == "" {
			// Whitespace run
			s.buf.WriteString(s.whitespace())
			continue
		}

		switch {
		case isChordToken(token):
			s.flushText()
			s.emitChord(token, start)
		case s.isLabelToken(token):
			s.flushText()
			s.emitLabel(token)
		default:
			s.buf.WriteString(token)
			s.prevChordEnd = -1
		}
	}

	s.flushText()
}

// atTitle reports whether a Title{...} marker with a closing brace
// starts at the current position.
func (s *scanner) atTitle() bool {
	if !strings.HasPrefix(s.text[s.pos:], titleOpen) {
		return false
	}
	return strings.IndexByte(s.text[s.pos+len(titleOpen):], '}') >= 0
}

// scanTitle consumes Title{...} and emits a title segment with the
// inner text.
func (s *scanner) scanTitle() {
	s.flushText()
	inner := s.text[s.pos+len(titleOpen):]
	end := strings.IndexByte(inner, '}')
	s.line.Append(&chart.Segment{Kind: chart.SegmentTitle, Text: inner[:end]})
	s.pos += len(titleOpen) + end + 1
	s.prevChordEnd = -1
}

// whitespace consumes and returns the whitespace run at the current
// position.
func (s *scanner) whitespace() string {
	start := s.pos
	for s.pos < len(s.text) && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
		s.pos++
	}
	return s.text[start:s.pos]
}

// nextToken consumes and returns the non-whitespace token at the
// current position, or "" when positioned on whitespace.
func (s *scanner) nextToken() string {
	start := s.pos
	for s.pos < len(s.text) && s.text[s.pos] != ' ' && s.text[s.pos] != '\t' {
		if s.atTitleAt(s.pos) {
			break
		}
		s.pos++
	}
	return s.text[start:s.pos]
}

func (s *scanner) atTitleAt(pos int) bool {
	if !strings.HasPrefix(s.text[pos:], titleOpen) {
		return false
	}
	return strings.IndexByte(s.text[pos+len(titleOpen):], '}') >= 0
}

// isChordToken reports whether the token matches the chord grammar.
// Token boundaries (whitespace or line edges) are guaranteed by the
// scanner itself.
func isChordToken(token string) bool {
	runes := []rune(token)
	i := 0
	if i < len(runes) && (runes[i] == '#' || runes[i] == 'b') {
		i++
	}
	if i >= len(runes) || runes[i] < '0' || runes[i] > '9' {
		return false
	}
	i++
	for ; i < len(runes); i++ {
		if !suffixChars[runes[i]] {
			return false
		}
	}
	return true
}

// emitChord parses the chord token and appends a chord segment. Parse
// failures are collected; the token is kept as plain text so the line
// still covers its full width.
func (s *scanner) emitChord(token string, start int) {
	s.checkSpacing(start)

	c, err := chord.Parse(token, s.number)
	if err != nil {
		var syntaxErr *errors.ChordSyntaxError
		if errors.As(err, &syntaxErr) {
			s.chordErrs = append(s.chordErrs, syntaxErr)
		} else {
			s.chordErrs = append(s.chordErrs, errors.NewChordSyntax(token, s.number, err.Error()))
		}
		s.buf.WriteString(token)
		s.flushText()
		s.prevChordEnd = -1
		return
	}

	s.line.Append(chart.NewChord(c, token))
	s.prevChordEnd = s.pos
}

// checkSpacing records a two-space-rule diagnostic when this chord
// follows another chord with fewer than two separating spaces.
func (s *scanner) checkSpacing(start int) {
	if !s.opts.TwoSpaceRule || s.prevChordEnd < 0 {
		return
	}
	if start-s.prevChordEnd < 2 {
		s.diags = append(s.diags, errors.NewFormatting(
			s.number, start, "chord tokens separated by fewer than two spaces"))
	}
}

// isLabelToken reports whether the token is a recognized section label,
// with or without a trailing colon.
func (s *scanner) isLabelToken(token string) bool {
	return sectionLabels[strings.TrimSuffix(token, ":")]
}

// emitLabel appends a label segment, absorbing an optional section
// number ("Verse 2", "Verse 2:"). A number is only absorbed across a
// single space; chord tokens sit at least two spaces away under the
// two-space rule.
func (s *scanner) emitLabel(token string) {
	label := token
	if !strings.HasSuffix(label, ":") {
		if rest, ok := s.labelNumber(); ok {
			label += rest
		}
	}
	s.line.Append(&chart.Segment{Kind: chart.SegmentLabel, Text: label})
	s.prevChordEnd = -1
}

// labelNumber consumes " N" or " N:" immediately after a label.
func (s *scanner) labelNumber() (string, bool) {
	rest := s.text[s.pos:]
	if len(rest) < 2 || rest[0] != ' ' || rest[1] < '0' || rest[1] > '9' {
		return "", false
	}
	i := 1
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i < len(rest) && rest[i] == ':' {
		i++
	}
	s.pos += i
	return rest[:i], true
}

// flushText emits the buffered plain text as a text segment.
func (s *scanner) flushText() {
	if s.buf.Len() == 0 {
		return
	}
	s.line.Append(chart.NewText(s.buf.String()))
	s.buf.Reset()
}
