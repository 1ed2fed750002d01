// Package chart defines the chart document model shared by the
// tokenizer, transposer, and renderers. A Document is an ordered
// sequence of Lines, each an ordered sequence of Segments; segment
// order is the left-to-right visual position on the page.
package chart

import (
	"strings"

	"github.com/chartworks/nashville/core/chord"
)

// SegmentKind represents the kind of a line segment.
type SegmentKind string

// Segment kind constants.
const (
	// SegmentText is plain lyric or spacing text.
	SegmentText SegmentKind = "TEXT"

	// SegmentChord is an isolated chord token.
	SegmentChord SegmentKind = "CHORD"

	// SegmentTitle is the chart title, recognized from Title{...}.
	SegmentTitle SegmentKind = "TITLE"

	// SegmentLabel is a section label (Intro, Verse, Chorus, ...).
	SegmentLabel SegmentKind = "LABEL"
)

// validSegmentKinds is the set of valid segment kinds.
var validSegmentKinds = map[SegmentKind]bool{
	SegmentText:  true,
	SegmentChord: true,
	SegmentTitle: true,
	SegmentLabel: true,
}

// IsValid returns true if the segment kind is valid.
func (k SegmentKind) IsValid() bool {
	return validSegmentKinds[k]
}

// Segment is a span of a line. A segment is owned exclusively by its
// Line; chord segments keep the original token text alongside the
// parsed chord so renderers can compute width deltas.
type Segment struct {
	// Kind indicates the segment kind.
	Kind SegmentKind `json:"kind"`

	// Text is the segment text. For chord segments this is the
	// rendered chord text (initially the original token); for title
	// and label segments it is the recognized content.
	Text string `json:"text"`

	// Original is the verbatim source text for chord segments.
	Original string `json:"original,omitempty"`

	// Chord is the parsed chord for chord segments.
	Chord *chord.Chord `json:"chord,omitempty"`
}

// NewText creates a plain text segment.
func NewText(text string) *Segment {
	return &Segment{Kind: SegmentText, Text: text}
}

// NewChord creates a chord segment from a parsed chord and its token.
func NewChord(c *chord.Chord, original string) *Segment {
	return &Segment{Kind: SegmentChord, Text: original, Original: original, Chord: c}
}

// IsChord returns true for chord segments.
func (s *Segment) IsChord() bool {
	return s.Kind == SegmentChord
}

// Clone returns a copy of the segment. The parsed chord is shared: it
// is immutable once parsed.
func (s *Segment) Clone() *Segment {
	dup := *s
	return &dup
}

// Line is an ordered sequence of segments.
type Line struct {
	// Number is the 1-indexed source line number.
	Number int `json:"number"`

	// Segments are the spans of the line in visual order.
	Segments []*Segment `json:"segments,omitempty"`
}

// Append adds a segment to the line.
func (l *Line) Append(s *Segment) {
	l.Segments = append(l.Segments, s)
}

// Text returns the line rendered as plain text.
func (l *Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Chords returns the chord segments of the line in order.
func (l *Line) Chords() []*Segment {
	var out []*Segment
	for _, s := range l.Segments {
		if s.IsChord() {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy of the line.
func (l *Line) Clone() *Line {
	dup := &Line{Number: l.Number, Segments: make([]*Segment, len(l.Segments))}
	for i, s := range l.Segments {
		dup.Segments[i] = s.Clone()
	}
	return dup
}

// Document is a parsed chart: ordered lines plus metadata. The source
// document is never mutated; each render target receives a fresh copy.
type Document struct {
	// Title is the chart title, if a Title{...} line was present.
	Title string `json:"title,omitempty"`

	// Key is the render target key name ("" for the source document).
	Key string `json:"key,omitempty"`

	// Lines are the chart lines in source order.
	Lines []*Line `json:"lines,omitempty"`

	// Attributes contains additional metadata, passed through opaque.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	dup := &Document{
		Title: d.Title,
		Key:   d.Key,
		Lines: make([]*Line, len(d.Lines)),
	}
	for i, l := range d.Lines {
		dup.Lines[i] = l.Clone()
	}
	if d.Attributes != nil {
		dup.Attributes = make(map[string]string, len(d.Attributes))
		for k, v := range d.Attributes {
			dup.Attributes[k] = v
		}
	}
	return dup
}

// Text returns the document rendered as plain text lines.
func (d *Document) Text() []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Text()
	}
	return out
}
