// Package chord provides the Nashville chord value type and its parser.
package chord

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/chartworks/nashville/core/errors"
)

// ScaleDegree is a Nashville scale degree (1-7).
type ScaleDegree int

// IsValid returns true if the degree lies in [1,7].
func (d ScaleDegree) IsValid() bool {
	return d >= 1 && d <= 7
}

// Accidental is a sharp/flat modifier on a scale degree.
type Accidental string

// Accidental constants.
const (
	AccidentalNone  Accidental = ""
	AccidentalSharp Accidental = "#"
	AccidentalFlat  Accidental = "b"
)

// Offset returns the semitone offset applied by the accidental.
func (a Accidental) Offset() int {
	switch a {
	case AccidentalSharp:
		return 1
	case AccidentalFlat:
		return -1
	}
	return 0
}

// SlashBass is the optional bass part of a slash chord, transposed
// independently from the root.
type SlashBass struct {
	// Degree is the bass scale degree (1-7).
	Degree ScaleDegree `json:"degree"`

	// Accidental is the bass accidental, if any.
	Accidental Accidental `json:"accidental,omitempty"`
}

// Chord is a parsed Nashville chord. Immutable once parsed.
type Chord struct {
	// Root is the root scale degree (1-7).
	Root ScaleDegree `json:"root"`

	// Accidental modifies the root by one semitone.
	Accidental Accidental `json:"accidental,omitempty"`

	// Quality is the quality/extension suffix, carried verbatim.
	// It never transposes and is never decomposed.
	Quality string `json:"quality,omitempty"`

	// Bass is the optional slash bass.
	Bass *SlashBass `json:"bass,omitempty"`
}

// chordGrammar is the participle grammar for Nashville chord tokens.
// Examples: "1", "b7", "5sus", "#4-7/5", "2△7", "6ø"
//
//nolint:govet // participle grammar tags are not standard struct tags
type chordGrammar struct {
	Accidental *string   `parser:"@Accidental?"`
	Degree     string    `parser:"@Digit"`
	Suffix     []string  `parser:"( @Digit | @Accidental | @SuffixChar )*"`
	Bass       *bassPart `parser:"( Slash @@ )?"`
	Trailing   []string  `parser:"( @Digit | @Accidental | @SuffixChar | @Slash )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type bassPart struct {
	Accidental *string `parser:"@Accidental?"`
	Degree     string  `parser:"@Digit"`
}

// chordLexer defines the lexer for chord tokens. The rules cover exactly
// the grammar's character class [0-9susb#+-/oø△Δ]; '#' and 'b' lex as
// Accidental everywhere and the grammar re-admits them inside suffixes.
var chordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Accidental", Pattern: `[#b]`},
	{Name: "Digit", Pattern: `[0-9]`},
	{Name: "Slash", Pattern: `/`},
	{Name: "SuffixChar", Pattern: `[suoø△Δ+\-]`},
})

// chordParser is the participle parser for chord tokens.
var chordParser = participle.MustBuild[chordGrammar](
	participle.Lexer(chordLexer),
)

// Parse parses a chord token into a Chord. The token must already have
// been isolated by the tokenizer; line carries the 1-indexed source line
// for error reporting (0 when unknown).
//
// The leading optional #/b is the root accidental; the first digit is
// the root degree; everything after the digit up to an optional '/' is
// the quality suffix, preserved verbatim; text after '/' must be a bare
// degree with optional accidental.
func Parse(token string, line int) (*Chord, error) {
	if token == "" {
		return nil, errors.NewChordSyntax(token, line, "empty chord token")
	}

	parsed, err := chordParser.ParseString("", token)
	if err != nil {
		return nil, &errors.ChordSyntaxError{
			Token:  token,
			Line:   line,
			Reason: "does not match chord grammar",
			Err:    err,
		}
	}

	if len(parsed.Trailing) > 0 {
		return nil, errors.NewChordSyntax(token, line, "malformed slash bass")
	}

	degree, err := parseDegree(parsed.Degree)
	if err != nil {
		return nil, errors.NewChordSyntax(token, line, err.Error())
	}

	c := &Chord{
		Root:    degree,
		Quality: strings.Join(parsed.Suffix, ""),
	}
	if parsed.Accidental != nil {
		c.Accidental = Accidental(*parsed.Accidental)
	}

	if parsed.Bass != nil {
		bassDegree, err := parseDegree(parsed.Bass.Degree)
		if err != nil {
			return nil, errors.NewChordSyntax(token, line, "bass "+err.Error())
		}
		bass := &SlashBass{Degree: bassDegree}
		if parsed.Bass.Accidental != nil {
			bass.Accidental = Accidental(*parsed.Bass.Accidental)
		}
		c.Bass = bass
	}

	return c, nil
}

// parseDegree converts a degree digit to a validated ScaleDegree.
func parseDegree(s string) (ScaleDegree, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(err, "degree digit")
	}
	d := ScaleDegree(n)
	if !d.IsValid() {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "degree %d out of range [1,7]", n)
	}
	return d, nil
}

// String returns the Nashville notation for the chord.
func (c *Chord) String() string {
	var sb strings.Builder
	sb.WriteString(string(c.Accidental))
	sb.WriteString(strconv.Itoa(int(c.Root)))
	sb.WriteString(c.Quality)
	if c.Bass != nil {
		sb.WriteString("/")
		sb.WriteString(string(c.Bass.Accidental))
		sb.WriteString(strconv.Itoa(int(c.Bass.Degree)))
	}
	return sb.String()
}
