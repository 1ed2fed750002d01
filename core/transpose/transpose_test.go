package transpose

import (
	"errors"
	"strings"
	"testing"

	"github.com/chartworks/nashville/core/chord"
	cerrors "github.com/chartworks/nashville/core/errors"
	"github.com/chartworks/nashville/core/key"
	"github.com/chartworks/nashville/core/tokenize"
)

func mustChord(t *testing.T, token string) *chord.Chord {
	t.Helper()
	c, err := chord.Parse(token, 0)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", token, err)
	}
	return c
}

func mustKey(t *testing.T, name string) *key.Key {
	t.Helper()
	k, err := key.Parse(name)
	if err != nil {
		t.Fatalf("key.Parse(%q) failed: %v", name, err)
	}
	return k
}

func TestRender(t *testing.T) {
	tests := []struct {
		token string
		key   string
		want  string
	}{
		// Degree 5 in C maps to semitone 7 -> G
		{"5sus", "C", "Gsus"},
		// Degree 5 in D: (7+2) mod 12 = 9 -> A, sharp-leaning
		{"5sus", "D", "Asus"},
		{"1", "C", "C"},
		{"1", "Gb", "Gb"},
		{"b7", "C", "Bb"},
		{"b7", "F", "Eb"},
		{"b7", "A", "G"},
		{"#4", "D", "G#"},
		{"#4", "Ab", "D"},
		// Root and bass transpose independently
		{"#4-7/5", "G", "C#-7/D"},
		{"1/3", "C", "C/E"},
		{"1/b7", "D", "D/C"},
		{"4/b6", "C", "F/Ab"},
		// Quality passes through untouched
		{"2△7", "C", "D△7"},
		{"7ø", "C", "Bø"},
		{"6-", "Bb", "G-"},
	}

	tr := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.token+"_"+tt.key, func(t *testing.T) {
			got := tr.Render(mustChord(t, tt.token), mustKey(t, tt.key))
			if got != tt.want {
				t.Errorf("Render(%s, %s) = %q, want %q", tt.token, tt.key, got, tt.want)
			}
		})
	}
}

func TestRenderNNSPassthrough(t *testing.T) {
	tr := New(DefaultConfig())
	nns := mustKey(t, "NNS")
	for _, token := range []string{"1", "b7", "#4-7/5", "5sus", "2△7"} {
		if got := tr.Render(mustChord(t, token), nns); got != token {
			t.Errorf("NNS render of %q = %q", token, got)
		}
	}
}

// Transposing into the chord's own key is identity up to spelling:
// degree 1 always renders the tonic.
func TestIdentity(t *testing.T) {
	tr := New(DefaultConfig())
	for _, name := range key.DefaultNames[1:] {
		k := mustKey(t, name)
		if got := tr.Render(mustChord(t, "1"), k); got != name {
			t.Errorf("degree 1 in %s = %q, want %q", name, got, name)
		}
	}
}

// The rendered quality suffix is byte-identical across all target keys.
func TestQualityInvariance(t *testing.T) {
	tr := New(DefaultConfig())
	tokens := []string{"5sus", "2-7", "4△", "6-7b5", "3+", "7ø"}
	for _, token := range tokens {
		c := mustChord(t, token)
		for _, name := range key.DefaultNames[1:] {
			rendered := tr.Render(c, mustKey(t, name))
			if !strings.HasSuffix(rendered, c.Quality) {
				t.Errorf("render of %q in %s = %q lost quality %q", token, name, rendered, c.Quality)
			}
		}
	}
}

// Pitch classes survive a round trip between any two keys: the rendered
// root of a chord in key K sits exactly tonic(K) semitones above its
// NNS semitone in C.
func TestRoundTripPitchClasses(t *testing.T) {
	tr := New(DefaultConfig())
	pitchClass := map[string]int{
		"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
		"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
		"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
	}

	tokens := []string{"1", "2", "b3", "4", "#4", "5", "b6", "6", "b7", "7"}
	for _, token := range tokens {
		c := mustChord(t, token)
		for _, n1 := range key.DefaultNames[1:] {
			for _, n2 := range key.DefaultNames[1:] {
				k1, k2 := mustKey(t, n1), mustKey(t, n2)
				r1 := rootName(tr.Render(c, k1))
				r2 := rootName(tr.Render(c, k2))
				diff := ((pitchClass[r1]-pitchClass[r2])%12 + 12) % 12
				wantDiff := ((k1.Tonic-k2.Tonic)%12 + 12) % 12
				if diff != wantDiff {
					t.Fatalf("%q: %s->%s vs %s->%s, interval %d want %d", token, n1, r1, n2, r2, diff, wantDiff)
				}
			}
		}
	}
}

// rootName extracts the spelled root (letter plus optional accidental)
// from rendered chord text.
func rootName(rendered string) string {
	if len(rendered) > 1 && (rendered[1] == '#' || rendered[1] == 'b') {
		return rendered[:2]
	}
	return rendered[:1]
}

func TestDelta(t *testing.T) {
	tests := []struct {
		token string
		key   string
		want  int
	}{
		{"5sus", "C", 0},  // G, same root width
		{"5sus", "D", 0},  // A
		{"5", "Db", 1},    // Ab grows by one
		{"b7", "C", 0},    // Bb, two chars either way
		{"b7", "G", -1},   // F shrinks by one
		{"#4", "C", 0},    // F#
		{"1/3", "C", 0},   // C/E
		{"1/4", "Db", 2},  // Db/Gb: root +1, bass +0.75, rounds to 2
		{"1/b7", "C", 0},  // C/Bb
		{"2△7", "C", 0},   // D△7
		{"5sus", "NNS", 0},
	}

	tr := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.token+"_"+tt.key, func(t *testing.T) {
			got := tr.Delta(mustChord(t, tt.token), mustKey(t, tt.key))
			if got != tt.want {
				t.Errorf("Delta(%s, %s) = %d, want %d", tt.token, tt.key, got, tt.want)
			}
		})
	}
}

// Alignment conservation: renderedWidth - paddingRemoved + paddingInserted
// equals originalWidth, so total line width is unchanged whenever
// whitespace is available to trim.
func TestDocumentPreservesLineWidth(t *testing.T) {
	tr := New(DefaultConfig())
	// Chord lines carry trailing spaces so a trailing chord that grows
	// still has whitespace to consume.
	lines := []string{
		"1       4      5sus  ",
		"Amazing grace how sweet",
		"b7    #4-7/5    2△7  ",
		"1/4   6-   b3",
	}
	res := tokenize.Parse(lines, tokenize.DefaultOptions())
	if len(res.ChordErrors) != 0 {
		t.Fatalf("chord errors: %v", res.ChordErrors)
	}

	for _, name := range key.DefaultNames {
		doc := tr.Document(res.Document, mustKey(t, name))
		if doc.Key != name {
			t.Errorf("doc key = %q, want %q", doc.Key, name)
		}
		for i, line := range doc.Lines {
			orig := lines[i]
			got := line.Text()
			if lineWidth(got) != lineWidth(orig) {
				t.Errorf("key %s line %d: width %d != %d (%q vs %q)",
					name, i+1, lineWidth(got), lineWidth(orig), got, orig)
			}
		}
	}
}

// lineWidth counts visual columns: △ and Δ take no monospace cell.
func lineWidth(s string) int {
	n := 0
	for _, r := range s {
		if r == '△' || r == 'Δ' {
			continue
		}
		n++
	}
	return n
}

func TestDocumentScenario(t *testing.T) {
	// "5sus    C△": one chord token and one lyric token ("C△" starts
	// with a letter and is not a chord). In C the chord renders Gsus,
	// zero delta, spacing untouched.
	res := tokenize.Parse([]string{"5sus    C△"}, tokenize.DefaultOptions())
	if len(res.ChordErrors) != 0 {
		t.Fatalf("chord errors: %v", res.ChordErrors)
	}

	tr := New(DefaultConfig())
	doc := tr.Document(res.Document, mustKey(t, "C"))
	if got := doc.Lines[0].Text(); got != "Gsus    C△" {
		t.Errorf("line = %q, want %q", got, "Gsus    C△")
	}
}

func TestDocumentShrinkPadsFollowingText(t *testing.T) {
	res := tokenize.Parse([]string{"b7    lyric"}, tokenize.DefaultOptions())
	tr := New(DefaultConfig())
	doc := tr.Document(res.Document, mustKey(t, "G"))
	if got := doc.Lines[0].Text(); got != "F     lyric" {
		t.Errorf("line = %q, want %q", got, "F     lyric")
	}
}

func TestDocumentShrinkAtLineEnd(t *testing.T) {
	res := tokenize.Parse([]string{"b7"}, tokenize.DefaultOptions())
	tr := New(DefaultConfig())
	doc := tr.Document(res.Document, mustKey(t, "G"))
	if got := doc.Lines[0].Text(); got != "F " {
		t.Errorf("line = %q, want %q", got, "F ")
	}
}

func TestDocumentGrowthTrimsFollowingSpace(t *testing.T) {
	// Delta +1 consumes exactly one space from the following text
	// segment; lyric characters are never removed.
	res := tokenize.Parse([]string{"5    4x"}, tokenize.DefaultOptions())
	tr := New(DefaultConfig())
	doc := tr.Document(res.Document, mustKey(t, "Db"))
	if got := doc.Lines[0].Text(); got != "Ab   4x" {
		t.Errorf("line = %q, want %q", got, "Ab   4x")
	}
}

func TestDocumentDoesNotMutateSource(t *testing.T) {
	res := tokenize.Parse([]string{"1  4  5"}, tokenize.DefaultOptions())
	tr := New(DefaultConfig())
	before := res.Document.Lines[0].Text()
	_ = tr.Document(res.Document, mustKey(t, "Db"))
	if after := res.Document.Lines[0].Text(); after != before {
		t.Errorf("source mutated: %q -> %q", before, after)
	}
}

func TestRun(t *testing.T) {
	res := tokenize.Parse([]string{"Title{Song}", "1   4   5"}, tokenize.DefaultOptions())
	tr := New(DefaultConfig())

	names := []string{"NNS", "C", "X", "D"}
	run := tr.Run(res.Document, names, 2)

	if run.ID == "" {
		t.Error("run ID should be set")
	}
	if len(run.Documents) != 3 {
		t.Fatalf("documents = %d, want 3", len(run.Documents))
	}
	wantOrder := []string{"NNS", "C", "D"}
	for i, doc := range run.Documents {
		if doc.Key != wantOrder[i] {
			t.Errorf("document %d key = %q, want %q", i, doc.Key, wantOrder[i])
		}
	}
	if len(run.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(run.Failures))
	}
	if run.Failures[0].Key != "X" {
		t.Errorf("failure key = %q, want X", run.Failures[0].Key)
	}
	if !errors.Is(run.Failures[0].Err, cerrors.ErrInvalidKey) {
		t.Errorf("failure err = %v, want ErrInvalidKey", run.Failures[0].Err)
	}
}

func TestRunEmptyKeys(t *testing.T) {
	tr := New(DefaultConfig())
	res := tokenize.Parse([]string{"1"}, tokenize.DefaultOptions())
	run := tr.Run(res.Document, nil, 4)
	if len(run.Documents) != 0 || len(run.Failures) != 0 {
		t.Errorf("expected empty run, got %+v", run)
	}
}
