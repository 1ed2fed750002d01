// Package key maps Nashville scale degrees to concrete pitch spellings
// in a target major key.
package key

import (
	"strings"

	"github.com/chartworks/nashville/core/chord"
	"github.com/chartworks/nashville/core/errors"
)

// NNSName is the passthrough target name: the chart is rendered in
// Nashville notation instead of a lettered key.
const NNSName = "NNS"

// Spelling is the enharmonic spelling preference of a key.
type Spelling string

// Spelling constants.
const (
	SpellingSharp Spelling = "sharp"
	SpellingFlat  Spelling = "flat"
)

// Key is a target tonic pitch class plus a spelling preference derived
// from the circle of fifths.
type Key struct {
	// Name is the key name as requested (e.g., "Db", "A", "NNS").
	Name string `json:"name"`

	// Tonic is the tonic pitch class (0-11, C=0). Zero for NNS.
	Tonic int `json:"tonic"`

	// Spelling is the enharmonic preference for non-natural pitches.
	Spelling Spelling `json:"spelling"`

	// NNS marks the Nashville passthrough target.
	NNS bool `json:"nns,omitempty"`
}

// degreeSemitones is the major-scale semitone offset of each degree,
// indexed 1-7 (index 0 unused).
var degreeSemitones = [8]int{0, 0, 2, 4, 5, 7, 9, 11}

// tonics maps every recognized key name to its pitch class.
var tonics = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// flatNaturalKeys is the set of natural key names that lean flat. F is
// on the flat side of the circle of fifths; C has no signature and
// takes the flat convention of the common lowered degrees (b3, b7).
var flatNaturalKeys = map[string]bool{
	"C": true,
	"F": true,
}

// sharpNames and flatNames spell each pitch class under the two
// preferences. Naturals are identical in both.
var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// DefaultNames is the default render target list, matching the CLI
// default: NNS first, then the twelve keys in flat-preferring order.
var DefaultNames = []string{
	NNSName, "Ab", "A", "Bb", "B", "C", "Db", "D", "Eb", "E", "F", "Gb", "G",
}

// Parse resolves a key name to a Key. An explicitly sharp or flat name
// carries its own spelling preference; natural names take the preference
// of their signature. Unknown names fail with InvalidKeyError.
func Parse(name string) (*Key, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == NNSName {
		return &Key{Name: NNSName, Spelling: SpellingSharp, NNS: true}, nil
	}

	tonic, ok := tonics[trimmed]
	if !ok {
		return nil, errors.NewInvalidKey(name)
	}

	spelling := SpellingSharp
	switch {
	case strings.ContainsRune(trimmed, 'b'):
		spelling = SpellingFlat
	case strings.ContainsRune(trimmed, '#'):
		spelling = SpellingSharp
	case flatNaturalKeys[trimmed]:
		spelling = SpellingFlat
	}

	return &Key{Name: trimmed, Tonic: tonic, Spelling: spelling}, nil
}

// ParseAll resolves a list of key names, failing on the first invalid one.
func ParseAll(names []string) ([]*Key, error) {
	keys := make([]*Key, 0, len(names))
	for _, name := range names {
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Semitone returns the pitch class of a degree+accidental in this key:
// the degree's major-scale offset, shifted by the accidental, added to
// the tonic, reduced modulo 12.
func (k *Key) Semitone(degree chord.ScaleDegree, accidental chord.Accidental) int {
	semitone := degreeSemitones[degree] + accidental.Offset() + k.Tonic
	return ((semitone % 12) + 12) % 12
}

// Spell returns the letter-name spelling of a degree+accidental in this
// key, honoring the key's enharmonic preference.
func (k *Key) Spell(degree chord.ScaleDegree, accidental chord.Accidental) string {
	pc := k.Semitone(degree, accidental)
	if k.Spelling == SpellingFlat {
		return flatNames[pc]
	}
	return sharpNames[pc]
}

// String returns the key name.
func (k *Key) String() string {
	return k.Name
}
