package transpose

import (
	"github.com/chartworks/nashville/core/chart"
	"github.com/chartworks/nashville/core/key"
)

// Document renders the source document into the target key. The source
// is never mutated; a fresh document is returned. Title and label
// segments pass through unchanged, they are never transposed.
func (t *Transposer) Document(src *chart.Document, k *key.Key) *chart.Document {
	doc := src.Clone()
	doc.Key = k.Name

	if k.NNS {
		// Passthrough target: chord text stays exactly as written.
		for _, line := range doc.Lines {
			for _, seg := range line.Segments {
				if seg.IsChord() {
					seg.Text = seg.Original
				}
			}
		}
		return doc
	}

	for _, line := range doc.Lines {
		t.alignLine(line, k)
	}
	return doc
}
