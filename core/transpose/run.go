package transpose

import (
	"github.com/google/uuid"

	"github.com/chartworks/nashville/core/chart"
	"github.com/chartworks/nashville/core/key"
)

// KeyFailure records a key whose render could not be produced.
type KeyFailure struct {
	// Key is the key name as requested.
	Key string

	// Err is the fatal error for this key (InvalidKeyError or a
	// chord syntax failure surfaced during the transform).
	Err error
}

// RunResult holds the outcome of rendering a source document into a
// set of keys: successful documents in request order plus per-key
// failures. A failed key never blocks its siblings.
type RunResult struct {
	// ID identifies this render run.
	ID string

	// Documents are the successfully rendered documents, in the
	// order their keys were requested.
	Documents []*chart.Document

	// Failures are the keys that could not be rendered.
	Failures []KeyFailure
}

// keyJob is one per-key render unit.
type keyJob struct {
	index int
	name  string
}

// keyOutcome is the result of one per-key render.
type keyOutcome struct {
	index int
	name  string
	doc   *chart.Document
	err   error
}

// Run renders the source document into every requested key on a worker
// pool. Each key's transform is independent: it reads the immutable
// source and writes a fresh document, and a per-key failure cancels
// only that key. Request order is restored at the collection step.
func (t *Transposer) Run(src *chart.Document, keyNames []string, workers int) *RunResult {
	res := &RunResult{ID: uuid.NewString()}
	if len(keyNames) == 0 {
		return res
	}

	pool := newWorkerPool[keyJob, keyOutcome](workers, len(keyNames))
	pool.start(func(job keyJob) keyOutcome {
		k, err := key.Parse(job.name)
		if err != nil {
			return keyOutcome{index: job.index, name: job.name, err: err}
		}
		return keyOutcome{index: job.index, name: job.name, doc: t.Document(src, k)}
	})

	for i, name := range keyNames {
		pool.submit(keyJob{index: i, name: name})
	}
	pool.close()

	outcomes := make([]keyOutcome, 0, len(keyNames))
	for outcome := range pool.results {
		outcomes = append(outcomes, outcome)
	}

	// Restore request order; processing order is unspecified.
	byIndex := make([]*keyOutcome, len(keyNames))
	for i := range outcomes {
		byIndex[outcomes[i].index] = &outcomes[i]
	}
	for _, outcome := range byIndex {
		if outcome.err != nil {
			res.Failures = append(res.Failures, KeyFailure{Key: outcome.name, Err: outcome.err})
			continue
		}
		res.Documents = append(res.Documents, outcome.doc)
	}

	return res
}
