// Package similarity decides whether a candidate embedding is a semantic
// near-duplicate of a set of reference embeddings.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the documented default duplicate threshold.
const DefaultThreshold = 0.8

// ErrZeroVector marks a candidate whose cosine similarity is undefined
// (empty text, degenerate embedding). It is invalid input, not a duplicate.
var ErrZeroVector = errors.New("zero-magnitude embedding vector")

// Policy holds the duplicate-detection threshold shared across one scope's
// comparisons.
type Policy struct {
	Threshold float64
}

// NewPolicy returns a Policy with the given threshold.
func NewPolicy(threshold float64) Policy {
	return Policy{Threshold: threshold}
}

// Cosine returns the cosine similarity of a and b. A zero-magnitude vector
// on either side yields 0, matching the convention used when comparing
// against stored references.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// IsDuplicate reports whether candidate matches any reference at or above
// the threshold. It short-circuits on the first match; the result is
// identical to scanning the full set. An empty reference set is never a
// duplicate. A zero-magnitude candidate returns ErrZeroVector.
func (p Policy) IsDuplicate(candidate []float32, references [][]float32) (bool, error) {
	if magnitude(candidate) == 0 {
		return false, ErrZeroVector
	}
	for _, ref := range references {
		sim, err := Cosine(candidate, ref)
		if err != nil {
			return false, err
		}
		if sim >= p.Threshold {
			return true, nil
		}
	}
	return false, nil
}

func magnitude(v []float32) float64 {
	var n float64
	for _, x := range v {
		n += float64(x) * float64(x)
	}
	return math.Sqrt(n)
}
