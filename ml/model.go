package ml

import "fmt"

// SparseVector is a single-document feature vector. Indices are strictly
// increasing and every index is < Dim.
type SparseVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// Dot returns the inner product with a dense row of length v.Dim.
func (v SparseVector) Dot(row []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * row[idx]
	}
	return sum
}

// SquaredNorm returns the sum of squared values.
func (v SparseVector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// NNZ is the number of stored entries.
func (v SparseVector) NNZ() int {
	return len(v.Indices)
}

// Transformer turns raw text into a feature vector.
type Transformer interface {
	Transform(text string) (SparseVector, error)
	NumFeatures() int
}

// Classifier maps a feature vector to one of Classes().
type Classifier interface {
	Predict(x SparseVector) (int, error)
	Classes() []int
}

// MarginScorer is implemented by classifiers that expose a per-class
// decision function. Binary models return a single margin.
type MarginScorer interface {
	DecisionFunction(x SparseVector) ([]float64, error)
}

// Decoder maps encoded labels back to category names.
type Decoder interface {
	InverseTransform(label int) (string, error)
	Labels() []string
}

func checkDim(x SparseVector, want int) error {
	if x.Dim != want {
		return fmt.Errorf("feature dimension mismatch: got %d, model expects %d", x.Dim, want)
	}
	return nil
}
