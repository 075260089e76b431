package ml

import (
	"errors"
	"fmt"
	"math"
)

// Classifier kinds as stored in the artifact's kind field.
const (
	KindLinearSVM       = "linear_svm"
	KindNearestCentroid = "nearest_centroid"
)

// LinearSVM is a one-vs-rest linear model. With two classes it stores a
// single weight row and a positive margin selects classes[1].
type LinearSVM struct {
	classes   []int
	coef      [][]float64
	intercept []float64
	features  int
}

// NewLinearSVM validates coef and intercept shapes against classes.
func NewLinearSVM(classes []int, coef [][]float64, intercept []float64) (*LinearSVM, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("linear_svm: need at least 2 classes, got %d", len(classes))
	}
	rows := len(classes)
	if rows == 2 {
		rows = 1
	}
	if len(coef) != rows {
		return nil, fmt.Errorf("linear_svm: expected %d coef rows for %d classes, got %d", rows, len(classes), len(coef))
	}
	if len(intercept) != rows {
		return nil, fmt.Errorf("linear_svm: expected %d intercepts, got %d", rows, len(intercept))
	}
	features := len(coef[0])
	if features == 0 {
		return nil, errors.New("linear_svm: empty coef row")
	}
	for i, row := range coef {
		if len(row) != features {
			return nil, fmt.Errorf("linear_svm: coef row %d has %d features, want %d", i, len(row), features)
		}
	}

	return &LinearSVM{
		classes:   classes,
		coef:      coef,
		intercept: intercept,
		features:  features,
	}, nil
}

func (m *LinearSVM) Classes() []int {
	return m.classes
}

func (m *LinearSVM) NumFeatures() int {
	return m.features
}

func (m *LinearSVM) DecisionFunction(x SparseVector) ([]float64, error) {
	if err := checkDim(x, m.features); err != nil {
		return nil, err
	}
	scores := make([]float64, len(m.coef))
	for i, row := range m.coef {
		scores[i] = x.Dot(row) + m.intercept[i]
	}
	return scores, nil
}

func (m *LinearSVM) Predict(x SparseVector) (int, error) {
	scores, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if len(scores) == 1 {
		if scores[0] > 0 {
			return m.classes[1], nil
		}
		return m.classes[0], nil
	}
	return m.classes[argmax(scores)], nil
}

// NearestCentroid assigns the class whose centroid is closest in euclidean
// distance. It has no decision function.
type NearestCentroid struct {
	classes   []int
	centroids [][]float64
	sqNorms   []float64
	features  int
}

// NewNearestCentroid validates one centroid per class.
func NewNearestCentroid(classes []int, centroids [][]float64) (*NearestCentroid, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("nearest_centroid: need at least 2 classes, got %d", len(classes))
	}
	if len(centroids) != len(classes) {
		return nil, fmt.Errorf("nearest_centroid: %d centroids for %d classes", len(centroids), len(classes))
	}
	features := len(centroids[0])
	if features == 0 {
		return nil, errors.New("nearest_centroid: empty centroid")
	}
	sqNorms := make([]float64, len(centroids))
	for i, c := range centroids {
		if len(c) != features {
			return nil, fmt.Errorf("nearest_centroid: centroid %d has %d features, want %d", i, len(c), features)
		}
		for _, x := range c {
			sqNorms[i] += x * x
		}
	}

	return &NearestCentroid{
		classes:   classes,
		centroids: centroids,
		sqNorms:   sqNorms,
		features:  features,
	}, nil
}

func (m *NearestCentroid) Classes() []int {
	return m.classes
}

func (m *NearestCentroid) NumFeatures() int {
	return m.features
}

func (m *NearestCentroid) Predict(x SparseVector) (int, error) {
	if err := checkDim(x, m.features); err != nil {
		return 0, err
	}
	xNorm := x.SquaredNorm()
	best, bestDist := 0, math.Inf(1)
	for i, c := range m.centroids {
		dist := m.sqNorms[i] - 2*x.Dot(c) + xNorm
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return m.classes[best], nil
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
