package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(dim int, entries map[int]float64) SparseVector {
	x := SparseVector{Dim: dim}
	for i := 0; i < dim; i++ {
		if v, ok := entries[i]; ok {
			x.Indices = append(x.Indices, i)
			x.Values = append(x.Values, v)
		}
	}
	return x
}

func TestLinearSVM(t *testing.T) {
	coef := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	m, err := NewLinearSVM([]int{0, 1, 2}, coef, []float64{0, 0.5, 0})
	require.NoError(t, err)

	t.Run("decision function is one score per class", func(t *testing.T) {
		scores, err := m.DecisionFunction(vec(3, map[int]float64{0: 2, 2: 1}))

		require.NoError(t, err)
		assert.Equal(t, []float64{2, 0.5, 1}, scores)
	})

	t.Run("predicts argmax class", func(t *testing.T) {
		label, err := m.Predict(vec(3, map[int]float64{2: 3}))

		require.NoError(t, err)
		assert.Equal(t, 2, label)
	})

	t.Run("rejects mismatched dimension", func(t *testing.T) {
		_, err := m.Predict(vec(4, nil))

		assert.Error(t, err)
	})

	t.Run("satisfies MarginScorer", func(t *testing.T) {
		var c Classifier = m
		_, ok := c.(MarginScorer)
		assert.True(t, ok)
	})
}

func TestLinearSVM_Binary(t *testing.T) {
	m, err := NewLinearSVM([]int{3, 7}, [][]float64{{1, -1}}, []float64{0})
	require.NoError(t, err)

	label, err := m.Predict(vec(2, map[int]float64{0: 1}))
	require.NoError(t, err)
	assert.Equal(t, 7, label)

	label, err = m.Predict(vec(2, map[int]float64{1: 1}))
	require.NoError(t, err)
	assert.Equal(t, 3, label)

	scores, err := m.DecisionFunction(vec(2, map[int]float64{1: 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1}, scores)
}

func TestNewLinearSVM_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		classes   []int
		coef      [][]float64
		intercept []float64
	}{
		{"single class", []int{0}, [][]float64{{1}}, []float64{0}},
		{"row count", []int{0, 1, 2}, [][]float64{{1}}, []float64{0}},
		{"intercept count", []int{0, 1, 2}, [][]float64{{1}, {1}, {1}}, []float64{0}},
		{"ragged rows", []int{0, 1, 2}, [][]float64{{1}, {1, 2}, {1}}, []float64{0, 0, 0}},
		{"empty row", []int{0, 1}, [][]float64{{}}, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinearSVM(tt.classes, tt.coef, tt.intercept)
			assert.Error(t, err)
		})
	}
}

func TestNearestCentroid(t *testing.T) {
	m, err := NewNearestCentroid([]int{0, 1}, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)

	label, err := m.Predict(vec(2, map[int]float64{0: 0.9, 1: 0.1}))
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	label, err = m.Predict(vec(2, map[int]float64{1: 0.7}))
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	var c Classifier = m
	_, ok := c.(MarginScorer)
	assert.False(t, ok, "nearest centroid must not expose margins")

	_, err = NewNearestCentroid([]int{0, 1}, [][]float64{{1, 0}})
	assert.Error(t, err)
}

func TestLabelEncoder(t *testing.T) {
	e, err := NewLabelEncoder([]string{"Economy", "Politics"})
	require.NoError(t, err)

	got, err := e.InverseTransform(1)
	require.NoError(t, err)
	assert.Equal(t, "Politics", got)

	_, err = e.InverseTransform(2)
	assert.Error(t, err)
	_, err = e.InverseTransform(-1)
	assert.Error(t, err)

	_, err = NewLabelEncoder([]string{"a", "a"})
	assert.Error(t, err)
	_, err = NewLabelEncoder(nil)
	assert.Error(t, err)
}
