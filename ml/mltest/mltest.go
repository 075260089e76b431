// Package mltest provides a small hand-built model for tests: three news
// categories over an English and Nepali vocabulary.
package mltest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"newsclf/ml"
)

const (
	TransformerFile = "tfidf_vectorizer.json"
	ClassifierFile  = "svm_model.json"
	DecoderFile     = "label_encoder.json"
)

// Labels in encoder order.
var Labels = []string{"Economy", "Politics", "Sports"}

// Sample texts that the fixture model assigns to each label.
const (
	EconomyText  = "The bank said the market and the economy grew"
	PoliticsText = "The minister told the government the election is near"
	SportsText   = "A late goal won the match for the sports club"
	NepaliText   = "नेपालमा आजको दिन विभिन्न क्षेत्रमा विकासको लागि काम गरिरहेका छन्"
)

var vocabulary = map[string]int{
	"economy":    0,
	"market":     1,
	"bank":       2,
	"election":   3,
	"government": 4,
	"minister":   5,
	"sports":     6,
	"match":      7,
	"goal":       8,
	"नेपालमा":    9,
	"विकासको":    10,
	"सरकारले":    11,
	"खेलकुद":     12,
}

const numFeatures = 13

func Transformer() *ml.TfidfVectorizer {
	idf := make([]float64, numFeatures)
	for i := range idf {
		idf[i] = 1
	}
	v, err := ml.NewTfidfVectorizer(vocabulary, idf, ml.DefaultVectorizerOptions())
	if err != nil {
		panic(err)
	}
	return v
}

func rows() [][]float64 {
	economy := make([]float64, numFeatures)
	politics := make([]float64, numFeatures)
	sports := make([]float64, numFeatures)
	for _, i := range []int{0, 1, 2, 10} {
		economy[i] = 1
	}
	for _, i := range []int{3, 4, 5, 11} {
		politics[i] = 1
	}
	politics[9] = 0.4
	for _, i := range []int{6, 7, 8, 12} {
		sports[i] = 1
	}
	return [][]float64{economy, politics, sports}
}

func LinearSVM() *ml.LinearSVM {
	m, err := ml.NewLinearSVM([]int{0, 1, 2}, rows(), []float64{-0.1, -0.1, -0.1})
	if err != nil {
		panic(err)
	}
	return m
}

func NearestCentroid() *ml.NearestCentroid {
	m, err := ml.NewNearestCentroid([]int{0, 1, 2}, rows())
	if err != nil {
		panic(err)
	}
	return m
}

func Decoder() *ml.LabelEncoder {
	e, err := ml.NewLabelEncoder(Labels)
	if err != nil {
		panic(err)
	}
	return e
}

// WriteBundle writes the transformer, a linear SVM and the decoder to dir.
func WriteBundle(t testing.TB, dir string) {
	t.Helper()
	WriteTransformer(t, dir)
	require.NoError(t, LinearSVM().Save(filepath.Join(dir, ClassifierFile)))
	WriteDecoder(t, dir)
}

func WriteTransformer(t testing.TB, dir string) {
	t.Helper()
	require.NoError(t, Transformer().Save(filepath.Join(dir, TransformerFile)))
}

func WriteDecoder(t testing.TB, dir string) {
	t.Helper()
	require.NoError(t, Decoder().Save(filepath.Join(dir, DecoderFile)))
}

// WriteCorrupt replaces name in dir with bytes that are not valid JSON.
func WriteCorrupt(t testing.TB, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o600))
}
