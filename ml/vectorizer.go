package ml

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultTokenPattern matches runs of two or more letters, combining marks,
// digits or underscores. Marks are included so Devanagari vowel signs stay
// inside their word.
const DefaultTokenPattern = `[\p{L}\p{M}\p{N}_]{2,}`

// Row normalizations.
const (
	NormL2   = "l2"
	NormL1   = "l1"
	NormNone = ""
)

// VectorizerOptions mirrors the analyzer settings saved with a fitted
// vectorizer.
type VectorizerOptions struct {
	Lowercase    bool
	NgramRange   [2]int
	SublinearTF  bool
	Norm         string
	TokenPattern string
}

// DefaultVectorizerOptions returns unigram, lowercased, l2-normalized options.
func DefaultVectorizerOptions() VectorizerOptions {
	return VectorizerOptions{
		Lowercase:    true,
		NgramRange:   [2]int{1, 1},
		Norm:         NormL2,
		TokenPattern: DefaultTokenPattern,
	}
}

// TfidfVectorizer applies a fitted vocabulary and idf weights to a single
// document. It is read-only after construction and safe for concurrent use.
type TfidfVectorizer struct {
	vocabulary map[string]int
	idf        []float64
	opts       VectorizerOptions
	token      *regexp.Regexp
}

// NewTfidfVectorizer validates a fitted vocabulary and idf vector.
func NewTfidfVectorizer(vocabulary map[string]int, idf []float64, opts VectorizerOptions) (*TfidfVectorizer, error) {
	if len(vocabulary) == 0 {
		return nil, errors.New("tfidf: empty vocabulary")
	}
	if len(idf) == 0 {
		return nil, errors.New("tfidf: empty idf")
	}
	for term, idx := range vocabulary {
		if idx < 0 || idx >= len(idf) {
			return nil, fmt.Errorf("tfidf: term %q index %d out of range [0,%d)", term, idx, len(idf))
		}
	}
	if opts.NgramRange == [2]int{} {
		opts.NgramRange = [2]int{1, 1}
	}
	if opts.NgramRange[0] < 1 || opts.NgramRange[1] < opts.NgramRange[0] {
		return nil, fmt.Errorf("tfidf: invalid ngram_range %v", opts.NgramRange)
	}
	switch opts.Norm {
	case NormL2, NormL1, NormNone:
	default:
		return nil, fmt.Errorf("tfidf: unsupported norm %q", opts.Norm)
	}
	if opts.TokenPattern == "" {
		opts.TokenPattern = DefaultTokenPattern
	}
	token, err := regexp.Compile(opts.TokenPattern)
	if err != nil {
		return nil, fmt.Errorf("tfidf: token_pattern: %w", err)
	}

	return &TfidfVectorizer{
		vocabulary: vocabulary,
		idf:        idf,
		opts:       opts,
		token:      token,
	}, nil
}

func (v *TfidfVectorizer) NumFeatures() int {
	return len(v.idf)
}

func (v *TfidfVectorizer) Options() VectorizerOptions {
	return v.opts
}

// Transform returns the tf-idf row for text. Terms outside the vocabulary are
// dropped; an all-unknown document yields an empty vector, not an error.
func (v *TfidfVectorizer) Transform(text string) (SparseVector, error) {
	counts := make(map[int]float64)
	for _, term := range v.analyze(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	out := SparseVector{
		Dim:     len(v.idf),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)

	for _, idx := range out.Indices {
		tf := counts[idx]
		if v.opts.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		out.Values = append(out.Values, tf*v.idf[idx])
	}

	normalize(out.Values, v.opts.Norm)
	return out, nil
}

// analyze normalizes text and produces the n-gram terms looked up in the
// vocabulary.
func (v *TfidfVectorizer) analyze(text string) []string {
	text = norm.NFC.String(text)
	if v.opts.Lowercase {
		// Casers keep state, so one per call.
		text = cases.Lower(language.Und).String(text)
	}
	tokens := v.token.FindAllString(text, -1)

	lo, hi := v.opts.NgramRange[0], v.opts.NgramRange[1]
	if lo == 1 && hi == 1 {
		return tokens
	}

	terms := make([]string, 0, len(tokens)*(hi-lo+1))
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func normalize(values []float64, kind string) {
	var total float64
	switch kind {
	case NormL2:
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case NormL1:
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
