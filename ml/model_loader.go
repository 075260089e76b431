package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

type vectorizerFile struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	NgramRange   [2]int         `json:"ngram_range"`
	SublinearTF  bool           `json:"sublinear_tf"`
	Norm         *string        `json:"norm,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
}

type classifierFile struct {
	Kind      string      `json:"kind"`
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`
	Centroids [][]float64 `json:"centroids,omitempty"`
}

type labelEncoderFile struct {
	Classes []string `json:"classes"`
}

// LoadTransformer reads a tf-idf vectorizer artifact.
func LoadTransformer(path string) (*TfidfVectorizer, error) {
	var f vectorizerFile
	if err := readJSON(path, &f); err != nil {
		return nil, err
	}
	opts := DefaultVectorizerOptions()
	if f.Lowercase != nil {
		opts.Lowercase = *f.Lowercase
	}
	if f.NgramRange != [2]int{} {
		opts.NgramRange = f.NgramRange
	}
	if f.Norm != nil {
		opts.Norm = *f.Norm
	}
	if f.TokenPattern != "" {
		opts.TokenPattern = f.TokenPattern
	}
	opts.SublinearTF = f.SublinearTF

	v, err := NewTfidfVectorizer(f.Vocabulary, f.IDF, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadClassifier reads a classifier artifact; the kind field selects the model.
func LoadClassifier(path string) (Classifier, error) {
	var f classifierFile
	if err := readJSON(path, &f); err != nil {
		return nil, err
	}

	var (
		c   Classifier
		err error
	)
	switch f.Kind {
	case KindLinearSVM, "":
		c, err = NewLinearSVM(f.Classes, f.Coef, f.Intercept)
	case KindNearestCentroid:
		c, err = NewNearestCentroid(f.Classes, f.Centroids)
	default:
		err = fmt.Errorf("unsupported classifier kind %q", f.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadDecoder reads a label encoder artifact.
func LoadDecoder(path string) (*LabelEncoder, error) {
	var f labelEncoderFile
	if err := readJSON(path, &f); err != nil {
		return nil, err
	}
	e, err := NewLabelEncoder(f.Classes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

func (v *TfidfVectorizer) Save(path string) error {
	lowercase := v.opts.Lowercase
	normKind := v.opts.Norm
	return writeJSON(path, vectorizerFile{
		Vocabulary:   v.vocabulary,
		IDF:          v.idf,
		Lowercase:    &lowercase,
		NgramRange:   v.opts.NgramRange,
		SublinearTF:  v.opts.SublinearTF,
		Norm:         &normKind,
		TokenPattern: v.opts.TokenPattern,
	})
}

func (m *LinearSVM) Save(path string) error {
	return writeJSON(path, classifierFile{
		Kind:      KindLinearSVM,
		Classes:   m.classes,
		Coef:      m.coef,
		Intercept: m.intercept,
	})
}

func (m *NearestCentroid) Save(path string) error {
	return writeJSON(path, classifierFile{
		Kind:      KindNearestCentroid,
		Classes:   m.classes,
		Centroids: m.centroids,
	})
}

func (e *LabelEncoder) Save(path string) error {
	return writeJSON(path, labelEncoderFile{Classes: e.classes})
}

func readJSON(path string, v interface{}) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
