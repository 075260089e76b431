package inference

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"newsclf/ml"
)

// Artifact names as reported by health checks.
const (
	ArtifactClassifier  = "svm_model"
	ArtifactTransformer = "tfidf_vectorizer"
	ArtifactDecoder     = "label_encoder"
)

// Bundle is one published model triple. It is never mutated after Store;
// reload builds a new Bundle. The cache is the only mutable part and is
// internally synchronized.
type Bundle struct {
	Transformer ml.Transformer
	Classifier  ml.Classifier
	Decoder     ml.Decoder

	Version  uint64
	LoadedAt time.Time

	cache *lru.Cache[string, Prediction]
}

// Ready reports whether all three artifacts are present.
func (b *Bundle) Ready() bool {
	return b != nil && b.Transformer != nil && b.Classifier != nil && b.Decoder != nil
}

func (b *Bundle) artifacts() map[string]bool {
	return map[string]bool{
		ArtifactClassifier:  b.Classifier != nil,
		ArtifactTransformer: b.Transformer != nil,
		ArtifactDecoder:     b.Decoder != nil,
	}
}

func (b *Bundle) cached(key string) (Prediction, bool) {
	if b.cache == nil {
		return Prediction{}, false
	}
	return b.cache.Get(key)
}

func (b *Bundle) remember(key string, p Prediction) {
	if b.cache != nil {
		b.cache.Add(key, p)
	}
}
