// Package inference owns the loaded model bundle and serves predictions
// from it.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"newsclf/config"
	"newsclf/ml"
)

// FallbackConfidence is reported when the classifier has no decision
// function. It is a fixed placeholder, not a calibrated probability.
const FallbackConfidence = 0.8

// Prediction is the result of classifying one text.
type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// HealthStatus reports per-artifact load state of the serving bundle.
type HealthStatus struct {
	Status  string          `json:"status"`
	Models  map[string]bool `json:"models"`
	Message string          `json:"message"`
	Version uint64          `json:"version"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Service holds the current bundle behind an atomic pointer. Predict reads a
// single snapshot, so a concurrent reload is never observed half-applied.
type Service struct {
	cfg config.ModelsConfig
	log *zap.Logger

	bundle atomic.Pointer[Bundle]

	// loadMu serializes loads; version is only touched under it.
	loadMu  sync.Mutex
	version uint64

	subsMu sync.RWMutex
	subs   []func(Event)

	debounce time.Duration
}

// NewService returns a service with an empty bundle. Call LoadModels to
// populate it.
func NewService(cfg config.ModelsConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		cfg:      cfg,
		log:      log.Named("inference"),
		debounce: 500 * time.Millisecond,
	}
	s.bundle.Store(&Bundle{})
	return s
}

// Snapshot returns the currently published bundle. Callers must not modify it.
func (s *Service) Snapshot() *Bundle {
	return s.bundle.Load()
}

// ModelsLoaded reports whether all three artifacts are in service.
func (s *Service) ModelsLoaded() bool {
	return s.bundle.Load().Ready()
}

// LoadModels reads the three artifacts from the model directory and
// publishes a new bundle. A missing file is logged and the previous value for
// that artifact is kept. A file that exists but cannot be decoded stops the
// pass: artifacts already re-read are still published, the failed one and
// those after it keep their previous value, and ErrLoadFailed is returned.
func (s *Service) LoadModels() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	_, err := s.load()
	return err
}

// load runs one pass over the artifacts and publishes the merged bundle.
// loadMu must be held.
func (s *Service) load() (*Bundle, error) {
	cur := s.bundle.Load()
	next := &Bundle{
		Transformer: cur.Transformer,
		Classifier:  cur.Classifier,
		Decoder:     cur.Decoder,
	}
	transformerPath, classifierPath, decoderPath := s.cfg.ArtifactPaths()

	loadErr := s.loadArtifact(ArtifactClassifier, classifierPath, func(path string) error {
		c, err := ml.LoadClassifier(path)
		if err == nil {
			next.Classifier = c
		}
		return err
	})
	if loadErr == nil {
		loadErr = s.loadArtifact(ArtifactTransformer, transformerPath, func(path string) error {
			t, err := ml.LoadTransformer(path)
			if err == nil {
				next.Transformer = t
			}
			return err
		})
	}
	if loadErr == nil {
		loadErr = s.loadArtifact(ArtifactDecoder, decoderPath, func(path string) error {
			d, err := ml.LoadDecoder(path)
			if err == nil {
				next.Decoder = d
			}
			return err
		})
	}

	if err := s.store(next); err != nil {
		return cur, err
	}
	return next, loadErr
}

// store stamps next with a fresh version and cache and makes it the serving
// bundle. loadMu must be held; next must not be shared yet.
func (s *Service) store(next *Bundle) error {
	if s.cfg.CacheSize > 0 {
		cache, err := lru.New[string, Prediction](s.cfg.CacheSize)
		if err != nil {
			return fmt.Errorf("%w: prediction cache: %w", ErrLoadFailed, err)
		}
		next.cache = cache
	}

	s.version++
	next.Version = s.version
	next.LoadedAt = time.Now()
	s.bundle.Store(next)

	s.log.Info("Model bundle published",
		zap.Uint64("version", next.Version),
		zap.Bool("ready", next.Ready()),
	)
	return nil
}

func (s *Service) loadArtifact(name, path string, load func(string) error) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Error("Model artifact not found", zap.String("artifact", name), zap.String("path", path))
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, name, err)
	}
	if err := load(path); err != nil {
		s.log.Error("Error loading model artifact", zap.String("artifact", name), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, name, err)
	}
	s.log.Info("Model artifact loaded", zap.String("artifact", name), zap.String("path", path))
	return nil
}

// Reload re-reads the model directory and notifies subscribers of the
// outcome. The event describes the bundle this reload published and is
// delivered before the next load can start, so subscribers see versions in
// order.
func (s *Service) Reload() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	b, err := s.load()
	ev := Event{
		Type:    EventReloaded,
		Version: b.Version,
		Health:  healthOf(b),
		Time:    time.Now().UTC(),
	}
	if err != nil {
		ev.Type = EventReloadFailed
		ev.Error = err.Error()
		s.log.Error("Error reloading models", zap.Error(err))
	}
	s.publish(ev)
	return err
}

// Health reports which artifacts are loaded. It has no side effects.
func (s *Service) Health() HealthStatus {
	return healthOf(s.bundle.Load())
}

func healthOf(b *Bundle) HealthStatus {
	h := HealthStatus{
		Status:  StatusUnhealthy,
		Models:  b.artifacts(),
		Message: "Some models failed to load",
		Version: b.Version,
	}
	if b.Ready() {
		h.Status = StatusHealthy
		h.Message = "All models loaded successfully"
	}
	return h
}

// Predict classifies text with the current bundle.
func (s *Service) Predict(ctx context.Context, text string) (Prediction, error) {
	b := s.bundle.Load()
	if !b.Ready() {
		return Prediction{}, ErrModelsNotReady
	}
	key := strings.TrimSpace(text)
	if key == "" {
		return Prediction{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	if p, ok := b.cached(key); ok {
		s.log.Debug("Prediction cache hit", zap.String("category", p.Category))
		return p, nil
	}

	p, err := predict(b, text)
	if err != nil {
		s.log.Error("Prediction error", zap.Error(err))
		return Prediction{}, err
	}
	b.remember(key, p)

	s.log.Info("Prediction successful",
		zap.String("category", p.Category),
		zap.Float64("confidence", p.Confidence),
		zap.Uint64("version", b.Version),
	)
	return p, nil
}

func predict(b *Bundle, text string) (Prediction, error) {
	x, err := b.Transformer.Transform(text)
	if err != nil {
		return Prediction{}, failed("transform", err)
	}
	label, err := b.Classifier.Predict(x)
	if err != nil {
		return Prediction{}, failed("classify", err)
	}
	confidence, err := Confidence(b.Classifier, x)
	if err != nil {
		return Prediction{}, failed("confidence", err)
	}
	category, err := b.Decoder.InverseTransform(label)
	if err != nil {
		return Prediction{}, failed("decode", err)
	}
	return Prediction{Category: category, Confidence: confidence}, nil
}

// Confidence squashes the largest absolute margin through a logistic. A
// classifier without a decision function gets FallbackConfidence; an error
// from a decision function that does exist is returned, not masked.
func Confidence(c ml.Classifier, x ml.SparseVector) (float64, error) {
	scorer, ok := c.(ml.MarginScorer)
	if !ok {
		return FallbackConfidence, nil
	}
	margins, err := scorer.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if len(margins) == 0 {
		return 0, errors.New("decision function returned no margins")
	}
	var maxAbs float64
	for _, m := range margins {
		maxAbs = math.Max(maxAbs, math.Abs(m))
	}
	return 1 / (1 + math.Exp(-maxAbs)), nil
}
