package inference

import "errors"

var (
	ErrModelsNotReady   = errors.New("models not ready")
	ErrInvalidInput     = errors.New("text cannot be empty")
	ErrPredictionFailed = errors.New("prediction failed")
	ErrLoadFailed       = errors.New("model load failed")
)

// PredictionError records which pipeline stage failed. It matches
// ErrPredictionFailed under errors.Is and unwraps to the cause.
type PredictionError struct {
	Stage string
	Err   error
}

func (e *PredictionError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *PredictionError) Is(target error) bool {
	return target == ErrPredictionFailed
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

func failed(stage string, err error) error {
	return &PredictionError{Stage: stage, Err: err}
}
