package ocr

import (
	"context"
	"errors"
	"fmt"

	"docintel/internal/domain"
)

// EngineError reports a failed call to one OCR engine.
type EngineError struct {
	Path   domain.EngineKind
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s engine %s failed: %v", e.Path, e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError wraps err for the given path and engine. A deadline
// exceeded error is additionally tagged with domain.ErrEngineTimeout.
func NewEngineError(path domain.EngineKind, engine string, err error) *EngineError {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrEngineTimeout) {
		err = fmt.Errorf("%w: %w", domain.ErrEngineTimeout, err)
	}
	return &EngineError{Path: path, Engine: engine, Err: err}
}
