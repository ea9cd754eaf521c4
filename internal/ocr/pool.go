package ocr

import (
	"context"
	"fmt"

	"docintel/internal/domain"
	"docintel/internal/port"
)

// Pool hands out OCR engine handles for exclusive use. Engines that are not
// safe for concurrent calls get one handle per worker.
type Pool struct {
	path    domain.EngineKind
	name    string
	handles chan port.OCREngine
}

// NewPool creates a pool over the given engines. At least one engine is required.
func NewPool(path domain.EngineKind, engines ...port.OCREngine) (*Pool, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("ocr pool %s: no engines", path)
	}
	p := &Pool{
		path:    path,
		name:    engines[0].Name(),
		handles: make(chan port.OCREngine, len(engines)),
	}
	for _, e := range engines {
		p.handles <- e
	}
	return p, nil
}

// Path returns the OCR path served by the pool.
func (p *Pool) Path() domain.EngineKind { return p.path }

// Name returns the engine name of the pool's handles.
func (p *Pool) Name() string { return p.name }

// Size returns the number of handles the pool owns.
func (p *Pool) Size() int { return cap(p.handles) }

// Acquire blocks until a handle is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (port.OCREngine, error) {
	select {
	case e := <-p.handles:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a handle to the pool.
func (p *Pool) Release(e port.OCREngine) {
	p.handles <- e
}

// With checks out a handle, runs fn and releases the handle whether fn
// succeeds, fails or panics.
func (p *Pool) With(ctx context.Context, fn func(port.OCREngine) error) error {
	e, err := p.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire %s engine: %w", p.path, err)
	}
	defer p.Release(e)
	return fn(e)
}
