package ocr

import (
	"fmt"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/port"
)

// EngineFactory creates one engine handle for an OCR path.
type EngineFactory func(path domain.EngineKind, cfg config.OCREngineConfig) (port.OCREngine, error)

// registry of engine factories, populated by init() in each engine package.
var engines = map[string]EngineFactory{}

// RegisterEngine registers an engine factory by name.
func RegisterEngine(name string, factory EngineFactory) {
	engines[name] = factory
}

// NewEngine creates an engine from config using the registered factory.
func NewEngine(path domain.EngineKind, cfg config.OCREngineConfig) (port.OCREngine, error) {
	factory, ok := engines[cfg.Engine]
	if !ok {
		return nil, fmt.Errorf("unknown ocr engine: %s", cfg.Engine)
	}
	return factory(path, cfg)
}

// NewPoolFromConfig creates cfg.PoolSize engine handles for path.
func NewPoolFromConfig(path domain.EngineKind, cfg config.OCREngineConfig) (*Pool, error) {
	size := cfg.PoolSize
	if size <= 0 {
		size = 1
	}
	handles := make([]port.OCREngine, 0, size)
	for i := 0; i < size; i++ {
		e, err := NewEngine(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s engine: %w", path, err)
		}
		handles = append(handles, e)
	}
	return NewPool(path, handles...)
}
