// Package ocr runs page images through a fast OCR engine and escalates to an
// accurate engine when the fast output does not meet the quality policy.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"docintel/internal/domain"
	"docintel/internal/port"
)

// Preparer normalizes a page image for one OCR path.
type Preparer interface {
	Prepare(path domain.EngineKind, img image.Image) (image.Image, error)
}

// OrchestratorConfig holds the acceptance policy and per-call engine timeouts.
// A zero timeout leaves the engine call unbounded.
type OrchestratorConfig struct {
	Policy          Policy
	FastTimeout     time.Duration
	AccurateTimeout time.Duration
}

// PageExtraction is the outcome of one page run.
type PageExtraction struct {
	PageIndex  int
	Fragments  []domain.Fragment
	Quality    domain.QualityScore
	EngineUsed domain.EngineKind
	// FastQuality is set when the fast engine produced output, accepted or not.
	FastQuality *domain.QualityScore
	// FastErr is the fast engine failure that caused the fallback, if any.
	FastErr error
}

type state int

const (
	stateTryFast state = iota
	stateTryAccurate
	stateAccept
)

// Orchestrator implements the two-step fallback: TryFast, then Accept or
// TryAccurate, then Accept. No engine runs more than once per page.
type Orchestrator struct {
	prep     Preparer
	fast     *Pool
	accurate *Pool
	cfg      OrchestratorConfig
}

// NewOrchestrator creates an Orchestrator over the given engine pools.
func NewOrchestrator(prep Preparer, fast, accurate *Pool, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{prep: prep, fast: fast, accurate: accurate, cfg: cfg}
}

// Extract recognizes one page. A fast engine failure falls back to the
// accurate engine. An accurate engine failure fails the page with
// domain.ErrOCRUnavailable. Malformed images fail with domain.ErrInvalidImage.
// Cancellation of ctx is honoured before each engine call, never during one.
func (o *Orchestrator) Extract(ctx context.Context, pageIndex int, img image.Image) (*PageExtraction, error) {
	out := &PageExtraction{PageIndex: pageIndex}
	st := stateTryFast
	for {
		switch st {
		case stateTryFast:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			frags, err := o.run(ctx, o.fast, o.cfg.FastTimeout, pageIndex, img)
			if errors.Is(err, domain.ErrInvalidImage) {
				return nil, err
			}
			if err != nil {
				log.Printf("ocr.Orchestrator.Extract: page %d fast path failed, falling back: %v", pageIndex, err)
				out.FastErr = err
				st = stateTryAccurate
				continue
			}
			q := Score(frags, o.cfg.Policy.LowConfidenceFloor)
			out.FastQuality = &q
			if !o.cfg.Policy.Accept(q) {
				log.Printf("ocr.Orchestrator.Extract: page %d fast output rejected (mean=%.2f low=%.2f density=%.1f)",
					pageIndex, q.MeanConfidence, q.LowConfidenceFraction, q.Density)
				st = stateTryAccurate
				continue
			}
			out.Fragments, out.Quality, out.EngineUsed = frags, q, domain.EngineFast
			st = stateAccept

		case stateTryAccurate:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			frags, err := o.run(ctx, o.accurate, o.cfg.AccurateTimeout, pageIndex, img)
			if errors.Is(err, domain.ErrInvalidImage) {
				return nil, err
			}
			if err != nil {
				return nil, fmt.Errorf("%w: page %d: %w", domain.ErrOCRUnavailable, pageIndex, err)
			}
			out.Fragments = frags
			out.Quality = Score(frags, o.cfg.Policy.LowConfidenceFloor)
			out.EngineUsed = domain.EngineAccurate
			st = stateAccept

		case stateAccept:
			return out, nil
		}
	}
}

// run preprocesses img for the pool's path and calls one engine handle. The
// engine call is detached from ctx cancellation and bounded by timeout only.
func (o *Orchestrator) run(ctx context.Context, pool *Pool, timeout time.Duration, pageIndex int, img image.Image) ([]domain.Fragment, error) {
	prepared, err := o.prep.Prepare(pool.Path(), img)
	if err != nil {
		return nil, err
	}

	var frags []domain.Fragment
	err = pool.With(ctx, func(e port.OCREngine) error {
		callCtx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, timeout)
			defer cancel()
		}
		got, recErr := e.Recognize(callCtx, prepared)
		if recErr != nil {
			return NewEngineError(pool.Path(), e.Name(), recErr)
		}
		frags = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	stamped := make([]domain.Fragment, len(frags))
	for i, f := range frags {
		f.Source = pool.Path()
		f.PageIndex = pageIndex
		stamped[i] = f
	}
	return stamped, nil
}
