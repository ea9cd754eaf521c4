// Package tesseract implements port.OCREngine on top of the Tesseract
// library through gosseract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/ocr"
	"docintel/internal/port"
)

func init() {
	ocr.RegisterEngine("tesseract", func(path domain.EngineKind, cfg config.OCREngineConfig) (port.OCREngine, error) {
		return New(ProfileFromConfig(path, cfg)), nil
	})
}

// Profile tunes one Tesseract engine.
type Profile struct {
	Languages   []string
	PageSegMode gosseract.PageSegMode
	Level       gosseract.PageIteratorLevel
}

// FastProfile reads the page as one uniform block and reports line boxes.
func FastProfile(langs []string) Profile {
	return Profile{Languages: langs, PageSegMode: gosseract.PSM_SINGLE_BLOCK, Level: gosseract.RIL_TEXTLINE}
}

// AccurateProfile runs full layout analysis and reports word boxes.
func AccurateProfile(langs []string) Profile {
	return Profile{Languages: langs, PageSegMode: gosseract.PSM_AUTO, Level: gosseract.RIL_WORD}
}

// ProfileFromConfig builds a profile for the given path from engine config.
func ProfileFromConfig(path domain.EngineKind, cfg config.OCREngineConfig) Profile {
	p := AccurateProfile(cfg.Languages)
	if path == domain.EngineFast {
		p = FastProfile(cfg.Languages)
	}
	if cfg.PageSegMode > 0 {
		p.PageSegMode = gosseract.PageSegMode(cfg.PageSegMode)
	}
	return p
}

// Engine runs one Tesseract client per call and at most one call at a time.
// A call abandoned on context expiry finishes in the background and keeps the
// engine busy until it does, so a pool of N engines never runs more than N
// Tesseract jobs.
type Engine struct {
	profile   Profile
	newClient func() *gosseract.Client
	run       func(data []byte, bounds image.Rectangle) ([]domain.Fragment, error)
	busy      chan struct{}
}

// New creates a Tesseract engine with the given profile.
func New(profile Profile) *Engine {
	e := &Engine{profile: profile, newClient: gosseract.NewClient, busy: make(chan struct{}, 1)}
	e.run = e.recognize
	return e
}

func (e *Engine) Name() string { return "tesseract" }

type result struct {
	frags []domain.Fragment
	err   error
}

// Recognize runs OCR over img and returns fragments in page-normalized coordinates.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]domain.Fragment, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	select {
	case e.busy <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	done := make(chan result, 1)
	go func() {
		defer func() { <-e.busy }()
		frags, err := e.run(buf.Bytes(), img.Bounds())
		done <- result{frags: frags, err: err}
	}()

	select {
	case r := <-done:
		return r.frags, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) recognize(data []byte, bounds image.Rectangle) ([]domain.Fragment, error) {
	c := e.newClient()
	defer c.Close()

	if len(e.profile.Languages) > 0 {
		if err := c.SetLanguage(e.profile.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(e.profile.PageSegMode); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := c.GetBoundingBoxes(e.profile.Level)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	return toFragments(boxes, bounds), nil
}

// toFragments converts pixel boxes to normalized fragments, dropping blank
// text. Boxes are relative to the encoded PNG, whose origin is always (0,0).
func toFragments(boxes []gosseract.BoundingBox, bounds image.Rectangle) []domain.Fragment {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	frags := make([]domain.Fragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		frags = append(frags, domain.Fragment{
			Text: text,
			Box: domain.BBox{
				X:      float64(b.Box.Min.X) / w,
				Y:      float64(b.Box.Min.Y) / h,
				Width:  float64(b.Box.Dx()) / w,
				Height: float64(b.Box.Dy()) / h,
			},
			Confidence: clampUnit(b.Confidence / 100),
		})
	}
	return frags
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
