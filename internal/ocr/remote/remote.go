// Package remote implements port.OCREngine against an HTTP OCR sidecar
// (for example an EasyOCR service) that accepts a base64 PNG and returns
// pixel boxes with confidences.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"docintel/internal/config"
	"docintel/internal/domain"
	"docintel/internal/ocr"
	"docintel/internal/port"
)

func init() {
	ocr.RegisterEngine("remote", func(_ domain.EngineKind, cfg config.OCREngineConfig) (port.OCREngine, error) {
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("remote ocr engine: endpoint is required")
		}
		return New(cfg), nil
	})
}

// Engine calls a remote OCR endpoint.
type Engine struct {
	endpoint  string
	languages []string
	client    *http.Client
}

// New creates a remote engine from engine config.
func New(cfg config.OCREngineConfig) *Engine {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Engine{
		endpoint:  cfg.Endpoint,
		languages: cfg.Languages,
		client:    &http.Client{Timeout: timeout},
	}
}

func (e *Engine) Name() string { return "remote" }

type recognizeRequest struct {
	Image     string   `json:"image"`
	Languages []string `json:"languages,omitempty"`
}

type apiFragment struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
}

type apiResponse struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Fragments []apiFragment `json:"fragments"`
}

// Recognize posts img to the sidecar and converts its pixel boxes to
// page-normalized fragments.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]domain.Fragment, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page image: %w", err)
	}

	bodyBytes, err := json.Marshal(recognizeRequest{
		Image:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		Languages: e.languages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("OCR service error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusServiceUnavailable {
			return nil, fmt.Errorf("%w: %w", domain.ErrOCRUnavailable, baseErr)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, img.Bounds())
}

func parseResponse(body []byte, bounds image.Rectangle) ([]domain.Fragment, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	// The service may report the size it actually decoded; fall back to ours.
	w, h := float64(resp.Width), float64(resp.Height)
	if w <= 0 || h <= 0 {
		w, h = float64(bounds.Dx()), float64(bounds.Dy())
	}

	frags := make([]domain.Fragment, 0, len(resp.Fragments))
	for _, f := range resp.Fragments {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		conf := f.Confidence
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		frags = append(frags, domain.Fragment{
			Text:       text,
			Box:        domain.BBox{X: f.X / w, Y: f.Y / h, Width: f.Width / w, Height: f.Height / h},
			Confidence: conf,
		})
	}
	return frags, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
