package ocr_test

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docintel/internal/domain"
	"docintel/internal/ocr"
	"docintel/internal/preprocess"
	"docintel/mocks"
)

func page() image.Image {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// fragments builds n fragments of "word" at conf plus extra low-confidence ones.
func fragments(n int, conf float64, lowN int, lowConf float64) []domain.Fragment {
	var out []domain.Fragment
	for i := 0; i < n+lowN; i++ {
		c := conf
		if i >= n {
			c = lowConf
		}
		out = append(out, domain.Fragment{
			Text:       "word",
			Box:        domain.BBox{X: 0.1, Y: float64(i) * 0.04, Width: 0.2, Height: 0.03},
			Confidence: c,
		})
	}
	return out
}

func newEngine(name string) *mocks.MockOCREngine {
	e := new(mocks.MockOCREngine)
	e.On("Name").Return(name).Maybe()
	return e
}

func newOrchestrator(t *testing.T, fast, accurate *mocks.MockOCREngine, cfg ocr.OrchestratorConfig) *ocr.Orchestrator {
	t.Helper()
	fp, err := ocr.NewPool(domain.EngineFast, fast)
	require.NoError(t, err)
	ap, err := ocr.NewPool(domain.EngineAccurate, accurate)
	require.NoError(t, err)
	if cfg.Policy == (ocr.Policy{}) {
		cfg.Policy = ocr.DefaultPolicy()
	}
	return ocr.NewOrchestrator(preprocess.NewSelector(preprocess.DefaultParams()), fp, ap, cfg)
}

func TestOrchestrator_FastAccepted_AccurateNeverCalled(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	// 19 at 0.975 and 1 at 0.5: mean ~0.95, low fraction 0.05, density 80.
	fast.On("Recognize", mock.Anything, mock.Anything).Return(fragments(19, 0.975, 1, 0.5), nil)

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	out, err := o.Extract(context.Background(), 0, page())

	require.NoError(t, err)
	assert.Equal(t, domain.EngineFast, out.EngineUsed)
	assert.InDelta(t, 0.95, out.Quality.MeanConfidence, 0.01)
	assert.InDelta(t, 0.05, out.Quality.LowConfidenceFraction, 0.001)
	assert.Len(t, out.Fragments, 20)
	accurate.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestOrchestrator_LowConfidence_ReturnsAccurateOutput(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	fast.On("Recognize", mock.Anything, mock.Anything).Return(fragments(20, 0.5, 0, 0), nil)
	accurate.On("Recognize", mock.Anything, mock.Anything).Return([]domain.Fragment{
		{Text: "accurate text", Box: domain.BBox{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.05}, Confidence: 0.7},
	}, nil)

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	out, err := o.Extract(context.Background(), 3, page())

	require.NoError(t, err)
	assert.Equal(t, domain.EngineAccurate, out.EngineUsed)
	require.Len(t, out.Fragments, 1)
	assert.Equal(t, "accurate text", out.Fragments[0].Text)
	require.NotNil(t, out.FastQuality)
	assert.InDelta(t, 0.5, out.FastQuality.MeanConfidence, 0.001)
	fast.AssertNumberOfCalls(t, "Recognize", 1)
	accurate.AssertNumberOfCalls(t, "Recognize", 1)
}

func TestOrchestrator_EmptyFastOutput_FallsBackEvenIfAccurateSparse(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	fast.On("Recognize", mock.Anything, mock.Anything).Return([]domain.Fragment{}, nil)
	accurate.On("Recognize", mock.Anything, mock.Anything).Return([]domain.Fragment{
		{Text: "x", Box: domain.BBox{X: 0.5, Y: 0.5, Width: 0.01, Height: 0.01}, Confidence: 0.2},
	}, nil)

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	out, err := o.Extract(context.Background(), 0, page())

	require.NoError(t, err)
	assert.Equal(t, domain.EngineAccurate, out.EngineUsed)
	require.Len(t, out.Fragments, 1)
	assert.Equal(t, "x", out.Fragments[0].Text)
	require.NotNil(t, out.FastQuality)
	assert.Equal(t, 0.0, out.FastQuality.Density)
}

func TestOrchestrator_FastFails_FallsBack(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	fast.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("tesseract not installed"))
	accurate.On("Recognize", mock.Anything, mock.Anything).Return(fragments(2, 0.9, 0, 0), nil)

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	out, err := o.Extract(context.Background(), 0, page())

	require.NoError(t, err)
	assert.Equal(t, domain.EngineAccurate, out.EngineUsed)
	assert.Nil(t, out.FastQuality)
	var engErr *ocr.EngineError
	require.True(t, errors.As(out.FastErr, &engErr))
	assert.Equal(t, domain.EngineFast, engErr.Path)
	assert.Equal(t, "fast-stub", engErr.Engine)
}

func TestOrchestrator_AccurateFails_OCRUnavailable(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	fast.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	accurate.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("also down"))

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	out, err := o.Extract(context.Background(), 1, page())

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
	var engErr *ocr.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, domain.EngineAccurate, engErr.Path)
}

// slowEngine blocks until its call context ends.
type slowEngine struct{}

func (slowEngine) Name() string { return "slow" }

func (slowEngine) Recognize(ctx context.Context, _ image.Image) ([]domain.Fragment, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestOrchestrator_FastTimeout_FallsBack(t *testing.T) {
	fp, err := ocr.NewPool(domain.EngineFast, slowEngine{})
	require.NoError(t, err)
	accurate := newEngine("accurate-stub")
	accurate.On("Recognize", mock.Anything, mock.Anything).Return(fragments(1, 0.9, 0, 0), nil)
	ap, err := ocr.NewPool(domain.EngineAccurate, accurate)
	require.NoError(t, err)

	o := ocr.NewOrchestrator(preprocess.NewSelector(preprocess.DefaultParams()), fp, ap, ocr.OrchestratorConfig{
		Policy:      ocr.DefaultPolicy(),
		FastTimeout: 10 * time.Millisecond,
	})
	out, err := o.Extract(context.Background(), 0, page())

	require.NoError(t, err)
	assert.Equal(t, domain.EngineAccurate, out.EngineUsed)
	assert.ErrorIs(t, out.FastErr, domain.ErrEngineTimeout)
}

func TestOrchestrator_AccurateTimeout_FailsPage(t *testing.T) {
	fast := newEngine("fast-stub")
	fast.On("Recognize", mock.Anything, mock.Anything).Return([]domain.Fragment{}, nil)
	fp, err := ocr.NewPool(domain.EngineFast, fast)
	require.NoError(t, err)
	ap, err := ocr.NewPool(domain.EngineAccurate, slowEngine{})
	require.NoError(t, err)

	o := ocr.NewOrchestrator(preprocess.NewSelector(preprocess.DefaultParams()), fp, ap, ocr.OrchestratorConfig{
		Policy:          ocr.DefaultPolicy(),
		AccurateTimeout: 10 * time.Millisecond,
	})
	_, err = o.Extract(context.Background(), 0, page())

	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
	assert.ErrorIs(t, err, domain.ErrEngineTimeout)
}

func TestOrchestrator_InvalidImage(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	_, err := o.Extract(context.Background(), 0, image.NewGray(image.Rect(0, 0, 0, 0)))

	assert.ErrorIs(t, err, domain.ErrInvalidImage)
	fast.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
	accurate.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestOrchestrator_CanceledBeforeStart(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	_, err := o.Extract(ctx, 0, page())

	assert.ErrorIs(t, err, context.Canceled)
	fast.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestOrchestrator_StampsSourceAndPage(t *testing.T) {
	fast := newEngine("fast-stub")
	accurate := newEngine("accurate-stub")
	fast.On("Recognize", mock.Anything, mock.Anything).Return(fragments(20, 0.99, 0, 0), nil)

	o := newOrchestrator(t, fast, accurate, ocr.OrchestratorConfig{})
	out, err := o.Extract(context.Background(), 7, page())

	require.NoError(t, err)
	for _, f := range out.Fragments {
		assert.Equal(t, domain.EngineFast, f.Source)
		assert.Equal(t, 7, f.PageIndex)
	}
}
