package preprocess_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintel/internal/domain"
	"docintel/internal/preprocess"
)

// linesImage draws thick horizontal dark lines on a white page.
func linesImage(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	for y := 40; y < h-40; y += 24 {
		for dy := 0; dy < 4; dy++ {
			for x := 40; x < w-40; x++ {
				g.SetGray(x, y+dy, color.Gray{Y: 0})
			}
		}
	}
	return g
}

func TestThreshold(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	g.Pix = []uint8{10, 127, 200}

	out := preprocess.Threshold(g, 128)

	assert.Equal(t, []uint8{0, 0, 255}, out.Pix)
}

func TestMedianDenoise_RemovesSpeck(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	g.SetGray(2, 2, color.Gray{Y: 0})

	out := preprocess.MedianDenoise(g)

	assert.Equal(t, uint8(255), out.GrayAt(2, 2).Y)
}

func TestAdaptiveThreshold_HandlesUnevenBackground(t *testing.T) {
	// Background brightens left to right; one dark stroke on each side.
	g := image.NewGray(image.Rect(0, 0, 60, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 60; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(80 + x*2)})
		}
	}
	for y := 5; y < 15; y++ {
		g.SetGray(10, y, color.Gray{Y: 20})
		g.SetGray(50, y, color.Gray{Y: 120})
	}

	out := preprocess.AdaptiveThreshold(g, 15, 10)

	assert.Equal(t, uint8(0), out.GrayAt(10, 10).Y)
	assert.Equal(t, uint8(0), out.GrayAt(50, 10).Y)
	assert.Equal(t, uint8(255), out.GrayAt(30, 10).Y)
}

func TestEstimateSkew_Horizontal(t *testing.T) {
	angle := preprocess.EstimateSkew(linesImage(400, 300), 10, 0.5, 800)
	assert.Equal(t, 0.0, angle)
}

func TestEstimateSkew_RecoversRotation(t *testing.T) {
	rotated := preprocess.Rotate(linesImage(400, 300), 4)

	angle := preprocess.EstimateSkew(rotated, 10, 0.5, 800)

	assert.InDelta(t, 4.0, angle, 1.0)
}

func TestDeskew_StraightensRotatedPage(t *testing.T) {
	rotated := preprocess.Rotate(linesImage(400, 300), -3)

	out := preprocess.Deskew(preprocess.Threshold(rotated, 128), 10, 0.5, 800)

	assert.Equal(t, rotated.Bounds(), out.Bounds())
	assert.LessOrEqual(t, math.Abs(preprocess.EstimateSkew(out, 10, 0.5, 800)), 1.0)
}

func TestSelector_Prepare(t *testing.T) {
	s := preprocess.NewSelector(preprocess.DefaultParams())
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	for _, path := range []domain.EngineKind{domain.EngineFast, domain.EngineAccurate} {
		t.Run(string(path), func(t *testing.T) {
			out, err := s.Prepare(path, src)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), out.Bounds())
			_, isGray := out.(*image.Gray)
			assert.True(t, isGray)
		})
	}
}

func TestSelector_Prepare_InvalidImage(t *testing.T) {
	s := preprocess.NewSelector(preprocess.DefaultParams())

	_, err := s.Prepare(domain.EngineFast, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	_, err = s.Prepare(domain.EngineAccurate, image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}
