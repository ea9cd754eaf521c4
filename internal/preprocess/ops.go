package preprocess

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Grayscale converts img to 8-bit luminance, keeping its bounds.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// Threshold binarizes g: pixels darker than t become black, the rest white.
func Threshold(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y < t {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// MedianDenoise applies a 3x3 median filter. Edge pixels use clamped neighbours.
func MedianDenoise(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	var win [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					win[n] = g.GrayAt(clamp(x+dx, b.Min.X, b.Max.X-1), clamp(y+dy, b.Min.Y, b.Max.Y-1)).Y
					n++
				}
			}
			s := win[:]
			sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
			out.SetGray(x, y, color.Gray{Y: win[4]})
		}
	}
	return out
}

// AdaptiveThreshold binarizes against the local mean of a window x window
// neighbourhood: a pixel is black when it is more than c below that mean.
func AdaptiveThreshold(g *image.Gray, window int, c int) *image.Gray {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()

	// integral[(y+1)*(w+1)+(x+1)] is the sum over [0,x]x[0,y].
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row uint64
		for x := 0; x < w; x++ {
			row += uint64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
			integral[(y+1)*(w+1)+(x+1)] = integral[y*(w+1)+(x+1)] + row
		}
	}

	half := window / 2
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		y0, y1 := clamp(y-half, 0, h-1), clamp(y+half, 0, h-1)
		for x := 0; x < w; x++ {
			x0, x1 := clamp(x-half, 0, w-1), clamp(x+half, 0, w-1)
			sum := integral[(y1+1)*(w+1)+(x1+1)] - integral[y0*(w+1)+(x1+1)] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			count := uint64((x1 - x0 + 1) * (y1 - y0 + 1))
			mean := int(sum / count)
			v := uint8(255)
			if int(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)]) < mean-c {
				v = 0
			}
			out.Pix[out.PixOffset(b.Min.X+x, b.Min.Y+y)] = v
		}
	}
	return out
}

// EstimateSkew returns the angle in degrees of the dominant text-line
// direction, searched in [-maxDeg, maxDeg] with the given step. Positive
// angles mean lines descend to the right. The search runs on a copy scaled
// down to at most sampleWidth pixels wide.
func EstimateSkew(g *image.Gray, maxDeg, step float64, sampleWidth int) float64 {
	if step <= 0 || maxDeg <= 0 {
		return 0
	}
	sample := g
	if sampleWidth > 0 && g.Bounds().Dx() > sampleWidth {
		b := g.Bounds()
		h := b.Dy() * sampleWidth / b.Dx()
		if h < 1 {
			h = 1
		}
		sample = image.NewGray(image.Rect(0, 0, sampleWidth, h))
		draw.ApproxBiLinear.Scale(sample, sample.Bounds(), g, b, draw.Src, nil)
	}

	b := sample.Bounds()
	type point struct{ x, y float64 }
	var dark []point
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if sample.GrayAt(x, y).Y < 128 {
				dark = append(dark, point{float64(x - b.Min.X), float64(y - b.Min.Y)})
			}
		}
	}
	if len(dark) == 0 {
		return 0
	}

	best, bestScore := 0.0, -1.0
	steps := int(math.Round(maxDeg / step))
	for i := -steps; i <= steps; i++ {
		deg := float64(i) * step
		rad := deg * math.Pi / 180
		sin, cos := math.Sin(rad), math.Cos(rad)
		bins := make(map[int]float64)
		for _, p := range dark {
			bins[int(math.Floor(-p.x*sin+p.y*cos))]++
		}
		var score float64
		for _, n := range bins {
			score += n * n
		}
		// Ties keep the angle closest to zero.
		if score > bestScore || (score == bestScore && math.Abs(deg) < math.Abs(best)) {
			best, bestScore = deg, score
		}
	}
	return best
}

// Rotate turns g by deg degrees about its centre. Uncovered pixels are white.
func Rotate(g *image.Gray, deg float64) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for i := range out.Pix {
		out.Pix[i] = 255
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	s2d := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(out, s2d, g, b, draw.Over, nil)
	return out
}

// Deskew estimates the skew of g and rotates it back to horizontal.
func Deskew(g *image.Gray, maxDeg, step float64, sampleWidth int) *image.Gray {
	angle := EstimateSkew(g, maxDeg, step, sampleWidth)
	if angle == 0 {
		return g
	}
	return Rotate(g, -angle)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
