package grayjpeg

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// perfectPSNR is reported for identical images.
const perfectPSNR = 100

// Compare returns the mean squared error and the peak signal-to-noise
// ratio, in dB, between a and b. Only the region both images cover,
// anchored at their top-left corners, is compared.
func Compare(a, b *image.Gray) (mse, psnr float64) {
	w := min(a.Bounds().Dx(), b.Bounds().Dx())
	h := min(a.Bounds().Dy(), b.Bounds().Dy())
	if w <= 0 || h <= 0 {
		return 0, perfectPSNR
	}
	amin, bmin := a.Bounds().Min, b.Bounds().Min
	var sum float64
	for y := 0; y < h; y++ {
		ra := a.Pix[a.PixOffset(amin.X, amin.Y+y):]
		rb := b.Pix[b.PixOffset(bmin.X, bmin.Y+y):]
		for x := 0; x < w; x++ {
			d := float64(ra[x]) - float64(rb[x])
			sum += d * d
		}
	}
	mse = sum / float64(w*h)
	if mse == 0 {
		return 0, perfectPSNR
	}
	return mse, 20 * math.Log10(255/math.Sqrt(mse))
}

// SSIM window side and stabilizing constants for 8-bit data.
const (
	ssimWindow = 7
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// windowSums holds the sums over a set of samples needed for the SSIM of
// one window.
type windowSums struct {
	x, y, xx, yy, xy int64
}

func (s *windowSums) add(a, b uint8, sign int64) {
	x, y := int64(a), int64(b)
	s.x += sign * x
	s.y += sign * y
	s.xx += sign * x * x
	s.yy += sign * y * y
	s.xy += sign * x * y
}

// ssim returns the structural similarity of the samples behind s.
func (s *windowSums) ssim() float64 {
	const n = ssimWindow * ssimWindow
	// Sample (not population) covariance.
	const norm = float64(n) / (n - 1)
	ux, uy := float64(s.x)/n, float64(s.y)/n
	vx := norm * (float64(s.xx)/n - ux*ux)
	vy := norm * (float64(s.yy)/n - uy*uy)
	vxy := norm * (float64(s.xy)/n - ux*uy)
	return (2*ux*uy + ssimC1) * (2*vxy + ssimC2) /
		((ux*ux + uy*uy + ssimC1) * (vx + vy + ssimC2))
}

// SSIM returns the mean structural similarity index of a and b over every
// 7x7 window lying inside the region both images cover, anchored at their
// top-left corners. Windows are unweighted and use the sample covariance,
// with a data range of 255. It is 1 for identical images. The region must
// be at least 7x7.
func SSIM(a, b *image.Gray) (float64, error) {
	w := min(a.Bounds().Dx(), b.Bounds().Dx())
	h := min(a.Bounds().Dy(), b.Bounds().Dy())
	if w < ssimWindow || h < ssimWindow {
		return 0, errors.Wrapf(ErrInvalidDimensions, "%dx%d is smaller than the %dx%d SSIM window", w, h, ssimWindow, ssimWindow)
	}
	amin, bmin := a.Bounds().Min, b.Bounds().Min
	row := func(y int) ([]uint8, []uint8) {
		return a.Pix[a.PixOffset(amin.X, amin.Y+y):][:w], b.Pix[b.PixOffset(bmin.X, bmin.Y+y):][:w]
	}

	// cols[x] sums column x over the ssimWindow rows starting at y0.
	cols := make([]windowSums, w)
	for y := 0; y < ssimWindow; y++ {
		ra, rb := row(y)
		for x := range cols {
			cols[x].add(ra[x], rb[x], 1)
		}
	}
	var total float64
	for y0 := 0; ; y0++ {
		var s windowSums
		for x := 0; x < ssimWindow; x++ {
			s.x += cols[x].x
			s.y += cols[x].y
			s.xx += cols[x].xx
			s.yy += cols[x].yy
			s.xy += cols[x].xy
		}
		for x0 := 0; ; x0++ {
			total += s.ssim()
			if x0+ssimWindow == w {
				break
			}
			out, in := &cols[x0], &cols[x0+ssimWindow]
			s.x += in.x - out.x
			s.y += in.y - out.y
			s.xx += in.xx - out.xx
			s.yy += in.yy - out.yy
			s.xy += in.xy - out.xy
		}
		if y0+ssimWindow == h {
			break
		}
		ra, rb := row(y0)
		na, nb := row(y0 + ssimWindow)
		for x := range cols {
			cols[x].add(ra[x], rb[x], -1)
			cols[x].add(na[x], nb[x], 1)
		}
	}
	return total / float64((w-ssimWindow+1)*(h-ssimWindow+1)), nil
}
