package grayjpeg

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// levelShift is subtracted from 8-bit samples so that they oscillate
// around zero, as the forward DCT expects.
const levelShift = 128

// Plane is a single-channel image of level-shifted luminance samples.
// Pix holds Width*Height values in row-major order with no padding; a
// sample of 0 corresponds to the unsigned mid-grey 128.
type Plane struct {
	Width, Height int
	Pix           []float32
}

// NewPlane returns a zeroed (mid-grey) plane of the given size.
func NewPlane(width, height int) *Plane {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) float32 {
	return p.Pix[y*p.Width+x]
}

// Set sets the sample at (x, y).
func (p *Plane) Set(x, y int, v float32) {
	p.Pix[y*p.Width+x] = v
}

func (p *Plane) validate() error {
	if p == nil {
		return ErrInvalidDimensions
	}
	if p.Width <= 0 || p.Height <= 0 || len(p.Pix) != p.Width*p.Height {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d plane with %d samples", p.Width, p.Height, len(p.Pix))
	}
	if p.Width >= 1<<16 || p.Height >= 1<<16 {
		return errors.Wrapf(ErrImageTooLarge, "%dx%d", p.Width, p.Height)
	}
	return nil
}

// PlaneFromGray level-shifts the samples of m into a new Plane.
func PlaneFromGray(m *image.Gray) *Plane {
	b := m.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := 0; y < p.Height; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < p.Width; x++ {
			p.Pix[y*p.Width+x] = float32(row[x]) - levelShift
		}
	}
	return p
}

// PlaneFromImage extracts the level-shifted luminance of m. Gray images
// are copied directly; anything else is reduced to 8-bit RGB and weighted
// with the ITU-R BT.601 luma coefficients.
func PlaneFromImage(m image.Image) *Plane {
	if g, ok := m.(*image.Gray); ok {
		return PlaneFromGray(g)
	}
	b := m.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			c := color.RGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			luma := 0.299*float32(c.R) + 0.587*float32(c.G) + 0.114*float32(c.B)
			p.Pix[y*p.Width+x] = luma - levelShift
		}
	}
	return p
}

// Gray converts p back to an 8-bit image, undoing the level shift and
// clamping to [0, 255].
func (p *Plane) Gray() *image.Gray {
	m := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for i, v := range p.Pix {
		x := math.Round(float64(v) + levelShift)
		m.Pix[i] = uint8(min(max(x, 0), 255))
	}
	return m
}
