// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grayjpeg

import (
	"math"

	"github.com/pkg/errors"
)

// quantBlock holds the 64 quantized coefficients of one block. Depending
// on the stage it is in natural or zig-zag order.
type quantBlock [blockSize]int16

// unscaledQuant is the standard luminance quantization table from section
// K.1 of ITU-T T.81, in natural (row-major) order. Quantization divides by
// it in this order; only the DQT segment carries a zig-zag copy.
var unscaledQuant = [blockSize]byte{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// scaleQuant returns unscaledQuant scaled for the given quality. A quality
// of 50 leaves the table unchanged.
func scaleQuant(quality int) [blockSize]byte {
	// Clip quality to [1, 100].
	if quality < 1 {
		quality = 1
	} else if quality > 100 {
		quality = 100
	}
	// Convert from a quality rating to a scaling factor.
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}
	var q [blockSize]byte
	for i, v := range unscaledQuant {
		x := (int(v)*scale + 50) / 100
		if x < 1 {
			x = 1
		} else if x > 255 {
			x = 255
		}
		q[i] = uint8(x)
	}
	return q
}

// quantize divides each coefficient of src by the natural-order divisor
// in q and rounds half away from zero. A quotient that is not a number or
// does not fit in 16 bits cannot be entropy coded and fails with
// ErrCategoryOverflow.
func quantize(src *coeffBlock, q *[blockSize]byte, dst *quantBlock) error {
	for i, c := range src {
		r := math.Round(c / float64(q[i]))
		if !(r >= math.MinInt16 && r <= math.MaxInt16) {
			return errors.Wrapf(ErrCategoryOverflow, "coefficient %v at index %d", r, i)
		}
		dst[i] = int16(r)
	}
	return nil
}
