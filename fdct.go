package grayjpeg

import "math"

// coeffBlock holds the DCT coefficients of one block in natural order:
// index 8*v+u is horizontal frequency u, vertical frequency v.
type coeffBlock [blockSize]float64

// dctBasis[k][n] is C(k)/2 * cos((2n+1)kπ/16), with C(0) = 1/√2 and
// C(k) = 1 otherwise. The product of a row and a column factor gives the
// 0.25*C(u)*C(v) normalization of the 2-D DCT-II.
var dctBasis = func() (t [8][8]float64) {
	for k := 0; k < 8; k++ {
		c := 0.5
		if k == 0 {
			c = 0.5 / math.Sqrt2
		}
		for n := 0; n < 8; n++ {
			t[k][n] = c * math.Cos(float64((2*n+1)*k)*math.Pi/16)
		}
	}
	return t
}()

// fdct computes the forward DCT of src into dst as two passes of 1-D
// transforms: rows first, then columns.
func fdct(src *block, dst *coeffBlock) {
	var tmp [blockSize]float64
	for y := 0; y < 8; y++ {
		row := src[8*y : 8*y+8]
		for u := 0; u < 8; u++ {
			basis := &dctBasis[u]
			var sum float64
			for x, s := range row {
				sum += s * basis[x]
			}
			tmp[8*y+u] = sum
		}
	}
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			basis := &dctBasis[v]
			var sum float64
			for y := 0; y < 8; y++ {
				sum += tmp[8*y+u] * basis[y]
			}
			dst[8*v+u] = sum
		}
	}
}
