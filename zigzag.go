// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grayjpeg

// unzig maps from the zig-zag ordering to the natural ordering. For example,
// unzig[3] is the column and row of the fourth element in zig-zag order. The
// value is 16, which means first column (16%8 == 0) and third row (16/8 == 2).
var unzig = [blockSize]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// zigzag reorders a natural-order block into zig-zag scan order.
func zigzag(src, dst *quantBlock) {
	for zig, natural := range unzig {
		dst[zig] = src[natural]
	}
}

// zigzagQuant returns q, given in natural order, in the zig-zag order the
// DQT segment transmits.
func zigzagQuant(q *[blockSize]byte) [blockSize]byte {
	var z [blockSize]byte
	for zig, natural := range unzig {
		z[zig] = q[natural]
	}
	return z
}
