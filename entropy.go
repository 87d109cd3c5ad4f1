// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grayjpeg

import "github.com/pkg/errors"

// bitCount counts the number of bits needed to hold an integer.
var bitCount = [256]byte{
	0, 1, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
}

// vli is the variable-length integer coding of a signed value: nBits is
// the magnitude category (the bit length of |v|, 0 for v == 0) and bits
// holds v in that many bits, one's complement for negative values.
type vli struct {
	bits, nBits uint32
}

func newVLI(v int32) vli {
	a, b := v, v
	if a < 0 {
		a, b = -v, v-1
	}
	var nBits uint32
	for a >= 0x100 {
		nBits += 8
		a >>= 8
	}
	nBits += uint32(bitCount[a])
	return vli{uint32(b) & (1<<nBits - 1), nBits}
}

// emitHuff emits the codeword for symbol from the given table.
func (p *bitPacker) emitHuff(h huffIndex, symbol int32) {
	x := theHuffmanLUT[h][symbol]
	p.emit(x&(1<<24-1), x>>24)
}

// encodeBlock entropy codes one block of quantized coefficients in zig-zag
// order, returning its DC value for the prediction of the next block.
func encodeBlock(p *bitPacker, zz *quantBlock, prevDC int32) (int32, error) {
	// Emit the DC delta.
	dc := int32(zz[0])
	diff := newVLI(dc - prevDC)
	if diff.nBits > maxDCCategory {
		return 0, errors.Wrapf(ErrCategoryOverflow, "DC difference %d", dc-prevDC)
	}
	p.emitHuff(huffIndexDC, int32(diff.nBits))
	p.emit(diff.bits, diff.nBits)
	// Emit the AC components.
	runLength := int32(0)
	for zig := 1; zig < blockSize; zig++ {
		ac := int32(zz[zig])
		if ac == 0 {
			runLength++
			continue
		}
		v := newVLI(ac)
		if v.nBits > maxACCategory {
			return 0, errors.Wrapf(ErrCategoryOverflow, "AC coefficient %d at zig-zag index %d", ac, zig)
		}
		for runLength > 15 {
			p.emitHuff(huffIndexAC, symbolZRL)
			runLength -= 16
		}
		p.emitHuff(huffIndexAC, runLength<<4|int32(v.nBits))
		p.emit(v.bits, v.nBits)
		runLength = 0
	}
	if runLength > 0 {
		p.emitHuff(huffIndexAC, symbolEOB)
	}
	return dc, nil
}

// encodeScan folds encodeBlock over blocks in raster order, threading the
// DC predictor and the packer from one block to the next, and returns the
// flushed scan data.
func encodeScan(blocks []quantBlock) ([]byte, error) {
	p := newBitPacker(max(4096, 16*len(blocks)))
	prevDC := int32(0)
	for i := range blocks {
		dc, err := encodeBlock(p, &blocks[i], prevDC)
		if err != nil {
			return nil, errors.WithMessagef(err, "block %d", i)
		}
		prevDC = dc
	}
	p.flush()
	return p.bytes(), nil
}
