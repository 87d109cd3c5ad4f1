// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grayjpeg

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestVLIRoundTrip(t *testing.T) {
	for v := int32(-2047); v <= 2047; v++ {
		x := newVLI(v)
		if got := x.value(); got != v {
			t.Fatalf("value(newVLI(%d)): got %d", v, got)
		}
		if x.bits >= 1<<x.nBits {
			t.Fatalf("newVLI(%d): bits %b wider than %d", v, x.bits, x.nBits)
		}
		a := v
		if a < 0 {
			a = -a
		}
		if a >= 1<<x.nBits || (a != 0 && a < 1<<(x.nBits-1)) {
			t.Fatalf("newVLI(%d): category %d", v, x.nBits)
		}
	}
	if x := newVLI(0); x.nBits != 0 || x.bits != 0 {
		t.Errorf("newVLI(0): got %+v, want no bits", x)
	}
}

func TestVLIEncoding(t *testing.T) {
	tests := []struct {
		v     int32
		bits  uint32
		nBits uint32
	}{
		{1, 0b1, 1},
		{-1, 0b0, 1},
		{2, 0b10, 2},
		{-2, 0b01, 2},
		{3, 0b11, 2},
		{-3, 0b00, 2},
		{-4, 0b011, 3},
		{1023, 0b1111111111, 10},
		{-1023, 0, 10},
		{-2047, 0, 11},
		{32767, 0x7fff, 15},
		{-32768, 0x7fff, 16},
	}
	for _, tt := range tests {
		x := newVLI(tt.v)
		if x.bits != tt.bits || x.nBits != tt.nBits {
			t.Errorf("newVLI(%d): got (%b, %d), want (%b, %d)", tt.v, x.bits, x.nBits, tt.bits, tt.nBits)
		}
	}
}

func encodeOne(t *testing.T, zz quantBlock, prevDC int32) ([]byte, int32) {
	t.Helper()
	p := newBitPacker(0)
	dc, err := encodeBlock(p, &zz, prevDC)
	if err != nil {
		t.Fatalf("encodeBlock: %v", err)
	}
	p.flush()
	return p.bytes(), dc
}

func TestEncodeBlock(t *testing.T) {
	tests := []struct {
		name string
		zz   quantBlock
		want []byte
	}{
		{
			// DC category 0 "00", EOB "1010", two zero padding bits.
			name: "all zero",
			want: []byte{0x28},
		},
		{
			// "00", ZRL, 3/1 "1", two ZRLs, 10/1 "0", no EOB.
			name: "zero runs past 15",
			zz:   quantBlock{20: 1, 63: -1},
			want: []byte{0x3f, 0xcf, 0x5f, 0xf3, 0xfe, 0x7f, 0x40},
		},
		{
			name: "last coefficient nonzero with stuffing",
			zz:   quantBlock{0: 5, 1: -3, 2: 2, 63: 7},
			want: []byte{0x95, 0x1b, 0xfc, 0xff, 0x00, 0x9f, 0xf3, 0xff, 0x00, 0xb5, 0xc0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dc := encodeOne(t, tt.zz, 0)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got % x, want % x", got, tt.want)
			}
			if dc != int32(tt.zz[0]) {
				t.Errorf("returned DC %d, want %d", dc, tt.zz[0])
			}
		})
	}
}

func TestEncodeBlockEOB(t *testing.T) {
	var zz quantBlock
	zz[1] = 1
	got, _ := encodeOne(t, zz, 0)
	// "00" DC, "00" "1" AC, "1010" EOB: 00001101 0 -> 0x0d 0x00.
	if want := []byte{0x0d, 0x00}; !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}

	// Ending on index 63 suppresses the EOB: "00", run 62 as three ZRLs
	// then 14/1, "1".
	zz = quantBlock{63: 1}
	got, _ = encodeOne(t, zz, 0)
	p := newBitPacker(0)
	p.emit(0b00, 2)
	for i := 0; i < 3; i++ {
		p.emitHuff(huffIndexAC, symbolZRL)
	}
	p.emitHuff(huffIndexAC, 14<<4|1)
	p.emit(1, 1)
	p.flush()
	if want := p.bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestEncodeBlockDCPrediction(t *testing.T) {
	zz := quantBlock{0: 3}
	// Predicted from 3 the difference is 0, coded like an all-zero block.
	got, _ := encodeOne(t, zz, 3)
	if want := []byte{0x28}; !bytes.Equal(got, want) {
		t.Errorf("prevDC 3: got % x, want % x", got, want)
	}
	// From 0 the difference is 3: "011" "11" then EOB.
	got, _ = encodeOne(t, zz, 0)
	if want := []byte{0x7d, 0x00}; !bytes.Equal(got, want) {
		t.Errorf("prevDC 0: got % x, want % x", got, want)
	}
}

func TestEncodeBlockCategoryOverflow(t *testing.T) {
	tests := []struct {
		name   string
		zz     quantBlock
		prevDC int32
	}{
		{"DC difference 2048", quantBlock{0: 2048}, 0},
		{"DC difference -2048", quantBlock{0: -1024}, 1024},
		{"AC 1024", quantBlock{5: 1024}, 0},
		{"AC -1024", quantBlock{63: -1024}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encodeBlock(newBitPacker(0), &tt.zz, tt.prevDC)
			if !errors.Is(err, ErrCategoryOverflow) {
				t.Errorf("got %v, want %v", err, ErrCategoryOverflow)
			}
		})
	}
	// The widest codable values succeed.
	ok := quantBlock{0: 2047, 1: 1023, 2: -1023}
	if _, err := encodeBlock(newBitPacker(0), &ok, 0); err != nil {
		t.Errorf("largest codable values: %v", err)
	}
}

func TestEncodeScanRasterOrder(t *testing.T) {
	blocks := []quantBlock{{0: 3}, {0: 3}, {0: -1}, {}}
	got, err := encodeScan(blocks)
	if err != nil {
		t.Fatal(err)
	}
	// Differences 3, 0, -4, 1, each followed by EOB.
	if want := []byte{0x7d, 0x15, 0x1d, 0x2d, 0x00}; !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}

	blocks[1][5] = 2000
	if _, err := encodeScan(blocks); !errors.Is(err, ErrCategoryOverflow) {
		t.Errorf("got %v, want %v", err, ErrCategoryOverflow)
	}
}

func TestEncodeScanWorstCaseBound(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	blocks := make([]quantBlock, 64)
	for i := range blocks {
		for j := range blocks[i] {
			// Nonzero magnitudes of 512..1023 maximize every AC code.
			v := int16(512 + r.Intn(512))
			if r.Intn(2) == 0 {
				v = -v
			}
			blocks[i][j] = v
		}
	}
	data, err := encodeScan(blocks)
	if err != nil {
		t.Fatal(err)
	}
	checkStuffed(t, data)
	if len(data) > maxScanBytes(len(blocks)) {
		t.Errorf("scan of %d bytes exceeds bound %d", len(data), maxScanBytes(len(blocks)))
	}
}

// value recovers the signed value from its coding, as a decoder would.
func (x vli) value() int32 {
	if x.nBits == 0 {
		return 0
	}
	if x.bits>>(x.nBits-1) == 0 {
		return int32(x.bits) - int32(1<<x.nBits-1)
	}
	return int32(x.bits)
}

// Per-block worst case: a 9-bit DC code with 11 value bits, then 63 AC
// symbols of at most 16 code bits and 10 value bits each. Every byte may
// be stuffed.
const maxBlockBytes = 2 * ((9 + 11 + 63*(16+10) + 7) / 8)

// maxScanBytes bounds the packed size of a scan of n blocks, including the
// final padded byte and its stuffing.
func maxScanBytes(n int) int {
	return n*maxBlockBytes + 2
}

// scanReader reads an unstuffed scan most significant bit first.
type scanReader struct {
	t     *testing.T
	data  []byte
	pos   int
	codes [nHuffIndex]map[[2]uint32]int32 // {nBits, code} to symbol
}

func newScanReader(t *testing.T, scan []byte) *scanReader {
	r := &scanReader{t: t, data: unstuff(scan)}
	for h := range theHuffmanLUT {
		r.codes[h] = make(map[[2]uint32]int32)
		for s, x := range theHuffmanLUT[h] {
			if x != 0 {
				r.codes[h][[2]uint32{x >> 24, x & (1<<24 - 1)}] = int32(s)
			}
		}
	}
	return r
}

func (r *scanReader) bits(n uint32) uint32 {
	r.t.Helper()
	var v uint32
	for ; n > 0; n-- {
		if r.pos >= 8*len(r.data) {
			r.t.Fatalf("scan ends after %d bits", r.pos)
		}
		v = v<<1 | uint32(r.data[r.pos/8]>>(7-r.pos%8)&1)
		r.pos++
	}
	return v
}

func (r *scanReader) symbol(h huffIndex) int32 {
	r.t.Helper()
	var code uint32
	for n := uint32(1); n <= 16; n++ {
		code = code<<1 | r.bits(1)
		if s, ok := r.codes[h][[2]uint32{n, code}]; ok {
			return s
		}
	}
	r.t.Fatalf("no codeword at bit %d", r.pos)
	return 0
}

// decodeScan decodes n blocks from scan, returning them in zig-zag order
// along with the DC differences as they were coded.
func decodeScan(t *testing.T, scan []byte, n int) ([]quantBlock, []int32) {
	t.Helper()
	r := newScanReader(t, scan)
	blocks := make([]quantBlock, n)
	diffs := make([]int32, n)
	prevDC := int32(0)
	for i := range blocks {
		nBits := uint32(r.symbol(huffIndexDC))
		diffs[i] = vli{r.bits(nBits), nBits}.value()
		prevDC += diffs[i]
		blocks[i][0] = int16(prevDC)
		for k := 1; k < blockSize; {
			s := r.symbol(huffIndexAC)
			run, size := s>>4, uint32(s&0x0f)
			if size == 0 {
				if s == symbolZRL {
					k += 16
					continue
				}
				break
			}
			k += int(run)
			if k >= blockSize {
				t.Fatalf("block %d: run past the last coefficient", i)
			}
			blocks[i][k] = int16(vli{r.bits(size), size}.value())
			k++
		}
	}
	return blocks, diffs
}

func TestEncodeScanDecodes(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	blocks := make([]quantBlock, 40)
	for i := range blocks {
		blocks[i][0] = int16(r.Intn(2047) - 1023)
		// Sparse AC coefficients give long runs, ZRLs and EOBs.
		for j := 0; j < r.Intn(12); j++ {
			blocks[i][1+r.Intn(blockSize-1)] = int16(r.Intn(2047) - 1023)
		}
	}
	data, err := encodeScan(blocks)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := decodeScan(t, data, len(blocks))
	for i := range blocks {
		if got[i] != blocks[i] {
			t.Fatalf("block %d: got %v, want %v", i, got[i], blocks[i])
		}
	}
}
