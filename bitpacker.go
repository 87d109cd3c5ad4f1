// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grayjpeg

// bitPacker accumulates variable-length codes, most significant bit first,
// into a growable byte buffer. Every 0xff data byte is followed by a stuffed
// 0x00 so that the scan can never be mistaken for a marker.
type bitPacker struct {
	buf []byte
	// bits and nBits are accumulated bits not yet written to buf. The
	// pending bits are left-aligned in bits.
	bits, nBits uint32
}

// newBitPacker returns a bitPacker whose buffer starts with the given
// capacity. The buffer grows as needed.
func newBitPacker(capacity int) *bitPacker {
	return &bitPacker{buf: make([]byte, 0, capacity)}
}

// emit emits the least significant nBits bits of bits to the bit-stream.
// The precondition is nBits <= 16.
func (p *bitPacker) emit(bits, nBits uint32) {
	if nBits == 0 {
		return
	}
	bits &= 1<<nBits - 1
	nBits += p.nBits
	bits <<= 32 - nBits
	bits |= p.bits
	for nBits >= 8 {
		p.putByte(uint8(bits >> 24))
		bits <<= 8
		nBits -= 8
	}
	p.bits, p.nBits = bits, nBits
}

func (p *bitPacker) putByte(b byte) {
	p.buf = append(p.buf, b)
	if b == 0xff {
		p.buf = append(p.buf, 0x00)
	}
}

// flush pads any pending bits with zeros up to the next byte boundary and
// writes that byte. It must be called once, after the last block.
func (p *bitPacker) flush() {
	if p.nBits > 0 {
		p.emit(0, 8-p.nBits)
	}
}

// bytes returns the packed bytes written so far.
func (p *bitPacker) bytes() []byte {
	return p.buf
}
