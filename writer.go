// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grayjpeg implements a baseline sequential JPEG encoder for
// single-component (grayscale) images.
//
// The per-block stages (segmentation, forward DCT, quantization and
// zig-zag reordering) run in parallel; entropy coding is a single ordered
// pass because each block's DC value is coded as a difference from the
// previous block's.
package grayjpeg

import (
	"bufio"
	"image"
	"io"

	"github.com/pkg/errors"
)

// writer is a buffered writer.
type writer interface {
	Flush() error
	io.Writer
	io.ByteWriter
}

// encoder writes the JFIF container around a finished scan.
type encoder struct {
	// w is the writer to write to. err is the first error encountered during
	// writing. All attempted writes after the first error become no-ops.
	w   writer
	err error
	// buf is a scratch buffer.
	buf [16]byte
}

func (e *encoder) flush() {
	if e.err != nil {
		return
	}
	e.err = errors.WithStack(e.w.Flush())
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
	e.err = errors.WithStack(e.err)
}

func (e *encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = errors.WithStack(e.w.WriteByte(b))
}

// writeMarkerHeader writes the header for a marker with the given length.
func (e *encoder) writeMarkerHeader(marker uint8, markerlen int) {
	e.buf[0] = 0xff
	e.buf[1] = marker
	e.buf[2] = uint8(markerlen >> 8)
	e.buf[3] = uint8(markerlen & 0xff)
	e.write(e.buf[:4])
}

// writeMarker writes a marker that has no segment.
func (e *encoder) writeMarker(marker uint8) {
	e.buf[0] = 0xff
	e.buf[1] = marker
	e.write(e.buf[:2])
}

// app0JFIF is the APP0 payload: the "JFIF\x00" identifier, version 1.01,
// no density units, a 1:1 pixel aspect ratio and no thumbnail.
var app0JFIF = []byte{
	'J', 'F', 'I', 'F', 0x00,
	0x01, 0x01,
	0x00,
	0x00, 0x01, 0x00, 0x01,
	0x00, 0x00,
}

// writeAPP0 writes the JFIF application segment.
func (e *encoder) writeAPP0() {
	e.writeMarkerHeader(app0Marker, 2+len(app0JFIF))
	e.write(app0JFIF)
}

// writeDQT writes the Define Quantization Table marker. q is in natural
// order; the table is transmitted in zig-zag order.
func (e *encoder) writeDQT(q *[blockSize]byte) {
	const markerlen = 2 + 1 + blockSize
	e.writeMarkerHeader(dqtMarker, markerlen)
	// 8-bit precision, table 0.
	e.writeByte(0x00)
	z := zigzagQuant(q)
	e.write(z[:])
}

// writeSOF0 writes the Start Of Frame (Baseline Sequential) marker for a
// single 8-bit component.
func (e *encoder) writeSOF0(size image.Point) {
	const markerlen = 8 + 3*1
	e.writeMarkerHeader(sof0Marker, markerlen)
	e.buf[0] = 8 // 8-bit samples.
	e.buf[1] = uint8(size.Y >> 8)
	e.buf[2] = uint8(size.Y & 0xff)
	e.buf[3] = uint8(size.X >> 8)
	e.buf[4] = uint8(size.X & 0xff)
	e.buf[5] = 1 // One component.
	e.buf[6] = 1
	// No subsampling for grayscale image.
	e.buf[7] = 0x11
	e.buf[8] = 0x00
	e.write(e.buf[:9])
}

// writeDHT writes one Define Huffman Table marker per table: the DC table
// as class 0 id 0, then the AC table as class 1 id 0.
func (e *encoder) writeDHT() {
	for i, s := range theHuffmanSpec {
		e.writeMarkerHeader(dhtMarker, 2+1+16+len(s.value))
		e.writeByte("\x00\x10"[i])
		e.write(s.count[:])
		e.write(s.value)
	}
}

// sosHeaderY is the SOS marker "\xff\xda" followed by 8 bytes:
//   - the marker length "\x00\x08",
//   - the number of components "\x01",
//   - component 1 uses DC table 0 and AC table 0 "\x01\x00",
//   - the bytes "\x00\x3f\x00". Section B.2.3 of ITU-T T.81 says that for
//     sequential DCTs, those bytes (8-bit Ss, 8-bit Se, 4-bit Ah, 4-bit Al)
//     should be 0x00, 0x3f, 0x00<<4 | 0x00.
var sosHeaderY = []byte{
	0xff, sosMarker, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3f, 0x00,
}

// DefaultQuality is the default quality encoding parameter. At this
// quality the standard luminance table is used unscaled.
const DefaultQuality = 50

// Options are the encoding parameters.
// Quality ranges from 1 to 100 inclusive, higher is better.
// Workers bounds the goroutines used for the per-block stages; zero means
// GOMAXPROCS.
type Options struct {
	Quality int
	Workers int
}

func (o *Options) quality() int {
	if o == nil || o.Quality == 0 {
		return DefaultQuality
	}
	return o.Quality
}

func (o *Options) workers() int {
	if o == nil {
		return 0
	}
	return o.Workers
}

// Scan is the entropy-coded data of one image, before framing.
type Scan struct {
	Width, Height int
	// Blocks is the number of 8x8 blocks coded, in raster order.
	Blocks int
	// Quant is the quantization table used, in natural order.
	Quant [blockSize]byte
	// Data is the packed, byte-stuffed scan.
	Data []byte
}

// EncodeScan segments, transforms, quantizes and entropy codes p. The
// returned Scan can be framed with WriteContainer.
func EncodeScan(p *Plane, o *Options) (*Scan, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := &Scan{
		Width:  p.Width,
		Height: p.Height,
		Quant:  scaleQuant(o.quality()),
	}
	blocks, err := transformBlocks(p, &s.Quant, o.workers())
	if err != nil {
		return nil, err
	}
	data, err := encodeScan(blocks)
	if err != nil {
		return nil, err
	}
	s.Blocks = len(blocks)
	s.Data = data
	return s, nil
}

// WriteContainer writes s to w as a single-component baseline JFIF file.
func WriteContainer(w io.Writer, s *Scan) error {
	if s.Width <= 0 || s.Height <= 0 {
		return ErrInvalidDimensions
	}
	if s.Width >= 1<<16 || s.Height >= 1<<16 {
		return ErrImageTooLarge
	}
	var e encoder
	if ww, ok := w.(writer); ok {
		e.w = ww
	} else {
		e.w = bufio.NewWriter(w)
	}
	// Write the Start Of Image marker.
	e.writeMarker(soiMarker)
	e.writeAPP0()
	// Write the quantization table.
	e.writeDQT(&s.Quant)
	// Write the image dimensions.
	e.writeSOF0(image.Pt(s.Width, s.Height))
	// Write the Huffman tables.
	e.writeDHT()
	// Write the image data.
	e.write(sosHeaderY)
	e.write(s.Data)
	// Write the End Of Image marker.
	e.writeMarker(eoiMarker)
	e.flush()
	return e.err
}

// EncodePlane writes p to w in baseline grayscale JPEG format with the
// given options. Default parameters are used if a nil *[Options] is passed.
// Nothing is written if encoding fails.
func EncodePlane(w io.Writer, p *Plane, o *Options) error {
	s, err := EncodeScan(p, o)
	if err != nil {
		return err
	}
	return WriteContainer(w, s)
}

// Encode writes the luminance of m to w in baseline grayscale JPEG format.
func Encode(w io.Writer, m image.Image, o *Options) error {
	b := m.Bounds()
	if b.Dx() >= 1<<16 || b.Dy() >= 1<<16 {
		return ErrImageTooLarge
	}
	return EncodePlane(w, PlaneFromImage(m), o)
}
