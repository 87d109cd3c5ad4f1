package grayjpeg

// block holds the 8x8 samples of one tile in natural (row-major) order.
type block [blockSize]float64

// blockGrid returns the number of block columns and rows covering p.
func blockGrid(p *Plane) (bw, bh int) {
	return (p.Width + 7) / 8, (p.Height + 7) / 8
}

// loadBlock stores the 8x8 region of p whose top-left block coordinate is
// (bx, by) in b. Samples past the right or bottom edge repeat the last
// column or row of the plane.
func loadBlock(p *Plane, bx, by int, b *block) {
	xmax := p.Width - 1
	ymax := p.Height - 1
	for j := 0; j < 8; j++ {
		sy := min(by*8+j, ymax)
		row := p.Pix[sy*p.Width:]
		for i := 0; i < 8; i++ {
			b[8*j+i] = float64(row[min(bx*8+i, xmax)])
		}
	}
}
