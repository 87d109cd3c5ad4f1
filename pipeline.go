package grayjpeg

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// transformBlock runs the per-block stages on block (bx, by) of p:
// segmentation, forward DCT, quantization and zig-zag reordering.
func transformBlock(p *Plane, bx, by int, q *[blockSize]byte, dst *quantBlock) error {
	var (
		b       block
		coeffs  coeffBlock
		natural quantBlock
	)
	loadBlock(p, bx, by, &b)
	fdct(&b, &coeffs)
	if err := quantize(&coeffs, q, &natural); err != nil {
		return err
	}
	zigzag(&natural, dst)
	return nil
}

// transformBlocks transforms every block of p, in raster order. The
// blocks are independent, so rows of blocks are shared out among up to
// workers goroutines; each result lands at its own index and the output
// does not depend on the worker count. The error reported is that of the
// first failing block in raster order.
func transformBlocks(p *Plane, q *[blockSize]byte, workers int) ([]quantBlock, error) {
	bw, bh := blockGrid(p)
	out := make([]quantBlock, bw*bh)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, bh)

	transformRow := func(by int) error {
		for bx := 0; bx < bw; bx++ {
			i := by*bw + bx
			if err := transformBlock(p, bx, by, q, &out[i]); err != nil {
				return errors.WithMessagef(err, "block %d", i)
			}
		}
		return nil
	}
	if workers <= 1 {
		for by := 0; by < bh; by++ {
			if err := transformRow(by); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	// Workers claim rows from an atomic counter.
	var (
		nextRow atomic.Int32
		wg      sync.WaitGroup
		rowErrs = make([]error, bh)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				by := int(nextRow.Add(1)) - 1
				if by >= bh {
					return
				}
				rowErrs[by] = transformRow(by)
			}
		}()
	}
	wg.Wait()
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
