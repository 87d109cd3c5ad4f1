// Command grayjpeg is a command-line tool to encode images as baseline
// grayscale JPEGs. BMP, PNG, GIF and JPEG inputs are accepted; only their
// luminance is kept. It can also serve the generated JPEG over HTTP for a
// quick look in a browser.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"

	_ "image/gif"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"

	"github.com/dlecorfec/grayjpeg"
)

type config struct {
	in, out  string
	hostPort string
	quality  int
	workers  int
	verbose  bool
	analyze  bool
}

func main() {
	var c config
	flag.StringVar(&c.in, "i", "", "Input image file path")
	flag.StringVar(&c.out, "o", "", "Output JPEG file path")
	flag.IntVar(&c.quality, "q", grayjpeg.DefaultQuality, "Quality, 1-100")
	flag.IntVar(&c.workers, "workers", 0, "Goroutines for the per-block stages (0 = GOMAXPROCS)")
	flag.BoolVar(&c.verbose, "v", false, "Print a summary of each stage")
	flag.BoolVar(&c.analyze, "analyze", false, "Decode the output and print MSE and PSNR against the input luminance")
	flag.StringVar(&c.hostPort, "http", "", "Host and port for HTTP server serving output")
	flag.Parse()

	if (c.in == "" && c.hostPort == "") || c.out == "" {
		fmt.Fprintf(os.Stderr, "Input and output file paths must be specified\n")
		os.Exit(1)
	}

	if c.in != "" {
		if err := encodeFile(os.Stdout, &c); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	// test server for viewing the output
	if c.hostPort != "" {
		fmt.Printf("Serving %s on http://%s/\n", c.out, c.hostPort)
		http.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, c.out)
		}))
		if err := http.ListenAndServe(c.hostPort, nil); err != nil {
			fmt.Fprintf(os.Stderr, "cant start http server on %s: %s\n", c.hostPort, err)
			os.Exit(1)
		}
	}
}

// encodeFile encodes c.in to c.out, writing any report to w.
func encodeFile(w io.Writer, c *config) error {
	// Read input image
	file, err := os.Open(c.in)
	if err != nil {
		return errors.Wrapf(err, "cant open input %s", c.in)
	}
	defer file.Close()
	img, format, err := image.Decode(file)
	if err != nil {
		return errors.Wrapf(err, "cant decode input %s", c.in)
	}

	plane := grayjpeg.PlaneFromImage(img)
	if c.verbose {
		fmt.Fprintf(w, "%s image imported: %d x %d\n", format, plane.Width, plane.Height)
	}

	scan, err := grayjpeg.EncodeScan(plane, &grayjpeg.Options{
		Quality: c.quality,
		Workers: c.workers,
	})
	if err != nil {
		return errors.Wrapf(err, "cant encode %s", c.in)
	}
	if c.verbose {
		fmt.Fprintf(w, "Encoded %d blocks\n", scan.Blocks)
		fmt.Fprintf(w, "Original size (raw Y): %d bytes\n", plane.Width*plane.Height)
		fmt.Fprintf(w, "Compressed size (scan data): %d bytes\n", len(scan.Data))
	}

	// Create output file
	output, err := os.Create(c.out)
	if err != nil {
		return errors.Wrapf(err, "cant open output %s", c.out)
	}
	if err := grayjpeg.WriteContainer(output, scan); err != nil {
		output.Close()
		return errors.Wrapf(err, "cant write output %s", c.out)
	}
	if err := output.Close(); err != nil {
		return errors.Wrapf(err, "cant close output %s", c.out)
	}
	if c.verbose {
		if fi, err := os.Stat(c.out); err == nil {
			fmt.Fprintf(w, "JFIF file written: %s, %d bytes\n", c.out, fi.Size())
		}
	}

	if c.analyze {
		return analyze(w, c.in, c.out, plane)
	}
	return nil
}

// analyze decodes the written file and reports how far it is from the
// luminance that was encoded, and how much smaller it is than the source.
func analyze(w io.Writer, src, path string, plane *grayjpeg.Plane) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cant reopen output %s", path)
	}
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	if err != nil {
		return errors.Wrapf(err, "cant decode output %s", path)
	}
	gray, ok := decoded.(*image.Gray)
	if !ok {
		return errors.Errorf("output %s decoded as %T, want *image.Gray", path, decoded)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "cant stat input %s", src)
	}
	outInfo, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "cant stat output %s", path)
	}

	ref := plane.Gray()
	mse, psnr := grayjpeg.Compare(ref, gray)
	fmt.Fprintf(w, "Dimensions: %dx%d\n", plane.Width, plane.Height)
	fmt.Fprintf(w, "MSE: %.4f\n", mse)
	fmt.Fprintf(w, "PSNR: %.2f dB\n", psnr)
	if ssim, err := grayjpeg.SSIM(ref, gray); err == nil {
		fmt.Fprintf(w, "SSIM: %.4f\n", ssim)
	} else {
		fmt.Fprintf(w, "SSIM: n/a (%v)\n", err)
	}

	srcKB := float64(srcInfo.Size()) / 1024
	outKB := float64(outInfo.Size()) / 1024
	fmt.Fprintf(w, "Original size: %.2f KB\n", srcKB)
	fmt.Fprintf(w, "Compressed size: %.2f KB\n", outKB)
	fmt.Fprintf(w, "Compression ratio: %.2f : 1\n", srcKB/outKB)
	fmt.Fprintf(w, "Space saving: %.2f %%\n", (1-outKB/srcKB)*100)
	return nil
}
