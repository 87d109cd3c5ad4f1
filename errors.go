package grayjpeg

import "github.com/pkg/errors"

var (
	// ErrInvalidDimensions is returned for planes with a zero or negative
	// side, or whose sample count does not match Width*Height, and by SSIM
	// for images smaller than its window.
	ErrInvalidDimensions = errors.New("grayjpeg: invalid plane dimensions")
	// ErrImageTooLarge is returned when a side does not fit the 16-bit
	// SOF0 size fields.
	ErrImageTooLarge = errors.New("grayjpeg: image is too large to encode")
	// ErrCategoryOverflow is returned when a quantized value needs a
	// magnitude category the fixed Huffman tables cannot code: above 11
	// for a DC difference, above 10 for an AC coefficient. Samples whose
	// coefficients are not finite 16-bit values fail with it too.
	ErrCategoryOverflow = errors.New("grayjpeg: coefficient magnitude category out of range")
)
