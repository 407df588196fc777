package squashfs

import (
	"fmt"
	"io"
)

// No pure-Go LZO decompressor appears anywhere in the example corpus this
// core was built from, nor is there a commonly-maintained one in the wider
// ecosystem. Rather than silently producing garbage, images compressed
// with LZO fail with a clear, named error.
func init() {
	RegisterDecompressor(Lzo, func(r io.Reader) (io.ReadCloser, error) {
		return nil, fmt.Errorf("%w: lzo", ErrUnsupportedCompressor)
	})
}
