package squashfs

import (
	"io"

	"github.com/pierrec/lz4"
)

func init() {
	RegisterDecompressor(Lz4, MakeDecompressorErr(func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(lz4.NewReader(r)), nil
	}))
}
