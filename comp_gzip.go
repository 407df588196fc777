package squashfs

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// squashfs's "gzip" compressor is a raw zlib (RFC 1950) stream, not the
// .gz container format, so this wraps zlib.NewReader rather than gzip.NewReader.
func init() {
	RegisterDecompressor(Gzip, MakeDecompressorErr(func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	}))
}
