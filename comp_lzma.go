package squashfs

import (
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// squashfs's "lzma" compressor is a raw LZMA1 stream (the legacy alone format,
// no xz container), so this uses the xz module's lzma subpackage directly.
func init() {
	RegisterDecompressor(Lzma, MakeDecompressorErr(func(r io.Reader) (io.ReadCloser, error) {
		rc, err := lzma.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(rc), nil
	}))
}
