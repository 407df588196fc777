package squashfs

import (
	"bytes"
	"fmt"
	"io"
)

// Compression identifies the image-wide compressor named in the superblock.
type Compression uint16

const (
	None  Compression = 0
	Gzip  Compression = 1
	Lzma  Compression = 2
	Lzo   Compression = 3
	Xz    Compression = 4
	Lz4   Compression = 5
	Zstd  Compression = 6
)

func (c Compression) String() string {
	switch c {
	case None:
		return "None"
	case Gzip:
		return "Gzip"
	case Lzma:
		return "Lzma"
	case Lzo:
		return "Lzo"
	case Xz:
		return "Xz"
	case Lz4:
		return "Lz4"
	case Zstd:
		return "Zstd"
	}
	return fmt.Sprintf("Compression(%d)", uint16(c))
}

// compressionOptionsSize is the nominal size, in bytes, of the compressor
// options structure that follows the superblock when flag bit 10
// (COMPRESSOR_OPTIONS) is set. Spec §4.3.
func (c Compression) compressionOptionsSize() int {
	switch c {
	case Gzip:
		return 8
	case Lzma:
		return 0
	case Lzo:
		return 8
	case Xz:
		return 8
	case Lz4:
		return 8
	case Zstd:
		return 4
	default:
		return 0
	}
}

// decompressor decodes one metadata/data/fragment block payload, the "decompress-into-buffer"
// external collaborator from spec §6.
type decompressor func(r io.Reader) (io.ReadCloser, error)

var handlers = map[Compression]decompressor{}

// RegisterDecompressor registers a decompressor for a compressor tag. The codec
// files (comp_xz.go, comp_zstd.go, ...) call this from an init().
func RegisterDecompressor(c Compression, fn decompressor) {
	handlers[c] = fn
}

// MakeDecompressor adapts a plain func(io.Reader) io.ReadCloser, the shape codecs that
// never fail to construct a reader use (e.g. klauspost/compress/zstd.ZipDecompressor),
// into a decompressor.
func MakeDecompressor(fn func(io.Reader) io.ReadCloser) decompressor {
	return func(r io.Reader) (io.ReadCloser, error) {
		return fn(r), nil
	}
}

// MakeDecompressorErr adapts a func(io.Reader) (io.ReadCloser, error) that is already
// shaped like a decompressor; it exists purely for readability at call sites.
func MakeDecompressorErr(fn func(io.Reader) (io.ReadCloser, error)) decompressor {
	return fn
}

// decompress runs the registered decompressor for comp over in, returning at most
// outCap bytes. Callers must not assume the result is exactly outCap bytes long;
// squashfs permits compressed payloads to decode to fewer bytes than the block size.
func decompress(comp Compression, in []byte, outCap int) ([]byte, error) {
	if comp == None {
		return in, nil
	}
	h, ok := handlers[comp]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompressor, comp)
	}
	rc, err := h(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecompress, err)
	}
	defer rc.Close()

	buf := make([]byte, outCap)
	n := 0
	for n < outCap {
		m, rerr := rc.Read(buf[n:])
		n += m
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("%w: %s", ErrDecompress, rerr)
		}
	}
	return buf[:n], nil
}
