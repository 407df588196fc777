package squashfs

import "github.com/klauspost/compress/zstd"

func init() {
	RegisterDecompressor(Zstd, MakeDecompressor(zstd.ZipDecompressor()))
}
