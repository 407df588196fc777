package squashfs

import (
	"encoding/binary"
	"log"
)

// CompressionOptions holds the decoded compressor-specific parameters that
// follow the superblock when flag bit 10 (COMPRESSOR_OPTIONS) is set.
// For Gzip, Lzo, Xz and Lz4 the first two 32-bit words of the payload are
// stored as-is in DictionarySize and FilterFlags, whatever they mean for that
// compressor (for gzip the first word is the compression level); for Zstd the
// single word is stored in CompressionLevel.
type CompressionOptions struct {
	Compressor Compression

	// Gzip/Lzo/Xz/Lz4
	DictionarySize uint32
	FilterFlags    uint32 // meaning is compressor-specific

	// Zstd
	CompressionLevel uint32

	// Raw bytes beyond the nominal size for the compressor, preserved for
	// round-tripping and diagnostics rather than discarded (spec §4.3).
	Extra []byte
}

// readCompressionOptions decodes a compression-options metadata block payload
// per the per-compressor layout table in spec §4.3. It tolerates (and warns
// on) a payload larger than the documented size, per the Design Notes'
// resolution of that Open Question.
func readCompressionOptions(comp Compression, payload []byte) (*CompressionOptions, error) {
	nominal := comp.compressionOptionsSize()
	if len(payload) < nominal {
		return nil, ErrTruncated
	}
	if len(payload) != nominal {
		log.Printf("squashfs: non-standard compression options for %s: got %d bytes, expected %d", comp, len(payload), nominal)
	}

	opts := &CompressionOptions{Compressor: comp}
	switch comp {
	case Gzip, Lzo, Xz, Lz4:
		if nominal >= 8 {
			opts.DictionarySize = binary.LittleEndian.Uint32(payload[0:4])
			opts.FilterFlags = binary.LittleEndian.Uint32(payload[4:8])
		}
	case Zstd:
		opts.CompressionLevel = binary.LittleEndian.Uint32(payload[0:4])
	case Lzma, None:
		// no documented fields
	}
	if len(payload) > nominal {
		opts.Extra = append([]byte(nil), payload[nominal:]...)
	}
	return opts, nil
}

// Option configures an Archive at construction time.
type Option func(*archiveConfig) error

// archiveConfig collects the options passed to Open/OpenAt before construction.
type archiveConfig struct {
	maxBytes int64
}

// WithMaxBytes caps the number of decompressed bytes accumulated for the
// inode table, and separately for the directory table, failing with
// ErrResourceLimit once a table would exceed it. The fragment, export and id
// lookup tables and file-content reads are not bounded by it; the
// data-and-fragments region is never captured into memory. A value of 0 (the
// default) means unbounded.
func WithMaxBytes(n int64) Option {
	return func(cfg *archiveConfig) error {
		cfg.maxBytes = n
		return nil
	}
}
