package squashfs

import (
	"encoding/binary"
	"fmt"
)

// metadataPayloadMax is the largest a decompressed metadata block payload
// may be; readers must not assume compressed payloads decode to exactly
// this many bytes, only at most this many.
const metadataPayloadMax = 8192

// readMetadataBlock implements the metadata block codec (spec §4.2): read the
// 2-byte little-endian header, read the framed payload, and decompress it
// unless the header's high bit says it's already plaintext.
func readMetadataBlock(c *cursor, comp Compression) ([]byte, error) {
	var hdr [2]byte
	if err := c.readExact(hdr[:]); err != nil {
		return nil, ErrTruncated
	}
	h := binary.LittleEndian.Uint16(hdr[:])
	length := h & 0x7fff
	compressed := h&0x8000 == 0

	if length == 0 {
		return nil, ErrInvalidMetadataHeader
	}

	buf := make([]byte, length)
	if err := c.readExact(buf); err != nil {
		return nil, ErrTruncated
	}

	if !compressed {
		return buf, nil
	}
	out, err := decompress(comp, buf, metadataPayloadMax)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// metadataBlockStream concatenates the output of successive metadata blocks
// read from a cursor, recording both where each block started on disk
// (relative to the section) and where its decompressed bytes land in the
// flattened stream. Inode and directory references point at the former;
// resolving one into a position in data needs both (spec §4.4, §4.5).
type metadataBlockStream struct {
	c    *cursor
	comp Compression

	// blockStarts[i] is block i's on-disk start offset, relative to the
	// section's first byte. This is what inode_ref / block_index fields
	// reference.
	blockStarts []uint64

	// blockDecompStart[i] is the byte offset in data at which block i's
	// decompressed payload begins.
	blockDecompStart []int

	data []byte
}

// resolveOffset turns a (blockIndex, intraBlockOffset) reference — the shape
// of both inodeRef and a directory's (block_index, block_offset) pair — into
// an absolute index into s.data.
func (s *metadataBlockStream) resolveOffset(blockIndex uint32, intraBlockOffset uint16) (int, error) {
	for i, start := range s.blockStarts {
		if start == uint64(blockIndex) {
			return s.blockDecompStart[i] + int(intraBlockOffset), nil
		}
	}
	return 0, fmt.Errorf("%w: no metadata block at offset %d", ErrCorruptInodeTable, blockIndex)
}

func newMetadataBlockStream(c *cursor, comp Compression) *metadataBlockStream {
	return &metadataBlockStream{c: c, comp: comp}
}

// readUntil pulls metadata blocks from the cursor until its image position
// reaches end (exclusive), recording each block's start offset relative to
// the position the cursor had when readUntil was first called.
func (s *metadataBlockStream) readUntil(end int64, maxBytes int64) error {
	base := s.c.position()
	for s.c.position() < end {
		blockStart := uint64(s.c.position() - base)
		bytes, err := readMetadataBlock(s.c, s.comp)
		if err != nil {
			return err
		}
		if maxBytes > 0 && int64(len(s.data)+len(bytes)) > maxBytes {
			return ErrResourceLimit
		}
		s.blockStarts = append(s.blockStarts, blockStart)
		s.blockDecompStart = append(s.blockDecompStart, len(s.data))
		s.data = append(s.data, bytes...)
	}
	return nil
}
