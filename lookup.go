package squashfs

import (
	"encoding/binary"
	"fmt"
)

// readLookupTable implements the generic "indirect lookup table" shape spec
// §4.6 describes for the fragment, export and id tables: a flat array of
// fixed-size entries, stored across one or more metadata blocks, whose
// on-disk locations are themselves recorded in an array of absolute uint64
// pointers living at indexPtr. count is the number of T entries; entrySize is
// the on-disk width of one entry.
func readLookupTable[T any](ar *addressedReader, comp Compression, indexPtr uint64, count uint32, entrySize int, decode func([]byte) T) ([]T, error) {
	if count == 0 {
		return nil, nil
	}

	entriesPerBlock := metadataPayloadMax / entrySize
	numBlocks := (int(count) + entriesPerBlock - 1) / entriesPerBlock

	ptrBuf := make([]byte, numBlocks*8)
	if err := ar.readAt(ptrBuf, int64(indexPtr)); err != nil {
		return nil, fmt.Errorf("%w: reading lookup table index: %s", ErrTruncated, err)
	}

	var data []byte
	for i := 0; i < numBlocks; i++ {
		blockPtr := binary.LittleEndian.Uint64(ptrBuf[i*8 : i*8+8])
		c := ar.cursor(int64(blockPtr))
		payload, err := readMetadataBlock(c, comp)
		if err != nil {
			return nil, err
		}
		data = append(data, payload...)
	}

	if len(data) < int(count)*entrySize {
		return nil, fmt.Errorf("%w: lookup table shorter than count*entrySize", ErrTruncated)
	}

	out := make([]T, count)
	for i := uint32(0); i < count; i++ {
		out[i] = decode(data[int(i)*entrySize : int(i)*entrySize+entrySize])
	}
	return out, nil
}
