package squashfs

import (
	"encoding/binary"
	"sync"
)

// fragmentEntrySize is the on-disk width of one fragment table entry: a
// uint64 start, a uint32 size (with the same compressed-flag/length encoding
// data block sizes use), and 4 bytes unused.
const fragmentEntrySize = 16

// Fragment is one entry of the fragment table: the on-disk location of a
// block packing multiple files' tail fragments together (spec §4.6).
type Fragment struct {
	Start uint64
	Size  uint32
}

func (f Fragment) Compressed() bool {
	return f.Size&blockSizeUncompressedBit == 0
}

func (f Fragment) Len() uint32 {
	return f.Size & blockSizeMask
}

func decodeFragment(b []byte) Fragment {
	return Fragment{
		Start: binary.LittleEndian.Uint64(b[0:8]),
		Size:  binary.LittleEndian.Uint32(b[8:12]),
	}
}

// fragmentCache memoizes decompressed fragment blocks, scoped to a single
// Archive rather than held globally, so that two Archives opened in the same
// process never share mutable state (spec §5).
type fragmentCache struct {
	mu    sync.Mutex
	cache map[uint64][]byte
}

func newFragmentCache() *fragmentCache {
	return &fragmentCache{cache: make(map[uint64][]byte)}
}

// get decompresses and caches the fragment block at fr.Start, or returns the
// already-cached bytes for a fragment block shared by an earlier read.
// blockSize bounds the decompressed size: a fragment block is sized like a
// regular data block, never larger than the filesystem's block size.
func (fc *fragmentCache) get(ar *addressedReader, comp Compression, fr Fragment, blockSize uint32) ([]byte, error) {
	fc.mu.Lock()
	if b, ok := fc.cache[fr.Start]; ok {
		fc.mu.Unlock()
		return b, nil
	}
	fc.mu.Unlock()

	buf := make([]byte, fr.Len())
	if err := ar.readAt(buf, int64(fr.Start)); err != nil {
		return nil, err
	}

	var out []byte
	if !fr.Compressed() {
		out = buf
	} else {
		decoded, err := decompress(comp, buf, int(blockSize))
		if err != nil {
			return nil, err
		}
		out = decoded
	}

	fc.mu.Lock()
	fc.cache[fr.Start] = out
	fc.mu.Unlock()
	return out, nil
}
