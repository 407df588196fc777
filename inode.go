package squashfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// blockSizeUncompressedBit marks a data/fragment block size entry as stored
// uncompressed (spec §3: "bit 24 set => uncompressed"). Named explicitly
// rather than left as a magic literal at each call site: the retrieved
// teacher snapshot used 0x1000000 for this in one place and 0xfffff (a
// 20-bit mask, wrong) for the length in another.
const blockSizeUncompressedBit = 1 << 24
const blockSizeMask = blockSizeUncompressedBit - 1

const noFragment = 0xffffffff

// InodeHeader is the 16-byte header common to every inode variant (spec §3).
type InodeHeader struct {
	Type        Type
	Permissions uint16
	UidIdx      uint16
	GidIdx      uint16
	ModTime     uint32
	InodeNumber uint32
}

// Inode is a discriminated record: Type says which of the type-specific
// fields below are meaningful. A flat struct with a type tag, rather than one
// Go type per variant, mirrors the on-disk format's own shape directly and
// matches how the teacher modeled it.
type Inode struct {
	InodeHeader

	// Directory (basic & extended)
	BlockIndex  uint32
	DirFileSize uint32 // includes the 3-byte phantom terminator
	BlockOffset uint16
	ParentInode uint32
	IndexCount  uint16

	// File (basic & extended)
	BlocksStart uint64
	FileSize    uint64
	FragmentRef uint32
	FragOffset  uint32
	BlockSizes  []uint32
	Sparse      uint64

	// Symlink
	Target []byte

	// Device
	DeviceNumber uint32

	// Extended variants only; zero on basic ones
	NLink    uint32
	XattrIdx uint32
}

// HasFragment reports whether a file inode has a fragment tail rather than
// the final block being a full, separately stored block.
func (ino *Inode) HasFragment() bool {
	return ino.FragmentRef != noFragment
}

// fullDataBlocks returns how many full (non-fragment) data blocks a file
// inode has, per spec §3: floor(file_size/block_size), rounded up instead
// when there is no fragment for the remainder.
func fullDataBlocks(fileSize uint64, blockSize uint32, hasFragment bool) int {
	n := int(fileSize / uint64(blockSize))
	if !hasFragment && fileSize%uint64(blockSize) != 0 {
		n++
	}
	return n
}

// parseInode decodes one inode record from r, advancing r past it.
func parseInode(r *bytes.Reader, blockSize uint32) (*Inode, error) {
	ino := &Inode{}
	for _, f := range []any{&ino.Type, &ino.Permissions, &ino.UidIdx, &ino.GidIdx, &ino.ModTime, &ino.InodeNumber} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}

	switch ino.Type {
	case DirType:
		var fileSize16 uint16
		if err := readFields(r, &ino.BlockIndex, &ino.NLink, &fileSize16, &ino.BlockOffset, &ino.ParentInode); err != nil {
			return nil, err
		}
		ino.DirFileSize = uint32(fileSize16)

	case XDirType:
		if err := readFields(r, &ino.NLink, &ino.DirFileSize, &ino.BlockIndex, &ino.ParentInode, &ino.IndexCount, &ino.BlockOffset, &ino.XattrIdx); err != nil {
			return nil, err
		}

	case FileType:
		var startBlock, fileSize32 uint32
		if err := readFields(r, &startBlock, &ino.FragmentRef, &ino.FragOffset, &fileSize32); err != nil {
			return nil, err
		}
		ino.BlocksStart = uint64(startBlock)
		ino.FileSize = uint64(fileSize32)
		if err := readBlockSizes(r, ino, blockSize); err != nil {
			return nil, err
		}

	case XFileType:
		if err := readFields(r, &ino.BlocksStart, &ino.FileSize, &ino.Sparse, &ino.NLink, &ino.FragmentRef, &ino.FragOffset, &ino.XattrIdx); err != nil {
			return nil, err
		}
		if err := readBlockSizes(r, ino, blockSize); err != nil {
			return nil, err
		}

	case SymlinkType, XSymlinkType:
		var targetSize uint32
		if err := readFields(r, &ino.NLink, &targetSize); err != nil {
			return nil, err
		}
		if targetSize > 65536 {
			return nil, fmt.Errorf("%w: implausible symlink target length %d", ErrCorruptInodeTable, targetSize)
		}
		buf := make([]byte, targetSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		ino.Target = buf
		if ino.Type == XSymlinkType {
			if err := readFields(r, &ino.XattrIdx); err != nil {
				return nil, err
			}
		}

	case BlockDevType, CharDevType:
		if err := readFields(r, &ino.NLink, &ino.DeviceNumber); err != nil {
			return nil, err
		}

	case XBlockDevType, XCharDevType:
		if err := readFields(r, &ino.NLink, &ino.DeviceNumber, &ino.XattrIdx); err != nil {
			return nil, err
		}

	case FifoType, SocketType:
		if err := readFields(r, &ino.NLink); err != nil {
			return nil, err
		}

	case XFifoType, XSocketType:
		if err := readFields(r, &ino.NLink, &ino.XattrIdx); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownInodeType, uint16(ino.Type))
	}

	return ino, nil
}

// readFields reads each field in order via binary.Read, little-endian.
func readFields(r *bytes.Reader, fields ...any) error {
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// readBlockSizes reads a basic/extended file inode's block_sizes array. Each
// entry's low 24 bits are a length, bit 24 says "stored uncompressed".
func readBlockSizes(r *bytes.Reader, ino *Inode, blockSize uint32) error {
	count := fullDataBlocks(ino.FileSize, blockSize, ino.HasFragment())
	ino.BlockSizes = make([]uint32, count)
	for i := 0; i < count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &ino.BlockSizes[i]); err != nil {
			return err
		}
	}
	return nil
}

// BlockCompressed reports whether the i'th data block of this file inode is
// stored compressed, and BlockLen its stored (on-disk) length.
func (ino *Inode) BlockCompressed(i int) bool {
	return ino.BlockSizes[i]&blockSizeUncompressedBit == 0
}

func (ino *Inode) BlockLen(i int) uint32 {
	return ino.BlockSizes[i] & blockSizeMask
}

// parseInodeTable decodes every inode in data (the concatenated, decompressed
// inode-table metadata blocks) into a map keyed by inode number, per spec
// §4.4. A trailing partial record, or a duplicate inode number, is reported
// as ErrCorruptInodeTable rather than silently ignored.
func parseInodeTable(data []byte, blockSize uint32) (map[uint32]*Inode, error) {
	r := bytes.NewReader(data)
	inodes := make(map[uint32]*Inode)

	for r.Len() > 0 {
		left := r.Len()
		ino, err := parseInode(r, blockSize)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: trailing partial record (%d bytes left)", ErrCorruptInodeTable, left)
			}
			return nil, err
		}
		if _, dup := inodes[ino.InodeNumber]; dup {
			return nil, fmt.Errorf("%w: duplicate inode number %d", ErrCorruptInodeTable, ino.InodeNumber)
		}
		inodes[ino.InodeNumber] = ino
	}

	return inodes, nil
}
