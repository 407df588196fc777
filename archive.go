package squashfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Archive is an opened, fully-indexed SquashFS image: the superblock plus
// every table needed to resolve paths and read file content. It owns no
// mutable stream position — everything is addressed through addressedReader
// — so the only state that needs protecting after construction is the
// fragment cache.
type Archive struct {
	sb       *Superblock
	compOpts *CompressionOptions
	ar       *addressedReader

	inodes map[uint32]*Inode
	root   *Inode

	dirStream *metadataBlockStream

	fragments   []Fragment
	exportTable []inodeRef
	idTable     []uint32

	fragCache *fragmentCache
	cfg       archiveConfig
}

// Open parses the SquashFS image starting at offset 0 of r.
func Open(r io.ReaderAt, opts ...Option) (*Archive, error) {
	return OpenAt(r, 0, opts...)
}

// OpenAt parses a SquashFS image embedded in r starting at byte offset start,
// so a filesystem image that is one section of a larger file (a firmware
// blob, say) can be opened without first being copied out.
func OpenAt(r io.ReaderAt, start int64, opts ...Option) (*Archive, error) {
	var cfg archiveConfig
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}

	ar := newAddressedReader(r, start)

	sbBuf := make([]byte, superblockBytes)
	if err := ar.readAt(sbBuf, 0); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTruncated, err)
	}
	sb, err := ReadSuperblock(bytes.NewReader(sbBuf))
	if err != nil {
		return nil, err
	}

	var compOpts *CompressionOptions
	if sb.compressionOptionsPresent() {
		c := ar.cursor(int64(superblockBytes))
		payload, err := readMetadataBlock(c, sb.Compressor)
		if err != nil {
			return nil, err
		}
		compOpts, err = readCompressionOptions(sb.Compressor, payload)
		if err != nil {
			return nil, err
		}
	}
	// The data-and-fragments region that follows is addressed lazily through
	// ar, never captured into memory up front.

	a := &Archive{
		sb:        sb,
		compOpts:  compOpts,
		ar:        ar,
		fragCache: newFragmentCache(),
		cfg:       cfg,
	}

	if err := a.loadInodes(); err != nil {
		return nil, err
	}
	if err := a.loadDirectories(); err != nil {
		return nil, err
	}
	if err := a.loadFragments(); err != nil {
		return nil, err
	}
	if err := a.loadExportTable(); err != nil {
		return nil, err
	}
	if err := a.loadIDTable(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Archive) loadInodes() error {
	stream := newMetadataBlockStream(a.ar.cursor(int64(a.sb.InodeTable)), a.sb.Compressor)
	if err := stream.readUntil(int64(a.sb.DirTable), a.cfg.maxBytes); err != nil {
		return err
	}

	inodes, err := parseInodeTable(stream.data, a.sb.BlockSize)
	if err != nil {
		return err
	}
	a.inodes = inodes

	ref := inodeRef(a.sb.RootInode)
	pos, err := stream.resolveOffset(ref.Index(), uint16(ref.Offset()))
	if err != nil {
		return fmt.Errorf("%w: root inode reference: %s", ErrCorruptInodeTable, err)
	}
	root, err := parseInode(bytes.NewReader(stream.data[pos:]), a.sb.BlockSize)
	if err != nil {
		return fmt.Errorf("%w: root inode: %s", ErrCorruptInodeTable, err)
	}
	if !root.Type.IsDir() {
		return fmt.Errorf("%w: root inode is not a directory", ErrCorruptInodeTable)
	}
	a.root = root
	return nil
}

// dirTableEnd picks the byte offset the directory table region ends at: the
// nearest table that follows it, or bytes_used if none of the optional
// tables are present (spec §9's directory-table-bound Open Question).
func (a *Archive) dirTableEnd() int64 {
	best := a.sb.BytesUsed
	for _, ptr := range []uint64{a.sb.FragTable, a.sb.ExportTable, a.sb.IdTable, a.sb.XattrTable} {
		if a.sb.hasTable(ptr) && ptr < best {
			best = ptr
		}
	}
	return int64(best)
}

func (a *Archive) loadDirectories() error {
	stream := newMetadataBlockStream(a.ar.cursor(int64(a.sb.DirTable)), a.sb.Compressor)
	if err := stream.readUntil(a.dirTableEnd(), a.cfg.maxBytes); err != nil {
		return err
	}
	a.dirStream = stream
	return nil
}

func (a *Archive) loadFragments() error {
	if a.sb.FragCount == 0 || !a.sb.hasTable(a.sb.FragTable) {
		return nil
	}
	frags, err := readLookupTable(a.ar, a.sb.Compressor, a.sb.FragTable, a.sb.FragCount, fragmentEntrySize, decodeFragment)
	if err != nil {
		return err
	}
	a.fragments = frags
	return nil
}

func (a *Archive) loadExportTable() error {
	if !a.sb.hasTable(a.sb.ExportTable) {
		return nil
	}
	refs, err := readLookupTable(a.ar, a.sb.Compressor, a.sb.ExportTable, a.sb.InodeCount, 8, decodeInodeRef)
	if err != nil {
		return err
	}
	a.exportTable = refs
	return nil
}

// loadIDTable parses the uid/gid table whenever the image declares any
// entries, independent of the UNCOMPRESSED_IDS flag: that flag only affects
// how the table's metadata blocks are stored, never whether it exists.
func (a *Archive) loadIDTable() error {
	if a.sb.IdCount == 0 {
		return nil
	}
	ids, err := readLookupTable(a.ar, a.sb.Compressor, a.sb.IdTable, uint32(a.sb.IdCount), 4, decodeID)
	if err != nil {
		return err
	}
	a.idTable = ids
	return nil
}

func decodeInodeRef(b []byte) inodeRef {
	return inodeRef(binary.LittleEndian.Uint64(b))
}

func decodeID(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// Superblock returns the image's parsed header.
func (a *Archive) Superblock() *Superblock { return a.sb }

// CompressionOptions returns the decoded compressor-specific options, or nil
// if the image's flags didn't include one.
func (a *Archive) CompressionOptions() *CompressionOptions { return a.compOpts }

// RootInode returns the filesystem's root directory inode.
func (a *Archive) RootInode() *Inode { return a.root }

// Inode looks up an inode by its on-disk inode number.
func (a *Archive) Inode(number uint32) (*Inode, error) {
	ino, ok := a.inodes[number]
	if !ok {
		return nil, &inodeError{Op: "lookup", Inode: number, Err: ErrDanglingInodeReference}
	}
	return ino, nil
}

// Readdir returns the decoded listing of a directory inode.
func (a *Archive) Readdir(dir *Inode) ([]DirEntry, error) {
	if !dir.Type.IsDir() {
		return nil, ErrNotDirectory
	}
	return parseDirectory(a.dirStream, dir.BlockIndex, dir.BlockOffset, dir.DirFileSize)
}

// ResolveID maps a 16-bit uid/gid table index, as stored on an inode, to the
// numeric id it represents.
func (a *Archive) ResolveID(idx uint16) (uint32, error) {
	if int(idx) >= len(a.idTable) {
		return 0, fmt.Errorf("%w: id index %d out of range (%d entries)", ErrCorruptInodeTable, idx, len(a.idTable))
	}
	return a.idTable[idx], nil
}

// ExportTable returns the parsed NFS export table (inode number -> inodeRef
// by export index), or nil if the image doesn't carry one.
func (a *Archive) ExportTable() []inodeRef { return a.exportTable }

// IDTable returns the parsed uid/gid table (index -> numeric id), or nil if
// the image declares no id entries.
func (a *Archive) IDTable() []uint32 { return a.idTable }
