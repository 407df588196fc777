package squashfs

import "fmt"

// Package-specific error variables that can be used with errors.Is() for error handling.
var (
	// ErrBadMagic is returned when the superblock's magic field isn't "hsqs".
	ErrBadMagic = fmt.Errorf("invalid file, squashfs signature not found")

	// ErrWrongVersion is returned when the on-disk format isn't SquashFS 4.0.
	ErrWrongVersion = fmt.Errorf("invalid file version, expected squashfs 4.0")

	// ErrInconsistentBlockSize is returned when block_log doesn't match log2(block_size).
	ErrInconsistentBlockSize = fmt.Errorf("block_log does not match block_size")

	// ErrInvalidMetadataHeader is returned when a metadata block's length prefix is malformed.
	ErrInvalidMetadataHeader = fmt.Errorf("invalid metadata block header")

	// ErrTruncated is returned on a short read while streaming metadata or table bytes.
	ErrTruncated = fmt.Errorf("truncated squashfs data")

	// ErrDecompress is returned when a registered decompressor fails.
	ErrDecompress = fmt.Errorf("decompression failed")

	// ErrCorruptInodeTable is returned when the inode table has a trailing partial
	// record, or contains a duplicate inode number.
	ErrCorruptInodeTable = fmt.Errorf("corrupt inode table")

	// ErrCorruptDirTable is returned when the directory table can't be parsed.
	ErrCorruptDirTable = fmt.Errorf("corrupt directory table")

	// ErrUnknownInodeType is returned when an inode's type tag isn't one of the
	// fourteen basic/extended types defined by the format.
	ErrUnknownInodeType = fmt.Errorf("unknown inode type")

	// ErrDanglingInodeReference is returned when a directory entry references an
	// inode number that was never present in the inode table.
	ErrDanglingInodeReference = fmt.Errorf("dangling inode reference")

	// ErrCyclicDirectory is returned when the tree walker is about to enter a
	// directory inode it has already entered during the same walk, which can
	// only happen on a forged image.
	ErrCyclicDirectory = fmt.Errorf("cyclic directory reference")

	// ErrFileNotFound is returned when a requested path doesn't resolve to a node.
	ErrFileNotFound = fmt.Errorf("file not found")

	// ErrFileSizeMismatch is returned when reconstructed file content doesn't
	// match the size recorded on the inode.
	ErrFileSizeMismatch = fmt.Errorf("reconstructed file size does not match inode size")

	// ErrResourceLimit is returned when a caller-imposed byte ceiling would be
	// exceeded while accumulating the inode table or the directory table.
	ErrResourceLimit = fmt.Errorf("resource limit exceeded while parsing image")

	// ErrUnsupportedCompressor is returned by a registered decompressor that
	// exists only to report it cannot do the job (see comp_lzo.go).
	ErrUnsupportedCompressor = fmt.Errorf("unsupported compressor")

	// ErrNotDirectory is returned when attempting to perform directory
	// operations on a non-directory node.
	ErrNotDirectory = fmt.Errorf("not a directory")
)

// pathError wraps one of the sentinel errors above with the path that triggered it,
// following the same shape as fs.PathError.
type pathError struct {
	Op   string
	Path string
	Err  error
}

func (e *pathError) Error() string {
	return fmt.Sprintf("squashfs: %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *pathError) Unwrap() error {
	return e.Err
}

// inodeError wraps one of the sentinel errors above with the offending inode number.
type inodeError struct {
	Op    string
	Inode uint32
	Err   error
}

func (e *inodeError) Error() string {
	return fmt.Sprintf("squashfs: %s inode %d: %s", e.Op, e.Inode, e.Err)
}

func (e *inodeError) Unwrap() error {
	return e.Err
}
