package squashfs

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"
)

// blockLogicalLen returns how many bytes of file content the i'th data block
// logically covers: block_size for every block but the last, which may be
// shorter.
func (ino *Inode) blockLogicalLen(i int, blockSize uint64) uint64 {
	start := uint64(i) * blockSize
	if start >= ino.FileSize {
		return 0
	}
	remain := ino.FileSize - start
	if remain > blockSize {
		return blockSize
	}
	return remain
}

// ReadFileAt fills buf with the content of the file inode ino starting at
// off, per spec §4.8: walk data blocks (decompressing each, or synthesizing
// a zero-filled hole for a sparse block), then the fragment tail if any.
func (a *Archive) ReadFileAt(ino *Inode, buf []byte, off int64) (int, error) {
	if !ino.Type.IsRegular() {
		return 0, fmt.Errorf("squashfs: inode %d is not a regular file", ino.InodeNumber)
	}
	if uint64(off) >= ino.FileSize {
		return 0, io.EOF
	}
	if uint64(off)+uint64(len(buf)) > ino.FileSize {
		buf = buf[:ino.FileSize-uint64(off)]
	}

	blockSize := uint64(a.sb.BlockSize)
	block := int(uint64(off) / blockSize)
	skip := int(uint64(off) % blockSize)

	var pos uint64 = ino.BlocksStart
	for i := 0; i < block; i++ {
		pos += uint64(ino.BlockLen(i))
	}

	n := 0
	for len(buf) > 0 {
		var data []byte

		switch {
		case block < len(ino.BlockSizes):
			size := ino.BlockLen(block)
			if size == 0 {
				data = make([]byte, ino.blockLogicalLen(block, blockSize))
			} else {
				raw := make([]byte, size)
				if err := a.ar.readAt(raw, int64(pos)); err != nil {
					return n, fmt.Errorf("%w: %s", ErrTruncated, err)
				}
				pos += uint64(size)
				if ino.BlockCompressed(block) {
					var err error
					data, err = decompress(a.sb.Compressor, raw, int(blockSize))
					if err != nil {
						return n, err
					}
				} else {
					data = raw
				}
			}

		case ino.HasFragment():
			fr, tailOff, tailLen, err := a.fragmentTail(ino, block, blockSize)
			if err != nil {
				return n, err
			}
			full, err := a.fragCache.get(a.ar, a.sb.Compressor, fr, a.sb.BlockSize)
			if err != nil {
				return n, err
			}
			if tailOff+tailLen > len(full) {
				return n, fmt.Errorf("%w: fragment tail extends past decompressed block", ErrFileSizeMismatch)
			}
			data = full[tailOff : tailOff+tailLen]

		default:
			return n, io.EOF
		}

		if skip > 0 {
			if skip >= len(data) {
				data = nil
			} else {
				data = data[skip:]
			}
			skip = 0
		}

		c := copy(buf, data)
		n += c
		buf = buf[c:]
		block++
	}

	return n, nil
}

// fragmentTail resolves the fragment table entry and the byte range within
// its decompressed block that holds this file's tail.
func (a *Archive) fragmentTail(ino *Inode, block int, blockSize uint64) (Fragment, int, int, error) {
	if block != len(ino.BlockSizes) {
		return Fragment{}, 0, 0, fmt.Errorf("%w: read past last data block without reaching fragment", ErrFileSizeMismatch)
	}
	if int(ino.FragmentRef) >= len(a.fragments) {
		return Fragment{}, 0, 0, fmt.Errorf("%w: fragment index %d out of range", ErrCorruptInodeTable, ino.FragmentRef)
	}
	tailLen := int(ino.blockLogicalLen(block, blockSize))
	return a.fragments[ino.FragmentRef], int(ino.FragOffset), tailLen, nil
}

// ReadFile reads the entire content of a file inode, verifying the number of
// bytes reconstructed matches the inode's recorded size (spec §4.8).
func (a *Archive) ReadFile(ino *Inode) ([]byte, error) {
	buf := make([]byte, ino.FileSize)
	n, err := a.ReadFileAt(ino, buf, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if uint64(n) != ino.FileSize {
		return nil, fmt.Errorf("%w: reconstructed %d bytes, inode says %d", ErrFileSizeMismatch, n, ino.FileSize)
	}
	return buf, nil
}

// file adapts an Archive + file Inode pair to fs.File and io.ReaderAt.
type file struct {
	a    *Archive
	ino  *Inode
	name string
	pos  int64
}

var _ fs.File = (*file)(nil)
var _ io.ReaderAt = (*file)(nil)

// OpenFile returns an fs.File for a regular file inode within a, suitable
// for handing to callers that only want to stream one file's content.
func OpenFile(a *Archive, ino *Inode, name string) fs.File {
	if ino.Type.IsDir() {
		return &dirFile{a: a, ino: ino, name: name}
	}
	return &file{a: a, ino: ino, name: name}
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.a.ReadFileAt(f.ino, p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *file) ReadAt(p []byte, off int64) (int, error) {
	return f.a.ReadFileAt(f.ino, p, off)
}

func (f *file) Stat() (fs.FileInfo, error) {
	return &fileinfo{name: path.Base(f.name), ino: f.ino}, nil
}

func (f *file) Close() error { return nil }

// dirFile adapts a directory Inode to fs.ReadDirFile.
type dirFile struct {
	a       *Archive
	ino     *Inode
	name    string
	entries []DirEntry
	read    bool
}

var _ fs.ReadDirFile = (*dirFile)(nil)

func (d *dirFile) Read(p []byte) (int, error) {
	return 0, fs.ErrInvalid
}

func (d *dirFile) Stat() (fs.FileInfo, error) {
	return &fileinfo{name: path.Base(d.name), ino: d.ino}, nil
}

func (d *dirFile) Close() error { return nil }

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.read {
		entries, err := d.a.Readdir(d.ino)
		if err != nil {
			return nil, err
		}
		d.entries = entries
		d.read = true
	}
	if n <= 0 {
		out := make([]fs.DirEntry, 0, len(d.entries))
		for _, e := range d.entries {
			out = append(out, d.dirEntry(e))
		}
		d.entries = nil
		return out, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	if n > len(d.entries) {
		n = len(d.entries)
	}
	out := make([]fs.DirEntry, 0, n)
	for _, e := range d.entries[:n] {
		out = append(out, d.dirEntry(e))
	}
	d.entries = d.entries[n:]
	return out, nil
}

func (d *dirFile) dirEntry(e DirEntry) fs.DirEntry {
	ino, err := d.a.Inode(e.InodeNumber)
	if err != nil {
		ino = &Inode{InodeHeader: InodeHeader{Type: e.Type, InodeNumber: e.InodeNumber}}
	}
	return &fileinfo{name: e.Name, ino: ino}
}

// fileinfo adapts an Inode and a display name to fs.FileInfo / fs.DirEntry.
type fileinfo struct {
	name string
	ino  *Inode
}

var _ fs.FileInfo = (*fileinfo)(nil)
var _ fs.DirEntry = (*fileinfo)(nil)

func (fi *fileinfo) Name() string { return fi.name }

func (fi *fileinfo) Size() int64 {
	if fi.ino.Type.Basic() == FileType {
		return int64(fi.ino.FileSize)
	}
	return 0
}

func (fi *fileinfo) Mode() fs.FileMode {
	return UnixToMode(uint32(fi.ino.Permissions)) | fi.ino.Type.Mode()
}

func (fi *fileinfo) ModTime() time.Time {
	return time.Unix(int64(fi.ino.ModTime), 0)
}

func (fi *fileinfo) IsDir() bool { return fi.ino.Type.IsDir() }

func (fi *fileinfo) Sys() any { return fi.ino }

func (fi *fileinfo) Type() fs.FileMode { return fi.Mode().Type() }

func (fi *fileinfo) Info() (fs.FileInfo, error) { return fi, nil }
