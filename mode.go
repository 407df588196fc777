package squashfs

import (
	"io/fs"
)

// squashfs internal modes are based on linux, so use these methods:
// based on: https://golang.org/src/os/stat_linux.go

const (
	S_IFDIR  = 0x4000
	S_IFBLK  = 0x6000
	S_IFCHR  = 0x2000
	S_IFIFO  = 0x1000
	S_IFLNK  = 0xa000
	S_IFSOCK = 0xc000

	S_ISVTX = 0x200
	S_ISGID = 0x400
	S_ISUID = 0x800
)

// UnixToMode converts a unix permission/type word, as stored on an inode, to
// an fs.FileMode. This is the only direction the read-only core needs: node
// construction (fileinfo.Mode) calls it, nothing here ever goes back to a
// unix mode word.
func UnixToMode(mode uint32) fs.FileMode {
	res := fs.FileMode(mode & 0777)

	switch mode & 0xf000 {
	case S_IFCHR:
		res |= fs.ModeCharDevice
	case S_IFBLK:
		res |= fs.ModeDevice
	case S_IFDIR:
		res |= fs.ModeDir
	case S_IFIFO:
		res |= fs.ModeNamedPipe
	case S_IFLNK:
		res |= fs.ModeSymlink
	case S_IFSOCK:
		res |= fs.ModeSocket
	}

	// extra flags
	if mode&S_ISGID == S_ISGID {
		res |= fs.ModeSetgid
	}

	if mode&S_ISUID == S_ISUID {
		res |= fs.ModeSetuid
	}

	if mode&S_ISVTX == S_ISVTX {
		res |= fs.ModeSticky
	}

	return res
}
