package squashfs_test

import (
	"io/fs"
	"testing"

	"github.com/nazgulfs/squashfs"
)

func TestTypeBasic(t *testing.T) {
	cases := []struct {
		t    squashfs.Type
		want squashfs.Type
	}{
		{squashfs.DirType, squashfs.DirType},
		{squashfs.XDirType, squashfs.DirType},
		{squashfs.FileType, squashfs.FileType},
		{squashfs.XFileType, squashfs.FileType},
		{squashfs.XSocketType, squashfs.SocketType},
	}
	for _, c := range cases {
		if got := c.t.Basic(); got != c.want {
			t.Errorf("%d.Basic() = %d, want %d", c.t, got, c.want)
		}
	}
}

func TestTypePredicates(t *testing.T) {
	if !squashfs.XDirType.IsDir() {
		t.Error("XDirType should be a directory")
	}
	if !squashfs.SymlinkType.IsSymlink() {
		t.Error("SymlinkType should be a symlink")
	}
	if !squashfs.XFileType.IsRegular() {
		t.Error("XFileType should be regular")
	}
	if !squashfs.XFileType.IsExtended() {
		t.Error("XFileType should report IsExtended")
	}
	if squashfs.FileType.IsExtended() {
		t.Error("FileType should not report IsExtended")
	}
	if !squashfs.XSocketType.Valid() {
		t.Error("XSocketType should be Valid")
	}
	if squashfs.Type(0).Valid() {
		t.Error("type 0 should not be Valid")
	}
	if squashfs.Type(15).Valid() {
		t.Error("type 15 should not be Valid")
	}
}

func TestTypeMode(t *testing.T) {
	if squashfs.DirType.Mode()&fs.ModeDir == 0 {
		t.Error("DirType.Mode() should set ModeDir")
	}
	if squashfs.SymlinkType.Mode()&fs.ModeSymlink == 0 {
		t.Error("SymlinkType.Mode() should set ModeSymlink")
	}
	if squashfs.FileType.Mode() != 0 {
		t.Error("FileType.Mode() should carry no extra bits")
	}
}
