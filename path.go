package squashfs

import (
	"path"
	"strings"
)

// joinPath builds a POSIX path under dir for a directory entry named name,
// using the standard library's path package: no third-party path/URL
// library in the example corpus does anything this stdlib package doesn't.
func joinPath(dir, name string) string {
	return path.Join(dir, name)
}

// Lookup resolves a slash-separated path against the root of a, returning
// the inode it names. An empty path, "/", or "." all resolve to the root.
func (a *Archive) Lookup(p string) (*Inode, error) {
	cur := a.root
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return cur, nil
	}

	parts := strings.Split(p, "/")
	for _, part := range parts {
		if !cur.Type.IsDir() {
			return nil, &pathError{Op: "lookup", Path: p, Err: ErrNotDirectory}
		}
		entries, err := a.Readdir(cur)
		if err != nil {
			return nil, &pathError{Op: "lookup", Path: p, Err: err}
		}
		var next *Inode
		for _, e := range entries {
			if e.Name == part {
				ino, err := a.Inode(e.InodeNumber)
				if err != nil {
					return nil, &pathError{Op: "lookup", Path: p, Err: err}
				}
				next = ino
				break
			}
		}
		if next == nil {
			return nil, &pathError{Op: "lookup", Path: p, Err: ErrFileNotFound}
		}
		cur = next
	}
	return cur, nil
}
