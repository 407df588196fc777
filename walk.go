package squashfs

import "fmt"

// NodeKind classifies a Node by the inode type it wraps, collapsing the
// basic/extended distinction the on-disk format makes (callers of Walk don't
// need to know which variant stored a given file).
type NodeKind int

const (
	KindDir NodeKind = iota
	KindFile
	KindSymlink
	KindCharDevice
	KindBlockDevice
	KindFifo
	KindSocket
)

func kindOf(t Type) NodeKind {
	switch t.Basic() {
	case DirType:
		return KindDir
	case FileType:
		return KindFile
	case SymlinkType:
		return KindSymlink
	case CharDevType:
		return KindCharDevice
	case BlockDevType:
		return KindBlockDevice
	case FifoType:
		return KindFifo
	case SocketType:
		return KindSocket
	default:
		panic(fmt.Sprintf("squashfs: inode type %d has no NodeKind", uint16(t)))
	}
}

// Node is one entry discovered while walking an Archive's directory tree:
// its absolute path and the inode backing it.
type Node struct {
	Kind  NodeKind
	Path  string
	Inode *Inode
}

// Walk performs a pre-order traversal of a's entire tree, starting at the
// root directory. It guards against a forged image whose directory entries
// form a cycle: once an inode number has been entered as a directory, a
// second attempt to enter it fails with ErrCyclicDirectory instead of
// recursing forever.
func Walk(a *Archive) ([]Node, error) {
	visited := make(map[uint32]struct{})
	var out []Node

	var visit func(dir *Inode, p string) error
	visit = func(dir *Inode, p string) error {
		if _, ok := visited[dir.InodeNumber]; ok {
			return fmt.Errorf("%w: inode %d at %s", ErrCyclicDirectory, dir.InodeNumber, p)
		}
		visited[dir.InodeNumber] = struct{}{}

		entries, err := a.Readdir(dir)
		if err != nil {
			return &pathError{Op: "walk", Path: p, Err: err}
		}

		for _, e := range entries {
			child, err := a.Inode(e.InodeNumber)
			if err != nil {
				return &pathError{Op: "walk", Path: joinPath(p, e.Name), Err: err}
			}
			childPath := joinPath(p, e.Name)
			out = append(out, Node{Kind: kindOf(child.Type), Path: childPath, Inode: child})
			if child.Type.IsDir() {
				if err := visit(child, childPath); err != nil {
					return err
				}
			}
		}
		return nil
	}

	root := a.RootInode()
	out = append(out, Node{Kind: KindDir, Path: "/", Inode: root})
	if err := visit(root, "/"); err != nil {
		return nil, err
	}
	return out, nil
}
