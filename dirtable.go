package squashfs

import (
	"bytes"
	"fmt"
	"io"
)

// DirEntry is one decoded entry of a directory listing (spec §4.5). Name
// never includes "." or "..": those aren't stored on disk, matching how the
// teacher's original directory reader already treated them.
type DirEntry struct {
	Name        string
	InodeNumber uint32
	Type        Type // always a basic type (1-7); the format never extends this field
}

// parseDirectory decodes the listing for a directory inode whose location in
// the directory table is (blockIndex, blockOffset) and whose claimed content
// length is dirFileSize (the inode's on-disk value, which includes a 3-byte
// phantom terminator per spec §3).
func parseDirectory(stream *metadataBlockStream, blockIndex uint32, blockOffset uint16, dirFileSize uint32) ([]DirEntry, error) {
	if dirFileSize < 3 {
		return nil, fmt.Errorf("%w: directory file_size %d below minimum of 3", ErrCorruptDirTable, dirFileSize)
	}
	total := int(dirFileSize) - 3
	if total == 0 {
		return nil, nil
	}

	start, err := stream.resolveOffset(blockIndex, blockOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptDirTable, err)
	}
	if start+total > len(stream.data) {
		return nil, fmt.Errorf("%w: listing runs past end of directory table", ErrCorruptDirTable)
	}

	r := bytes.NewReader(stream.data[start : start+total])
	var entries []DirEntry

	for r.Len() > 0 {
		var count uint32
		var headerStart uint32
		var inodeNum uint32
		if err := readFields(r, &count, &headerStart, &inodeNum); err != nil {
			return nil, dirTableErr(err)
		}

		for i := uint32(0); i <= count; i++ {
			var offset uint16
			var inodeOffset int16
			var etype uint16
			var nameSize uint16
			if err := readFields(r, &offset, &inodeOffset, &etype, &nameSize); err != nil {
				return nil, dirTableErr(err)
			}
			name := make([]byte, int(nameSize)+1)
			if _, err := io.ReadFull(r, name); err != nil {
				return nil, dirTableErr(err)
			}

			entries = append(entries, DirEntry{
				Name:        string(name),
				InodeNumber: uint32(int64(inodeNum) + int64(inodeOffset)),
				Type:        Type(etype),
			})
		}
	}

	return entries, nil
}

func dirTableErr(err error) error {
	return fmt.Errorf("%w: %s", ErrCorruptDirTable, err)
}
