package squashfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildLookupImage lays out a metadata block holding entrySize*count bytes at
// metaOffset, with a single index pointer to it at indexOffset.
func buildLookupImage(t *testing.T, indexOffset, metaOffset int64, entries [][]byte) []byte {
	t.Helper()
	var payload bytes.Buffer
	for _, e := range entries {
		payload.Write(e)
	}

	size := int(metaOffset) + 2 + payload.Len()
	buf := make([]byte, size)

	ptr := make([]byte, 8)
	binary.LittleEndian.PutUint64(ptr, uint64(metaOffset))
	copy(buf[indexOffset:], ptr)

	binary.LittleEndian.PutUint16(buf[metaOffset:], uint16(payload.Len())|0x8000)
	copy(buf[metaOffset+2:], payload.Bytes())

	return buf
}

func TestReadLookupTableSingleBlock(t *testing.T) {
	entries := [][]byte{
		{1, 0, 0, 0, 0, 0, 0, 0, 10, 0, 0, 0, 0, 0, 0, 0},
		{2, 0, 0, 0, 0, 0, 0, 0, 20, 0, 0, 0, 0, 0, 0, 0},
	}
	img := buildLookupImage(t, 0, 16, entries)
	ar := newAddressedReader(bytes.NewReader(img), 0)

	got, err := readLookupTable(ar, None, 0, 2, fragmentEntrySize, decodeFragment)
	if err != nil {
		t.Fatalf("readLookupTable: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Start != 1 || got[0].Size != 10 {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Start != 2 || got[1].Size != 20 {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestReadLookupTableZeroCount(t *testing.T) {
	ar := newAddressedReader(bytes.NewReader(nil), 0)
	got, err := readLookupTable(ar, None, 0, 0, fragmentEntrySize, decodeFragment)
	if err != nil {
		t.Fatalf("readLookupTable: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestReadLookupTableTruncatedIndex(t *testing.T) {
	ar := newAddressedReader(bytes.NewReader([]byte{1, 2, 3}), 0)
	_, err := readLookupTable(ar, None, 0, 1, fragmentEntrySize, decodeFragment)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestReadLookupTableShortData(t *testing.T) {
	// index points at a metadata block with only one entry, but count asks for two.
	entries := [][]byte{
		{1, 0, 0, 0, 0, 0, 0, 0, 10, 0, 0, 0, 0, 0, 0, 0},
	}
	img := buildLookupImage(t, 0, 16, entries)
	ar := newAddressedReader(bytes.NewReader(img), 0)

	_, err := readLookupTable(ar, None, 0, 2, fragmentEntrySize, decodeFragment)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestReadLookupTableDecodeID(t *testing.T) {
	buf := make([]byte, 16+2+4)
	binary.LittleEndian.PutUint64(buf[0:], 16) // index pointer -> metadata at offset 16
	binary.LittleEndian.PutUint16(buf[16:], uint16(4)|0x8000)
	binary.LittleEndian.PutUint32(buf[18:], 1000)

	ar := newAddressedReader(bytes.NewReader(buf), 0)
	got, err := readLookupTable(ar, None, 0, 1, 4, decodeID)
	if err != nil {
		t.Fatalf("readLookupTable: %v", err)
	}
	if len(got) != 1 || got[0] != 1000 {
		t.Errorf("got %v, want [1000]", got)
	}
}
