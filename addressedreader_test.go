package squashfs

import (
	"bytes"
	"io"
	"testing"
)

func TestAddressedReaderReadAt(t *testing.T) {
	src := bytes.NewReader([]byte("0123456789"))
	ar := newAddressedReader(src, 3)

	buf := make([]byte, 4)
	if err := ar.readAt(buf, 2); err != nil {
		t.Fatalf("readAt: %v", err)
	}
	if string(buf) != "5678" {
		t.Errorf("readAt = %q, want %q", buf, "5678")
	}
}

func TestAddressedReaderReadAtOutOfRange(t *testing.T) {
	src := bytes.NewReader([]byte("0123456789"))
	ar := newAddressedReader(src, 0)

	buf := make([]byte, 4)
	if err := ar.readAt(buf, 8); err == nil {
		t.Error("expected an error reading past the end of the source")
	}
}

func TestCursorSequentialReads(t *testing.T) {
	src := bytes.NewReader([]byte("abcdefghij"))
	ar := newAddressedReader(src, 0)
	c := ar.cursor(2)

	buf := make([]byte, 3)
	if err := c.readExact(buf); err != nil {
		t.Fatalf("readExact: %v", err)
	}
	if string(buf) != "cde" {
		t.Errorf("first read = %q, want %q", buf, "cde")
	}
	if c.position() != 5 {
		t.Errorf("position = %d, want 5", c.position())
	}

	if err := c.readExact(buf); err != nil {
		t.Fatalf("readExact: %v", err)
	}
	if string(buf) != "fgh" {
		t.Errorf("second read = %q, want %q", buf, "fgh")
	}
}

func TestCursorSeekTo(t *testing.T) {
	src := bytes.NewReader([]byte("abcdefghij"))
	ar := newAddressedReader(src, 0)
	c := ar.cursor(0)
	c.seekTo(7)

	buf := make([]byte, 3)
	if err := c.readExact(buf); err != nil {
		t.Fatalf("readExact: %v", err)
	}
	if string(buf) != "hij" {
		t.Errorf("read after seek = %q, want %q", buf, "hij")
	}
}

func TestCursorReadImplementsReader(t *testing.T) {
	src := bytes.NewReader([]byte("abcdefghij"))
	ar := newAddressedReader(src, 0)
	c := ar.cursor(0)

	var r io.Reader = c
	buf := make([]byte, 5)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 5 || string(buf) != "abcde" {
		t.Errorf("Read = %d,%q, want 5,%q", n, buf, "abcde")
	}
}

func TestCursorReadPastEndReturnsEOF(t *testing.T) {
	src := bytes.NewReader([]byte("abc"))
	ar := newAddressedReader(src, 0)
	c := ar.cursor(0)

	buf := make([]byte, 10)
	if _, err := c.Read(buf); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}
