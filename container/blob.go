package container

import (
	"encoding/binary"
	"fmt"
)

// GrowPolicy selects how Blob grows its backing buffer on Write
// overflow, per spec.md §4.D.
type GrowPolicy int

const (
	GrowNone GrowPolicy = iota
	GrowLinear
	GrowMultiply
)

// Blob is a contiguous byte buffer with independent read and write
// cursors; it is not thread-safe, per spec.md §4.D.
type Blob struct {
	buf        []byte
	readCursor int
	writeCursor int
	policy     GrowPolicy
	chunk      int // GrowLinear chunk size
}

// NewBlob creates an empty Blob with the given grow policy. chunk is
// only meaningful for GrowLinear.
func NewBlob(policy GrowPolicy, chunk int) *Blob {
	return &Blob{policy: policy, chunk: chunk}
}

// Size returns the number of bytes written so far.
func (b *Blob) Size() int { return b.writeCursor }

// Bytes returns the written region.
func (b *Blob) Bytes() []byte { return b.buf[:b.writeCursor] }

func (b *Blob) ensure(extra int) error {
	need := b.writeCursor + extra
	if need <= len(b.buf) {
		return nil
	}
	switch b.policy {
	case GrowNone:
		return fmt.Errorf("container.Blob: write overflow, no grow policy set (need %d, have %d)", need, len(b.buf))
	case GrowLinear:
		chunk := b.chunk
		if chunk <= 0 {
			chunk = 4096
		}
		newCap := len(b.buf)
		for newCap < need {
			newCap += chunk
		}
		grown := make([]byte, newCap)
		copy(grown, b.buf)
		b.buf = grown
	case GrowMultiply:
		newCap := len(b.buf)
		if newCap == 0 {
			newCap = 64
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, newCap)
		copy(grown, b.buf)
		b.buf = grown
	}
	return nil
}

// Write appends src to the write cursor, growing per policy.
func (b *Blob) Write(src []byte) (int, error) {
	if err := b.ensure(len(src)); err != nil {
		return 0, err
	}
	n := copy(b.buf[b.writeCursor:], src)
	b.writeCursor += n
	return n, nil
}

// Read drains up to len(dst) bytes starting at the read cursor.
func (b *Blob) Read(dst []byte) (int, error) {
	avail := b.writeCursor - b.readCursor
	if avail <= 0 {
		return 0, fmt.Errorf("container.Blob: read past write cursor")
	}
	n := copy(dst, b.buf[b.readCursor:b.writeCursor])
	b.readCursor += n
	return n, nil
}

// WriteStringBinary writes s length-prefixed with either a u16 or u32
// length, per spec.md §4.D.
func (b *Blob) WriteStringBinary(s string, u32Len bool) error {
	if u32Len {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
		if _, err := b.Write(lenBuf[:]); err != nil {
			return err
		}
	} else {
		if len(s) > 0xFFFF {
			return fmt.Errorf("container.Blob: string too long for u16 length prefix (%d bytes)", len(s))
		}
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
		if _, err := b.Write(lenBuf[:]); err != nil {
			return err
		}
	}
	_, err := b.Write([]byte(s))
	return err
}

// ReadStringBinary reads a length-prefixed string written by
// WriteStringBinary, validating that the prefix does not claim more
// bytes than remain (the "validated-read variant" spec.md §4.D calls for).
func (b *Blob) ReadStringBinary(u32Len bool) (string, error) {
	var n int
	if u32Len {
		var lenBuf [4]byte
		if _, err := b.Read(lenBuf[:]); err != nil {
			return "", err
		}
		n = int(binary.LittleEndian.Uint32(lenBuf[:]))
	} else {
		var lenBuf [2]byte
		if _, err := b.Read(lenBuf[:]); err != nil {
			return "", err
		}
		n = int(binary.LittleEndian.Uint16(lenBuf[:]))
	}
	if b.readCursor+n > b.writeCursor {
		return "", fmt.Errorf("container.Blob: string length %d exceeds remaining %d bytes", n, b.writeCursor-b.readCursor)
	}
	out := make([]byte, n)
	if _, err := b.Read(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// ResetCursors rewinds both read and write cursors to zero without
// releasing the backing buffer.
func (b *Blob) ResetCursors() {
	b.readCursor = 0
	b.writeCursor = 0
}
