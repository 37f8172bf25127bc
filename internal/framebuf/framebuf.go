// Package framebuf provides the growable receive buffer used by stream oriented frame decoders.
package framebuf

import "errors"

// ErrShortBuffer is returned when an operation needs more bytes than are buffered.
var ErrShortBuffer = errors.New("framebuf: not enough buffered bytes")

// Buffer accumulates notification bytes and hands them out one frame at a time.
//
// Bytes only enter through Append and only leave through Consume, which removes an
// exact count from the front. Buffer is not safe for concurrent use.
type Buffer struct {
	buf []byte
	off int
}

// New creates a buffer with room for prealloc bytes.
func New(prealloc int) *Buffer {
	return &Buffer{buf: make([]byte, 0, prealloc)}
}

// Append adds data to the end of the buffer.
func (b *Buffer) Append(data []byte) {
	if b.off > 0 && len(b.buf)+len(data) > cap(b.buf) {
		// reclaim the consumed prefix before growing
		n := copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:n]
		b.off = 0
	}
	b.buf = append(b.buf, data...)
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// At returns the unread byte at index i.
func (b *Buffer) At(i int) (byte, error) {
	if i < 0 || i >= b.Len() {
		return 0, ErrShortBuffer
	}

	return b.buf[b.off+i], nil
}

// Peek returns the first n unread bytes without consuming them.
// The returned slice aliases the buffer and is only valid until the next Append or Consume.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if n < 0 || n > b.Len() {
		return nil, ErrShortBuffer
	}

	return b.buf[b.off : b.off+n], nil
}

// Consume removes exactly n bytes from the front of the buffer.
// Nothing is removed when fewer than n bytes are buffered.
func (b *Buffer) Consume(n int) error {
	if n < 0 || n > b.Len() {
		return ErrShortBuffer
	}

	b.off += n
	if b.off == len(b.buf) {
		b.buf = b.buf[:0]
		b.off = 0
	}

	return nil
}

// Reset discards all buffered bytes.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}
