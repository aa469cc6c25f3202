package coapcodec

import (
	cerr "github.com/coalalib/coapcodec/errors"
)

// packetReader is a forward-only cursor over a borrowed datagram.
// Returned slices alias the underlying buffer; the caller keeps ownership
// of the backing array.
type packetReader struct {
	data []byte
	pos  int
}

func newPacketReader(data []byte) *packetReader {
	return &packetReader{data: data}
}

func (r *packetReader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *packetReader) Position() int {
	return r.pos
}

// Take consumes the next n bytes.
func (r *packetReader) Take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, cerr.NotEnoughBytes{Needed: n, Available: r.Remaining()}
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *packetReader) TakeByte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, cerr.NotEnoughBytes{Needed: 1, Available: 0}
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Peek returns the next n bytes without consuming them.
func (r *packetReader) Peek(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, cerr.NotEnoughBytes{Needed: n, Available: r.Remaining()}
	}
	return r.data[r.pos : r.pos+n], nil
}

// packetWriter fills a caller-owned buffer front to back. On overflow the
// already written prefix is left as is and the caller is expected to
// discard it.
type packetWriter struct {
	buf []byte
	pos int
}

func newPacketWriter(buf []byte) *packetWriter {
	return &packetWriter{buf: buf}
}

func (w *packetWriter) Position() int {
	return w.pos
}

func (w *packetWriter) Capacity() int {
	return len(w.buf)
}

func (w *packetWriter) Write(p []byte) error {
	if len(p) > len(w.buf)-w.pos {
		return cerr.BufferTooSmall{Needed: w.pos + len(p), Capacity: len(w.buf)}
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return nil
}

func (w *packetWriter) WriteByte(b byte) error {
	if w.pos >= len(w.buf) {
		return cerr.BufferTooSmall{Needed: w.pos + 1, Capacity: len(w.buf)}
	}
	w.buf[w.pos] = b
	w.pos++
	return nil
}
