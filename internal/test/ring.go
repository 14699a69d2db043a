package test

import (
	"fmt"
	"strings"
)

// RingWriter keeps the most recent size bytes written to it.
type RingWriter struct {
	buffer  []byte
	size    int
	cursor  int
	wrapped bool
}

func NewRingWriter(size int) (*RingWriter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size for RingWriter (%d)", size)
	}
	return &RingWriter{size: size, buffer: make([]byte, size)}, nil
}

func (r *RingWriter) String() string {
	var s strings.Builder
	if r.wrapped {
		s.Write(r.buffer[r.cursor:])
	}
	s.Write(r.buffer[:r.cursor])
	return s.String()
}

func (r *RingWriter) Reset() {
	r.cursor = 0
	r.wrapped = false
}

func (r *RingWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n >= r.size {
		copy(r.buffer, p[n-r.size:])
		r.cursor = 0
		r.wrapped = true
		return n, nil
	}
	room := r.size - r.cursor
	copy(r.buffer[r.cursor:], p)
	if n >= room {
		copy(r.buffer, p[room:])
		r.wrapped = true
	}
	r.cursor = (r.cursor + n) % r.size
	return n, nil
}
