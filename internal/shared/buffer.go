// Package shared holds the connection plumbing used by both programs:
// byte-counting and websocket net.Conn wrappers, and the buffer below.
package shared

import (
	"bytes"
	"sync"
)

// ThreadSafeBuffer is a simple thread-safe bytes.Buffer wrapper. It holds
// the unread part of a websocket frame between Reads, and collects server
// output when Serve runs on another goroutine.
type ThreadSafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// NewThreadSafeBuffer creates a new ThreadSafeBuffer
func NewThreadSafeBuffer() *ThreadSafeBuffer {
	return &ThreadSafeBuffer{}
}

// Read reads data from the buffer, is thread-safe
func (b *ThreadSafeBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Read(p)
}

// Write writes data to the buffer, is thread-safe
func (b *ThreadSafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// Len returns the number of bytes in the buffer, is thread-safe
func (b *ThreadSafeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Len()
}

// String returns the unread portion of the buffer without consuming it.
func (b *ThreadSafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}
