package utils

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// bufPool reuses byte buffers to reduce GC pressure in the decode path.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// AcquireBuffer returns a reset buffer from the pool.
func AcquireBuffer() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// ReleaseBuffer returns b to the pool.  Callers must not use b after this call.
func ReleaseBuffer(b *bytes.Buffer) {
	// Cap large buffers to avoid pinning excessive memory.
	if b.Cap() > 8*1024*1024 {
		return
	}
	bufPool.Put(b)
}

// DrainReader reads all bytes from r into a pooled buffer and returns it.
// Pass the buffer back with ReleaseBuffer when done.
func DrainReader(ctx context.Context, r io.Reader, chunkSize int) (*bytes.Buffer, error) {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	buf := AcquireBuffer()
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			ReleaseBuffer(buf)
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			ReleaseBuffer(buf)
			return nil, err
		}
	}
	return buf, nil
}

// planePool reuses float32 overlay planes; effect stages allocate one plane
// per page for wrinkle, shadow, and grain layers.
var planePool = sync.Pool{
	New: func() interface{} { return []float32(nil) },
}

// AcquirePlane returns a float32 plane with at least n elements, all set to
// the given fill value.
func AcquirePlane(n int, fill float32) []float32 {
	p := planePool.Get().([]float32)
	if cap(p) < n {
		p = make([]float32, n)
	}
	p = p[:n]
	for i := range p {
		p[i] = fill
	}
	return p
}

// ReleasePlane returns p to the pool.  Callers must not use p after this call.
func ReleasePlane(p []float32) {
	// Cap very large planes to avoid pinning excessive memory.
	if cap(p) > 32*1024*1024 {
		return
	}
	planePool.Put(p[:0])
}
