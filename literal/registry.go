package literal

import "fmt"

// Registry is the ordered list of buffers for one compiled program. Indices
// are handed out monotonically and are the handles instructions carry.
//
// A Registry has a single writer: the lowering pass of the program that owns
// it. It is populated while functions are lowered, read by the assembler,
// and cleared before an unrelated compilation reuses it.
type Registry struct {
	buffers []*Buffer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append registers b and returns its index.
func (r *Registry) Append(b *Buffer) int {
	r.buffers = append(r.buffers, b)
	return len(r.buffers) - 1
}

// Set overwrites the buffer at idx. Type descriptors are reserved first and
// filled in once their members are known.
func (r *Registry) Set(idx int, b *Buffer) error {
	if idx < 0 || idx >= len(r.buffers) {
		return fmt.Errorf("literal: index %d out of range [0,%d)", idx, len(r.buffers))
	}
	r.buffers[idx] = b
	return nil
}

// Get returns the buffer at idx.
func (r *Registry) Get(idx int) (*Buffer, bool) {
	if idx < 0 || idx >= len(r.buffers) {
		return nil, false
	}
	return r.buffers[idx], true
}

// Len returns the number of registered buffers, which is also the next index.
func (r *Registry) Len() int {
	return len(r.buffers)
}

// Buffers returns the registered buffers in index order.
func (r *Registry) Buffers() []*Buffer {
	return r.buffers
}

// Clear drops every buffer; the next Append returns index 0.
func (r *Registry) Clear() {
	r.buffers = nil
}
