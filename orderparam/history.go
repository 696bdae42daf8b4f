package orderparam

import "log"

// A HistoryBuffer keeps the most recent samples up to its capacity. Pushing
// into a full buffer evicts the oldest sample.
type HistoryBuffer struct {
	name     string
	capacity int
	data     []float64
	head     int
}

// NewHistoryBuffer creates an empty buffer.
func NewHistoryBuffer(name string, capacity int) *HistoryBuffer {
	if capacity < 1 {
		log.Panic("history capacity must be at least 1")
	}

	return &HistoryBuffer{
		name:     name,
		capacity: capacity,
	}
}

// Name returns the name of the buffer.
func (b *HistoryBuffer) Name() string {
	return b.name
}

// Capacity returns the maximum number of samples retained.
func (b *HistoryBuffer) Capacity() int {
	return b.capacity
}

// Size returns the number of samples retained.
func (b *HistoryBuffer) Size() int {
	return len(b.data)
}

// Push appends a sample, evicting the oldest one if the buffer is full.
func (b *HistoryBuffer) Push(v float64) {
	if len(b.data) < b.capacity {
		b.data = append(b.data, v)
		return
	}

	b.data[b.head] = v
	b.head = (b.head + 1) % b.capacity
}

// Data returns a copy of the samples, oldest first.
func (b *HistoryBuffer) Data() []float64 {
	out := make([]float64, len(b.data))
	n := copy(out, b.data[b.head:])
	copy(out[n:], b.data[:b.head])

	return out
}

// Last returns the newest sample.
func (b *HistoryBuffer) Last() (float64, bool) {
	if len(b.data) == 0 {
		return 0, false
	}

	if len(b.data) < b.capacity || b.head == 0 {
		return b.data[len(b.data)-1], true
	}

	return b.data[b.head-1], true
}

// SetCapacity changes the capacity, keeping the newest samples if the buffer
// has to shrink.
func (b *HistoryBuffer) SetCapacity(capacity int) {
	if capacity < 1 {
		log.Panic("history capacity must be at least 1")
	}

	ordered := b.Data()
	if len(ordered) > capacity {
		ordered = ordered[len(ordered)-capacity:]
	}

	b.data = ordered
	b.head = 0
	b.capacity = capacity
}

// Clear removes all samples.
func (b *HistoryBuffer) Clear() {
	b.data = nil
	b.head = 0
}
