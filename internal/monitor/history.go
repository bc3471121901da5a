package monitor

import "sync"

// DefaultHistorySize is the default number of samples retained per server.
const DefaultHistorySize = 60

// History keeps the recent server_status values of every server in ring
// buffers. It provides thread-safe access for sparkline rendering.
type History struct {
	mu      sync.RWMutex
	size    int
	servers map[int]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the given buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		servers: make(map[int]*ringBuffer),
	}
}

// Size returns the per-server capacity.
func (h *History) Size() int {
	return h.size
}

// Push records one status sample for server id.
func (h *History) Push(id int, status int32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.servers[id]
	if !ok {
		buf = newRingBuffer(h.size)
		h.servers[id] = buf
	}
	buf.push(float64(status))
}

// Last returns up to count samples for server id, oldest first.
func (h *History) Last(id, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.servers[id]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// All returns every retained sample for server id, oldest first.
func (h *History) All(id int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.servers[id]
	if !ok {
		return nil
	}
	return buf.getAll()
}

// Latest returns the most recent sample for server id.
func (h *History) Latest(id int) (float64, bool) {
	last := h.Last(id, 1)
	if len(last) == 0 {
		return 0, false
	}
	return last[0], true
}

// Count returns the number of samples stored for server id.
func (h *History) Count(id int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.servers[id]
	if !ok {
		return 0
	}
	return buf.count
}

// Clear removes all history for server id.
func (h *History) Clear(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.servers, id)
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position; the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}

func (r *ringBuffer) getAll() []float64 {
	return r.getLast(r.count)
}
