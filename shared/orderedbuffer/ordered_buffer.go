package orderedbuffer

import (
	"errors"
	"slices"
	"sort"
	"sync"
)

var ErrClosedBuffer = errors.New("buffer is closed")

type CompareFunc[T any] func(a, b T) int

// Window keeps at most size values in sorted order. Inserting past capacity
// evicts the smallest value, so a stream passed through a Window comes out
// sorted as long as no value arrives more than size positions late.
type Window[T any] struct {
	mu      sync.Mutex
	data    []T
	size    int
	compare CompareFunc[T]
	closed  bool
}

func NewWindow[T any](size int, cmp CompareFunc[T]) *Window[T] {
	if size <= 0 {
		size = 1
	}
	return &Window[T]{
		data:    make([]T, 0, size+1),
		size:    size,
		compare: cmp,
	}
}

// Insert places val in order. When the window overflows, the smallest value
// is evicted and returned with ok set.
func (w *Window[T]) Insert(val T) (evicted T, ok bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return evicted, false, ErrClosedBuffer
	}

	// equal values keep arrival order
	idx := sort.Search(len(w.data), func(i int) bool {
		return w.compare(val, w.data[i]) < 0
	})
	w.data = slices.Insert(w.data, idx, val)

	if len(w.data) > w.size {
		evicted = w.data[0]
		w.data = slices.Delete(w.data, 0, 1)
		return evicted, true, nil
	}
	return evicted, false, nil
}

// Drain closes the window and returns what it still holds, in order.
// Later calls return nil.
func (w *Window[T]) Drain() []T {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	rest := w.data
	w.data = nil
	return rest
}

func (w *Window[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.data)
}
