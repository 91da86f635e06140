package fifoqueue

import (
	"fmt"
	"math"
	"sync"

	"github.com/ef-ds/deque"
)

// FifoQueue is a concurrency-safe FIFO queue with an optional capacity.
// Pushing onto a full queue drops the element. An optional observer is called
// with the new length after every push and pop; it must not block.
type FifoQueue[T any] struct {
	mu             sync.Mutex
	queue          deque.Deque
	capacity       int
	lengthObserver QueueLengthObserver
}

type QueueLengthObserver func(length int)

type ConstructorOption func(*options) error

type options struct {
	capacity       int
	lengthObserver QueueLengthObserver
}

// WithCapacity bounds the number of queued elements.
func WithCapacity(capacity int) ConstructorOption {
	return func(o *options) error {
		if capacity < 1 {
			return fmt.Errorf("queue capacity must be positive, got %d", capacity)
		}
		o.capacity = capacity
		return nil
	}
}

// WithLengthObserver reports every length change to the callback.
func WithLengthObserver(observer QueueLengthObserver) ConstructorOption {
	return func(o *options) error {
		if observer == nil {
			return fmt.Errorf("length observer must not be nil")
		}
		o.lengthObserver = observer
		return nil
	}
}

// NewFifoQueue creates an unbounded queue unless WithCapacity is given.
func NewFifoQueue[T any](opts ...ConstructorOption) (*FifoQueue[T], error) {
	o := options{
		capacity:       math.MaxInt,
		lengthObserver: func(int) {},
	}
	for _, apply := range opts {
		err := apply(&o)
		if err != nil {
			return nil, fmt.Errorf("invalid queue option: %w", err)
		}
	}
	return &FifoQueue[T]{
		capacity:       o.capacity,
		lengthObserver: o.lengthObserver,
	}, nil
}

// Push appends the element. Returns false if the queue is full.
func (q *FifoQueue[T]) Push(element T) bool {
	q.mu.Lock()
	length := q.queue.Len()
	if length >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.queue.PushBack(element)
	q.mu.Unlock()

	q.lengthObserver(length + 1)
	return true
}

// Pop removes the head of the queue. Returns false if the queue is empty.
func (q *FifoQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	element, ok := q.queue.PopFront()
	length := q.queue.Len()
	q.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	q.lengthObserver(length)
	return element.(T), true
}

func (q *FifoQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}
