// Package async decouples dispatching from the sink that handles actions.
//
// Actions are queued on a fixed set of workers, partitioned by action type,
// so the order of actions sharing a type is preserved while different types
// are handled concurrently.
package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"github.com/on-the-ground/effect_ive_dispatch/effects/log"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("async sink closed")

type Config struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

// NewConfig fills in defaults for non-positive values.
func NewConfig(bufferSize, numWorkers int) Config {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return Config{BufferSize: bufferSize, NumWorkers: numWorkers}
}

type Option func(*Sink)

// WithLogger sets the logger used for dropped and panicking dispatches.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Sink hands actions to next on its own workers. Dispatch blocks while the
// target queue is full, until the dispatching context is done.
type Sink struct {
	next   action.Sink
	logger *zap.Logger

	mu      sync.RWMutex
	closed  bool
	queue   *partitions
	dropped atomic.Uint64
}

var _ action.Sink = (*Sink)(nil)

// New starts config.NumWorkers workers forwarding to next. Close stops them.
func New(next action.Sink, config Config, opts ...Option) *Sink {
	if next == nil {
		next = action.Discard
	}
	config = NewConfig(config.BufferSize, config.NumWorkers)
	s := &Sink{next: next, logger: log.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.queue = newPartitions(config.NumWorkers, config.BufferSize, s.handle)
	return s
}

// Dispatch queues a. The context handed to next keeps the values of ctx but
// not its cancellation: an accepted action is always delivered.
func (s *Sink) Dispatch(ctx context.Context, a any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop(a, ErrClosed)
		return
	}

	select {
	case s.queue.channelOf(a) <- message{ctx: context.WithoutCancel(ctx), action: a}:
	case <-ctx.Done():
		s.drop(a, context.Cause(ctx))
	}
}

// Close waits for queued actions to be handled. Later dispatches are
// dropped. Safe to call more than once.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.queue.close()
	s.logger.Debug("async sink closed", zap.Uint64("dropped", s.dropped.Load()))
}

// Dropped returns how many actions were not queued.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

func (s *Sink) handle(ctx context.Context, a any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("action sink panicked",
				zap.String("actionType", partitionKey(a)),
				zap.Any("panic", r),
			)
		}
	}()
	s.next.Dispatch(ctx, a)
}

func (s *Sink) drop(a any, cause error) {
	s.dropped.Add(1)
	s.logger.Warn("action dropped",
		zap.String("actionType", partitionKey(a)),
		zap.Error(cause),
	)
}
