package source_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_dispatch/effects/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an Observer that keeps everything it sees.
type recorder struct {
	mu        sync.Mutex
	values    []any
	err       error
	completed bool
	refuse    func(v any) error
	done      chan struct{}
	once      sync.Once
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) Next(v any) error {
	if r.refuse != nil {
		if err := r.refuse(v); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	return nil
}

func (r *recorder) Error(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

func (r *recorder) Complete() {
	r.mu.Lock()
	r.completed = true
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}

func (r *recorder) snapshot() ([]any, error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.values...), r.err, r.completed
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for stream to end")
	}
}

var errBoom = errors.New("boom")

func TestJust_EmitsSynchronouslyThenCompletes(t *testing.T) {
	rec := newRecorder()
	require.NoError(t, source.Just(1, 2, 3).Subscribe(context.Background(), rec))

	values, err, completed := rec.snapshot()
	assert.Equal(t, []any{1, 2, 3}, values)
	assert.NoError(t, err)
	assert.True(t, completed)
}

func TestJust_ReturnsRefusalFromSubscribe(t *testing.T) {
	rec := newRecorder()
	rec.refuse = func(v any) error {
		if v == 2 {
			return errBoom
		}
		return nil
	}

	err := source.Just(1, 2, 3).Subscribe(context.Background(), rec)
	require.ErrorIs(t, err, errBoom)

	values, _, completed := rec.snapshot()
	assert.Equal(t, []any{1}, values)
	assert.False(t, completed)
}

func TestJust_StopsSilentlyOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newRecorder()
	require.NoError(t, source.Just(1, 2).Subscribe(ctx, rec))

	values, _, completed := rec.snapshot()
	assert.Empty(t, values)
	assert.False(t, completed)
}

func TestEmptyNeverFail(t *testing.T) {
	ctx := context.Background()

	empty := newRecorder()
	require.NoError(t, source.Empty().Subscribe(ctx, empty))
	_, _, completed := empty.snapshot()
	assert.True(t, completed)

	never := newRecorder()
	require.NoError(t, source.Never().Subscribe(ctx, never))
	values, err, completed := never.snapshot()
	assert.Empty(t, values)
	assert.NoError(t, err)
	assert.False(t, completed)

	failing := newRecorder()
	require.NoError(t, source.Fail(errBoom).Subscribe(ctx, failing))
	_, err, _ = failing.snapshot()
	assert.ErrorIs(t, err, errBoom)
}

func TestFromChannel_ForwardsUntilClosed(t *testing.T) {
	ch := make(chan string)
	rec := newRecorder()
	require.NoError(t, source.FromChannel(ch).Subscribe(context.Background(), rec))

	go func() {
		defer close(ch)
		ch <- "a"
		ch <- "b"
	}()

	rec.wait(t)
	values, err, completed := rec.snapshot()
	assert.Equal(t, []any{"a", "b"}, values)
	assert.NoError(t, err)
	assert.True(t, completed)
}

func TestFromChannel_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan int, 1)
	rec := newRecorder()
	require.NoError(t, source.FromChannel(ch).Subscribe(ctx, rec))

	cancel()
	time.Sleep(20 * time.Millisecond)
	ch <- 1
	time.Sleep(20 * time.Millisecond)

	values, err, completed := rec.snapshot()
	assert.Empty(t, values)
	assert.NoError(t, err)
	assert.False(t, completed)
}

func TestFromChannel_RefusalFailsTheStream(t *testing.T) {
	ch := make(chan int, 1)
	rec := newRecorder()
	rec.refuse = func(any) error { return errBoom }
	require.NoError(t, source.FromChannel(ch).Subscribe(context.Background(), rec))

	ch <- 1
	rec.wait(t)
	_, err, _ := rec.snapshot()
	assert.ErrorIs(t, err, errBoom)
}

func TestFromChannel_SkippedValueKeepsStream(t *testing.T) {
	ch := make(chan int, 3)
	rec := newRecorder()
	rec.refuse = func(v any) error {
		if v == 1 {
			return fmt.Errorf("%w: odd one out", source.ErrSkipValue)
		}
		return nil
	}
	require.NoError(t, source.FromChannel(ch).Subscribe(context.Background(), rec))

	ch <- 1
	ch <- 2
	close(ch)
	rec.wait(t)

	values, err, completed := rec.snapshot()
	assert.Equal(t, []any{2}, values)
	assert.NoError(t, err)
	assert.True(t, completed)
}

func TestInterval_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan any, 10)
	obs := source.Funcs{OnNext: func(v any) error {
		got <- v
		return nil
	}}
	require.NoError(t, source.Interval(5*time.Millisecond, func(n int) any { return n }).Subscribe(ctx, obs))

	for want := 0; want < 3; want++ {
		select {
		case v := <-got:
			assert.Equal(t, want, v)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for tick")
		}
	}
}

func TestInterval_RejectsNonPositivePeriod(t *testing.T) {
	err := source.Interval(0, func(int) any { return nil }).Subscribe(context.Background(), newRecorder())
	assert.ErrorIs(t, err, source.ErrInvalidPeriod)
}

func TestMapFilter(t *testing.T) {
	src := source.Map(
		source.Filter(source.Just(1, 2, 3, 4), func(v int) bool { return v%2 == 0 }),
		func(v int) string { return string(rune('a' + v)) },
	)

	rec := newRecorder()
	require.NoError(t, src.Subscribe(context.Background(), rec))

	values, _, completed := rec.snapshot()
	assert.Equal(t, []any{"c", "e"}, values)
	assert.True(t, completed)
}

func TestMap_UnexpectedType(t *testing.T) {
	src := source.Map(source.Just("not an int"), func(v int) int { return v })
	err := src.Subscribe(context.Background(), newRecorder())
	assert.ErrorIs(t, err, source.ErrUnexpectedType)
}

func TestMerge_CompletesAfterAllSources(t *testing.T) {
	ch := make(chan any)
	rec := newRecorder()
	require.NoError(t, source.Merge(source.Just(1), source.FromChannel(ch)).Subscribe(context.Background(), rec))

	_, _, completed := rec.snapshot()
	assert.False(t, completed, "merge must wait for the channel source")

	ch <- 2
	close(ch)
	rec.wait(t)

	values, _, completed := rec.snapshot()
	assert.ElementsMatch(t, []any{1, 2}, values)
	assert.True(t, completed)
}

func TestMerge_FailsOnFirstError(t *testing.T) {
	rec := newRecorder()
	require.NoError(t, source.Merge(source.Fail(errBoom), source.Never(), source.Fail(errors.New("late"))).Subscribe(context.Background(), rec))

	_, err, completed := rec.snapshot()
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, completed)
}

func TestMerge_EmptyCompletes(t *testing.T) {
	rec := newRecorder()
	require.NoError(t, source.Merge().Subscribe(context.Background(), rec))
	_, _, completed := rec.snapshot()
	assert.True(t, completed)
}

func TestOrderBy_SortsWithinWindow(t *testing.T) {
	src := source.OrderBy(2, func(a, b int) int { return a - b }, source.Just(3, 1, 2, 5, 4))

	rec := newRecorder()
	require.NoError(t, src.Subscribe(context.Background(), rec))

	values, _, completed := rec.snapshot()
	assert.Equal(t, []any{1, 2, 3, 4, 5}, values)
	assert.True(t, completed)
}

func TestOrderBy_FlushSkipsRefusedValues(t *testing.T) {
	src := source.OrderBy(3, func(a, b int) int { return a - b }, source.Just(3, 1, 2))

	rec := newRecorder()
	rec.refuse = func(v any) error {
		if v == 2 {
			return source.ErrSkipValue
		}
		return nil
	}
	require.NoError(t, src.Subscribe(context.Background(), rec))

	values, err, completed := rec.snapshot()
	assert.Equal(t, []any{1, 3}, values)
	assert.NoError(t, err)
	assert.True(t, completed)
}

func TestSubject_MulticastsSynchronously(t *testing.T) {
	subject := source.NewSubject()
	ctx, cancel := context.WithCancel(context.Background())

	first, second := newRecorder(), newRecorder()
	require.NoError(t, subject.Subscribe(ctx, first))
	require.NoError(t, subject.Subscribe(context.Background(), second))
	assert.Equal(t, 2, subject.Observers())

	require.NoError(t, subject.Next("x"))
	cancel()
	require.NoError(t, subject.Next("y"))

	values, _, _ := first.snapshot()
	assert.Equal(t, []any{"x"}, values)
	values, _, _ = second.snapshot()
	assert.Equal(t, []any{"x", "y"}, values)
	assert.Equal(t, 1, subject.Observers())
}

func TestSubject_ReturnsRefusals(t *testing.T) {
	subject := source.NewSubject()
	rec := newRecorder()
	rec.refuse = func(any) error { return errBoom }
	require.NoError(t, subject.Subscribe(context.Background(), rec))
	require.NoError(t, subject.Subscribe(context.Background(), newRecorder()))

	assert.ErrorIs(t, subject.Next(1), errBoom)
	assert.Equal(t, 2, subject.Observers())
}

func TestSubject_ReplaysTerminalEvents(t *testing.T) {
	completed := source.NewSubject()
	completed.Complete()
	completed.Complete()
	late := newRecorder()
	require.NoError(t, completed.Subscribe(context.Background(), late))
	_, _, done := late.snapshot()
	assert.True(t, done)

	failed := source.NewSubject()
	early := newRecorder()
	require.NoError(t, failed.Subscribe(context.Background(), early))
	failed.Error(errBoom)
	_, err, _ := early.snapshot()
	assert.ErrorIs(t, err, errBoom)

	lateFail := newRecorder()
	require.NoError(t, failed.Subscribe(context.Background(), lateFail))
	_, err, _ = lateFail.snapshot()
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, failed.Observers())
}
