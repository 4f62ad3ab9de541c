package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"github.com/on-the-ground/effect_ive_dispatch/effects/sink/memory"
	"github.com/stretchr/testify/assert"
)

func TestSink_RecordsInOrder(t *testing.T) {
	sink := memory.New()
	sink.Dispatch(context.Background(), action.New("A", nil))
	sink.Dispatch(context.Background(), action.New("B", nil))

	assert.Equal(t, 2, sink.Len())
	assert.Equal(t, []any{action.New("A", nil), action.New("B", nil)}, sink.Actions())

	sink.Reset()
	assert.Equal(t, 0, sink.Len())
}

func TestSink_Wait(t *testing.T) {
	sink := memory.New()
	assert.False(t, sink.Wait(1, 10*time.Millisecond))

	go func() {
		time.Sleep(10 * time.Millisecond)
		sink.Dispatch(context.Background(), action.New("A", nil))
	}()
	assert.True(t, sink.Wait(1, time.Second))
	assert.True(t, sink.Wait(0, 0))
}
