package async

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
)

type message struct {
	ctx    context.Context
	action any
}

// partitions spreads messages over one channel per worker. Messages with
// the same partition key always land on the same worker.
type partitions struct {
	chs  []chan message
	done sync.WaitGroup
}

func newPartitions(
	numWorkers, bufferSize int,
	handleFn func(context.Context, any),
) *partitions {
	p := &partitions{chs: make([]chan message, numWorkers)}
	for i := range p.chs {
		ch := make(chan message, bufferSize)
		p.done.Add(1)
		go func() {
			defer p.done.Done()
			for msg := range ch {
				handleFn(msg.ctx, msg.action)
			}
		}()
		p.chs[i] = ch
	}
	return p
}

func (p *partitions) channelOf(a any) chan message {
	return p.chs[indexByHash(partitionKey(a), len(p.chs))]
}

// close stops accepting messages and waits until every worker has drained
// its queue.
func (p *partitions) close() {
	for _, ch := range p.chs {
		close(ch)
	}
	p.done.Wait()
}

func partitionKey(a any) string {
	typ, _ := action.TypeOf(a)
	return typ
}

func indexByHash(key string, n int) int {
	switch n {
	case 0:
		panic("number of partitions cannot be 0")
	case 1:
		return 0
	default:
		return int(xxhash.Sum64String(key) % uint64(n))
	}
}
