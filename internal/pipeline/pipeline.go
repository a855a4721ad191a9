// Package pipeline runs a per-batch transform over a record stream on a
// fixed number of workers and emits the results in input order.
//
// A producer cuts the source into numbered batches, exactly Threads workers
// pull batches from a bounded channel, and a collector restores the order
// through a ring buffer indexed by batch number. At most 2*Threads batches
// are in flight between producer and collector, so a slow batch stalls the
// producer instead of growing the buffer.
package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrConfig is returned by Run for a non-positive thread count or batch size.
var ErrConfig = errors.New("pipeline: threads and batch size must be positive")

// Config controls the pipeline.
type Config struct {
	Threads   int // number of worker goroutines, a hard ceiling
	BatchSize int // records per batch; no effect on output
}

// Source yields items in order and returns io.EOF when exhausted. Any
// other error aborts the run.
type Source[T any] interface {
	Next() (T, error)
}

type batch[T any] struct {
	seq   int
	items T
}

// Run reads src to exhaustion, applies work to each batch on cfg.Threads
// workers and passes the results to emit in the order the batches were
// read. emit is only ever called from one goroutine. Run returns the first
// error from the source, from emit, or from ctx; batches still in flight
// at that point are dropped.
func Run[In, Out any](
	ctx context.Context,
	cfg Config,
	src Source[In],
	work func([]In) Out,
	emit func(Out) error,
) error {
	if cfg.Threads < 1 || cfg.BatchSize < 1 {
		return ErrConfig
	}
	window := 2 * cfg.Threads
	slots := semaphore.NewWeighted(int64(window))
	jobs := make(chan batch[[]In], cfg.Threads)
	done := make(chan batch[Out], cfg.Threads)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		return produce(ctx, cfg.BatchSize, src, slots, jobs)
	})

	var workers sync.WaitGroup
	workers.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			defer workers.Done()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case b, ok := <-jobs:
					if !ok {
						return nil
					}
					select {
					case done <- batch[Out]{seq: b.seq, items: work(b.items)}:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		})
	}
	g.Go(func() error {
		workers.Wait()
		close(done)
		return nil
	})

	g.Go(func() error {
		return collect(ctx, window, done, slots, emit)
	})

	return g.Wait()
}

// produce groups source items into numbered batches. A batch is only sent
// once it holds an in-flight slot.
func produce[T any](
	ctx context.Context,
	size int,
	src Source[T],
	slots *semaphore.Weighted,
	jobs chan<- batch[[]T],
) error {
	for seq := 0; ; seq++ {
		items := make([]T, 0, size)
		eof := false
		for len(items) < size {
			it, err := src.Next()
			if errors.Is(err, io.EOF) {
				eof = true
				break
			}
			if err != nil {
				return err
			}
			items = append(items, it)
		}
		if len(items) > 0 {
			if err := slots.Acquire(ctx, 1); err != nil {
				return err
			}
			select {
			case jobs <- batch[[]T]{seq: seq, items: items}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if eof {
			return nil
		}
	}
}

type slot[T any] struct {
	items T
	ready bool
}

// collect holds finished batches in a ring of window slots and emits them
// strictly by batch number. Emitting a batch frees its in-flight slot; the
// slot bound guarantees that seq%window never collides.
func collect[T any](
	ctx context.Context,
	window int,
	done <-chan batch[T],
	slots *semaphore.Weighted,
	emit func(T) error,
) error {
	ring := make([]slot[T], window)
	next := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-done:
			if !ok {
				return nil
			}
			ring[b.seq%window] = slot[T]{items: b.items, ready: true}
			for {
				s := &ring[next%window]
				if !s.ready {
					break
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := emit(s.items); err != nil {
					return err
				}
				*s = slot[T]{}
				next++
				slots.Release(1)
			}
		}
	}
}
