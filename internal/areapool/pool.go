// Package areapool runs the assembler across many different completed
// relations concurrently. This never violates "concurrent
// multi-relation assembly" Non-goal: the Assembler itself stays
// single-threaded and stateless between invocations — each
// goroutine here constructs its own fresh area.Assembler value and
// drives exactly one relation, end to end, alone.
package areapool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/etresoft/libosmium/internal/area"
	"github.com/etresoft/libosmium/internal/model"
)

// Job is one completed relation ready for assembly: the relation record
// plus its resolved way members, gathered by the caller via
// relations.Manager.ResolveWay after a CompleteRelation callback.
type Job struct {
	Relation model.Relation
	Ways     []model.Way
}

// Pool bounds how many relations are assembled concurrently, grounded in
// a parallel worker-pool shape built on golang.org/x/sync/errgroup
// instead of hand-rolled channels.
type Pool struct {
	cfg   area.Config
	limit int
}

// New creates a Pool that assembles at most limit relations at a time.
// limit <= 0 is treated as 1 (fully sequential).
func New(cfg area.Config, limit int) *Pool {
	if limit <= 0 {
		limit = 1
	}
	return &Pool{cfg: cfg, limit: limit}
}

// Run dispatches every job across the pool's goroutines and calls
// onResult once per completed assembly. onResult is called under an
// internal mutex, so it may safely mutate shared state (e.g. append to a
// slice, or write into internal/areastore) without its own locking.
// Run returns the first error encountered (from ctx cancellation); it
// never fails because an individual relation had a ringless result —
// that is the expected per-relation outcome, not an error.
func (p *Pool) Run(ctx context.Context, jobs []Job, onResult func(area.Result)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	var mu sync.Mutex
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			asm := area.NewAssembler(p.cfg)
			res := asm.Assemble(j.Relation, j.Ways)

			mu.Lock()
			onResult(res)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}
