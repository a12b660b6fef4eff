package areapool

import (
	"context"
	"sync"
	"testing"

	"github.com/etresoft/libosmium/internal/area"
	"github.com/etresoft/libosmium/internal/model"
)

func nr(ref, x, y int64) model.NodeRef {
	return model.NodeRef{Ref: ref, Location: model.Location{X: x, Y: y}}
}

func TestPoolRunsAllJobsConcurrently(t *testing.T) {
	jobs := make([]Job, 0, 20)
	for i := int64(1); i <= 20; i++ {
		w := model.Way{ID: i, Nodes: []model.NodeRef{
			nr(i*10+1, 0, 0), nr(i*10+2, 10, 0), nr(i*10+3, 10, 10), nr(i*10+4, 0, 10), nr(i*10+1, 0, 0),
		}}
		jobs = append(jobs, Job{Relation: model.Relation{ID: i}, Ways: []model.Way{w}})
	}

	pool := New(area.Config{}, 4)

	var mu sync.Mutex
	seen := map[int64]bool{}
	err := pool.Run(context.Background(), jobs, func(res area.Result) {
		mu.Lock()
		seen[res.Area.RelationID()] = res.Area.Valid()
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(seen))
	}
	for id, valid := range seen {
		if !valid {
			t.Fatalf("relation %d unexpectedly produced an invalid area", id)
		}
	}
}

func TestPoolRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Relation: model.Relation{ID: 1}}}
	pool := New(area.Config{}, 1)

	err := pool.Run(ctx, jobs, func(area.Result) {})
	if err == nil {
		t.Fatalf("expected an error from a pre-cancelled context")
	}
}
