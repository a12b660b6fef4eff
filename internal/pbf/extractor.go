// Package pbf drives a relations.Manager through a full PBF file using
// a two-pass node-index-then-geometry shape: pass 1 builds the mmap'd
// node coordinate index and
// registers relations of interest, pass 2 resolves every node/way/
// relation against the index and streams it through the Manager,
// completing relations as their members are observed.
package pbf

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/etresoft/libosmium/internal/config"
	"github.com/etresoft/libosmium/internal/logger"
	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/nodeindex"
	"github.com/etresoft/libosmium/internal/relations"
)

// Stats holds source statistics for one Run.
type Stats struct {
	Nodes     int64
	Ways      int64
	Relations int64
}

// Source reads a PBF file and drives mgr through both of its passes.
type Source struct {
	cfg *config.Config
	mgr *relations.Manager

	nodeIndex     *nodeindex.MmapIndex
	nodeIndexPath string
}

// NewSource creates a Source bound to mgr. cfg.InputFile names the PBF
// file to read; cfg.OutputDir holds the scratch node-coordinate index.
func NewSource(cfg *config.Config, mgr *relations.Manager) (*Source, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("pbf: failed to create output directory: %w", err)
	}
	return &Source{
		cfg:           cfg,
		mgr:           mgr,
		nodeIndexPath: cfg.OutputDir + "/node_index.bin",
	}, nil
}

// Close releases the node index, removing its scratch file.
func (s *Source) Close() error {
	if s.nodeIndex != nil {
		s.nodeIndex.Close()
		s.nodeIndex = nil
	}
	os.Remove(s.nodeIndexPath)
	return nil
}

func (s *Source) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return runtime.NumCPU()
}

// Run executes both passes and returns once every relation observed in
// the file has either completed or been left permanently pending.
func (s *Source) Run(ctx context.Context) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{}

	f, err := os.Open(s.cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("pbf: failed to open %s: %w", s.cfg.InputFile, err)
	}
	defer f.Close()

	log.Info("Pass 1: indexing node coordinates and registering relations of interest")
	start := time.Now()
	if err := s.pass1(ctx, f, stats); err != nil {
		return nil, err
	}
	log.Info("Pass 1 complete",
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("relations", stats.Relations),
		zap.Duration("duration", time.Since(start).Round(time.Second)))

	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("pbf: failed to rewind %s: %w", s.cfg.InputFile, err)
	}
	s.nodeIndex, err = nodeindex.OpenMmapIndex(s.nodeIndexPath)
	if err != nil {
		return nil, fmt.Errorf("pbf: failed to reopen node index: %w", err)
	}

	s.mgr.PreparePass2()
	stats.Nodes, stats.Relations = 0, 0

	log.Info("Pass 2: resolving members and completing relations")
	start = time.Now()
	if err := s.pass2(ctx, f, stats); err != nil {
		return nil, err
	}
	log.Info("Pass 2 complete",
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("ways", stats.Ways),
		zap.Int64("relations", stats.Relations),
		zap.Duration("duration", time.Since(start).Round(time.Second)))

	return stats, nil
}

func (s *Source) pass1(ctx context.Context, f *os.File, stats *Stats) error {
	idx, err := nodeindex.NewMmapIndex(s.nodeIndexPath)
	if err != nil {
		return fmt.Errorf("pbf: failed to create node index: %w", err)
	}
	defer idx.Close()

	scanner := osmpbf.New(ctx, f, s.workers())
	defer scanner.Close()

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			idx.Put(int64(o.ID), o.Lat, o.Lon)
			stats.Nodes++
		case *osm.Relation:
			stats.Relations++
			if err := s.mgr.Pass1Relation(toModelRelation(o)); err != nil {
				return fmt.Errorf("pbf: pass 1: %w", err)
			}
		}
	}
	if err := idx.Sync(); err != nil {
		return fmt.Errorf("pbf: failed to sync node index: %w", err)
	}
	return scanErr(scanner)
}

func (s *Source) pass2(ctx context.Context, f *os.File, stats *Stats) error {
	scanner := osmpbf.New(ctx, f, s.workers())
	defer scanner.Close()

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			stats.Nodes++
			lat, lon, _ := s.nodeIndex.Get(int64(o.ID))
			if err := s.mgr.Pass2Node(toModelNode(o, lat, lon)); err != nil {
				return fmt.Errorf("pbf: pass 2 node: %w", err)
			}
		case *osm.Way:
			stats.Ways++
			way := s.toModelWay(o)
			if err := s.mgr.Pass2Way(way); err != nil {
				return fmt.Errorf("pbf: pass 2 way: %w", err)
			}
		case *osm.Relation:
			stats.Relations++
			if err := s.mgr.Pass2Relation(toModelRelation(o)); err != nil {
				return fmt.Errorf("pbf: pass 2 relation: %w", err)
			}
		}
	}
	return scanErr(scanner)
}

func (s *Source) toModelWay(w *osm.Way) model.Way {
	nodes := make([]model.NodeRef, len(w.Nodes))
	for i, n := range w.Nodes {
		lat, lon, ok := s.nodeIndex.Get(int64(n.ID))
		ref := model.NodeRef{Ref: int64(n.ID)}
		if ok {
			ref.Location = model.Location{X: scaleCoord(lon), Y: scaleCoord(lat)}
		}
		nodes[i] = ref
	}
	return model.Way{
		ID:    int64(w.ID),
		Nodes: nodes,
		Tags:  tagsToMap(w.Tags),
		Meta:  wayMeta(w),
	}
}

func scanErr(scanner *osmpbf.Scanner) error {
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
