package area

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/etresoft/libosmium/internal/logger"
	"github.com/etresoft/libosmium/internal/model"
)

// Config carries the configuration knobs exposed on the assembler.
type Config struct {
	// DebugOutput, when true, emits diagnostic traces of segment
	// processing, ring matches and classification decisions to the
	// package logger's Debug level. The traces are only produced when this
	// flag is set, and they are only written when the global logger was
	// initialised at debug level; at the default Info level they are
	// discarded.
	DebugOutput bool

	// RememberProblems, when true, retains the list of detected input
	// defects on the returned Result. When false, detection still occurs
	// (the area is still marked invalid) but the defect list is discarded.
	RememberProblems bool
}

// Result is everything one Assemble invocation produces: the Area record
// plus (optionally) the list of defects detected while building it.
type Result struct {
	Area     model.Area
	Problems []Problem
}

// Assembler reconstructs one multipolygon relation's Area from its way
// members. It is single-threaded and stateless between invocations: a
// fresh Assembler value is cheap and safe to build per relation,
// including concurrently across different relations (see
// internal/areapool).
type Assembler struct {
	cfg Config
}

// NewAssembler creates an Assembler with the given configuration.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

func (a *Assembler) debugf(format string, args ...any) {
	if !a.cfg.DebugOutput {
		return
	}
	logger.Get().Debug(fmt.Sprintf(format, args...))
}

// Assemble implements end to end: it builds the segment
// set from rel's way members, dedups paired edges, checks for crossings,
// builds rings, classifies outer/inner, and emits an Area. rel's Tags and
// Meta are always copied into the result, even when no valid geometry can
// be produced (: "Relation with no valid rings").
func (a *Assembler) Assemble(rel model.Relation, ways []model.Way) Result {
	areaBase := model.Area{
		AreaID: model.DeriveAreaID(rel.ID),
		Meta:   rel.Meta,
		Tags:   rel.Tags,
	}

	segs := BuildSegments(ways)
	SortSegments(segs)
	segs = DedupSegments(segs)
	a.debugf("area: relation %d has %d edges after dedup", rel.ID, len(segs))

	var problems []Problem

	if crossings := FindIntersections(segs); len(crossings) > 0 {
		for _, c := range crossings {
			a.debugf("area: relation %d: intersection at (%d,%d)", rel.ID, c.Location.X, c.Location.Y)
			problems = append(problems, Problem{Kind: ProblemIntersection, Location: c.Location, SegA: c.A, SegB: c.B})
		}
		return a.ringless(areaBase, problems)
	}

	builder := NewBuilder(segs, func(format string, args ...any) {
		if a.cfg.DebugOutput {
			logger.Get().Debug(fmt.Sprintf(format, args...), zap.Int64("relation", rel.ID))
		}
	})
	rings := builder.Build()

	if unclosed := UnclosedEndpoints(rings); len(unclosed) > 0 {
		for _, ends := range unclosed {
			problems = append(problems,
				Problem{Kind: ProblemRingNotClosed, Endpoint: ends[0]},
				Problem{Kind: ProblemRingNotClosed, Endpoint: ends[1]},
			)
			a.debugf("area: relation %d: unclosed ring between nodes %d and %d", rel.ID, ends[0].Ref, ends[1].Ref)
		}
		return a.ringless(areaBase, problems)
	}

	outerIdx, orphanProblems := classifyRings(rings)
	if len(orphanProblems) > 0 {
		problems = append(problems, orphanProblems...)
		return a.ringless(areaBase, problems)
	}

	for _, oi := range outerIdx {
		outer := rings[oi]
		group := model.RingGroup{Outer: model.Ring{Kind: model.RingOuter, Nodes: outer.nodes}}
		for _, ii := range outer.inners {
			group.Inners = append(group.Inners, model.Ring{Kind: model.RingInner, Nodes: rings[ii].nodes})
		}
		areaBase.Rings = append(areaBase.Rings, group)
	}
	a.debugf("area: relation %d assembled %d outer ring(s)", rel.ID, len(outerIdx))

	return Result{Area: areaBase, Problems: a.keepProblems(problems)}
}

func (a *Assembler) ringless(base model.Area, problems []Problem) Result {
	base.Rings = nil
	return Result{Area: base, Problems: a.keepProblems(problems)}
}

func (a *Assembler) keepProblems(problems []Problem) []Problem {
	if !a.cfg.RememberProblems {
		return nil
	}
	return problems
}
