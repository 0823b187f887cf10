// Package engine runs staged beam search over generation contexts.
package engine

import "sort"

// Pipeline applies a fixed list of steps to a beam of contexts.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline { return &Pipeline{steps: steps} }

func (p *Pipeline) Steps() []Step { return p.steps }

type beamEntry struct {
	ctx   *Context
	score float64
}

// Run returns the surviving contexts best first, or nil as soon as a step
// produces no successor for any beam entry. beamWidth below 1 is treated as 1.
func (p *Pipeline) Run(ctx *Context, beamWidth, topK int) []*Context {
	if beamWidth < 1 {
		beamWidth = 1
	}

	beam := []beamEntry{{ctx: ctx}}
	for _, step := range p.steps {
		var next []beamEntry
		for _, entry := range beam {
			for _, succ := range step.Successors(entry.ctx, topK) {
				next = append(next, beamEntry{ctx: succ.Context, score: entry.score + succ.Score})
			}
		}
		if len(next) == 0 {
			return nil
		}
		sort.SliceStable(next, func(i, j int) bool { return next[i].score > next[j].score })
		if len(next) > beamWidth {
			next = next[:beamWidth]
		}
		beam = next
	}

	out := make([]*Context, len(beam))
	for i, entry := range beam {
		out[i] = entry.ctx
	}
	return out
}
