package engine

import (
	"math/rand/v2"

	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Context is the mutable state of one partial progression inside the beam.
type Context struct {
	Audit       *Audit
	Key         *relations.KeyID
	Mode        *relations.ModeID
	Progression []relations.Triple
	Rand        *rand.Rand
	Goals       *goals.Schedule
	Memo        *goals.Memo
}

// NewContext returns an empty context drawing from rng.
func NewContext(rng *rand.Rand) *Context {
	return &Context{
		Audit: NewAudit(),
		Rand:  rng,
		Memo:  goals.NewMemo(),
	}
}

// Clone shares the random source, goal schedule and memo, derives a child
// audit and copies the progression.
func (c *Context) Clone() *Context {
	clone := *c
	clone.Audit = c.Audit.Child()
	clone.Progression = append([]relations.Triple(nil), c.Progression...)
	if c.Key != nil {
		k := *c.Key
		clone.Key = &k
	}
	if c.Mode != nil {
		m := *c.Mode
		clone.Mode = &m
	}
	return &clone
}

// Last returns the most recent triple.
func (c *Context) Last() (relations.Triple, bool) {
	if len(c.Progression) == 0 {
		return relations.Triple{}, false
	}
	return c.Progression[len(c.Progression)-1], true
}

// Roots lists the absolute roots of the progression so far.
func (c *Context) Roots() []theory.Degree {
	roots := make([]theory.Degree, len(c.Progression))
	for i, t := range c.Progression {
		roots[i] = t.AbsoluteRoot()
	}
	return roots
}
