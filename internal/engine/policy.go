package engine

import "sort"

// Policy orders scored candidates and picks one.
type Policy[T any] interface {
	Rank(ctx *Context, scored []Scored[T]) []Scored[T]
	Choose(ctx *Context, scored []Scored[T]) (Scored[T], bool)
}

// RandomPolicy keeps the expansion order and chooses uniformly.
type RandomPolicy[T any] struct{}

func (RandomPolicy[T]) Rank(_ *Context, scored []Scored[T]) []Scored[T] { return scored }

func (RandomPolicy[T]) Choose(ctx *Context, scored []Scored[T]) (Scored[T], bool) {
	if len(scored) == 0 {
		var zero Scored[T]
		return zero, false
	}
	return scored[ctx.Rand.IntN(len(scored))], true
}

// GreedyPolicy ranks by score and always takes the best.
type GreedyPolicy[T any] struct{}

func (GreedyPolicy[T]) Rank(_ *Context, scored []Scored[T]) []Scored[T] {
	ranked := append([]Scored[T](nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

func (GreedyPolicy[T]) Choose(_ *Context, scored []Scored[T]) (Scored[T], bool) {
	if len(scored) == 0 {
		var zero Scored[T]
		return zero, false
	}
	best := scored[0]
	for _, sc := range scored[1:] {
		if sc.Score > best.Score {
			best = sc
		}
	}
	return best, true
}
