// Package patterns holds the per-frame animation generators. Each
// pattern is stateless between frames: given the tree and a frame
// number it stages every LED it cares about and commits once. Patterns
// never read LEDs back.
package patterns

import (
	"math/rand"

	"github.com/coreman2200/funtimes-arborluminis/internal/layout"
	"github.com/coreman2200/funtimes-arborluminis/internal/palette"
	"github.com/coreman2200/funtimes-arborluminis/internal/tree"
)

// Tree is the slice of the device the patterns drive.
type Tree interface {
	Len() int
	Set(ind int, val []int) error
	SetRange(r tree.Range, a tree.Assignment) error
	Commit() error
}

// Pattern draws one frame per call. n counts frames from 0 within the
// pattern's run; a pattern must produce the same frame for the same n
// apart from deliberate randomness.
type Pattern interface {
	Name() string
	Frame(t Tree, n int) error
}

// Registry maps pattern names to implementations.
type Registry struct{ m map[string]Pattern }

func NewRegistry() *Registry { return &Registry{m: map[string]Pattern{}} }

func (r *Registry) Register(p Pattern) {
	if p == nil {
		return
	}
	r.m[p.Name()] = p
}

func (r *Registry) Get(name string) (Pattern, bool) { p, ok := r.m[name]; return p, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}

// Default returns a registry with all four stock patterns. rnd feeds
// the patterns that need randomness.
func Default(rnd *rand.Rand) *Registry {
	r := NewRegistry()
	r.Register(Swirl{})
	r.Register(Spin{})
	r.Register(&Sparkle{Rnd: rnd, Count: 5})
	r.Register(&Random{Rnd: rnd})
	return r
}

// Swirl rotates a window of the four-colour cycle down the branches,
// one palette step per frame. Branches are driven in pairs showing the
// same window, and the star stays white.
type Swirl struct{}

func (Swirl) Name() string { return "swirl" }

func (Swirl) Frame(t Tree, n int) error {
	if err := t.Set(layout.Star, palette.White); err != nil {
		return err
	}
	cycle := len(palette.Swirl)
	for pair := 0; pair < layout.NumBranches/2; pair++ {
		start := mod(pair-n, cycle)
		for _, branch := range []int{pair * 2, pair*2 + 1} {
			for row, ind := range layout.Column(branch) {
				if err := t.Set(ind, palette.Swirl[(start+row)%cycle]); err != nil {
					return err
				}
			}
		}
	}
	return t.Commit()
}

// Spin lights a single branch sweeping around the tree, advancing one
// palette colour per full revolution.
type Spin struct{}

func (Spin) Name() string { return "spin" }

func (Spin) Frame(t Tree, n int) error {
	if err := t.SetRange(tree.Range{}, tree.Broadcast(palette.Off)); err != nil {
		return err
	}
	colour := palette.Swirl[(n/layout.NumBranches)%len(palette.Swirl)]
	for _, ind := range layout.Column(n % layout.NumBranches) {
		if err := t.Set(ind, colour); err != nil {
			return err
		}
	}
	if err := t.Set(layout.Star, palette.White); err != nil {
		return err
	}
	return t.Commit()
}

// Sparkle flashes Count random LEDs at full white on a dark tree.
type Sparkle struct {
	Rnd   *rand.Rand
	Count int
}

func (*Sparkle) Name() string { return "sparkle" }

func (s *Sparkle) Frame(t Tree, n int) error {
	if err := t.SetRange(tree.Range{}, tree.Broadcast(palette.Off)); err != nil {
		return err
	}
	for k := 0; k < s.Count; k++ {
		ind := s.Rnd.Intn(t.Len())
		if err := t.Set(ind, []int{tree.MaxBrightness, 255, 255, 255}); err != nil {
			return err
		}
	}
	return t.Commit()
}

// Random gives every LED an independent fully saturated colour each
// frame.
type Random struct {
	Rnd *rand.Rand
}

func (*Random) Name() string { return "random" }

func (r *Random) Frame(t Tree, n int) error {
	recs := make([][]int, t.Len())
	for i := range recs {
		recs[i] = palette.Random(r.Rnd)
	}
	if err := t.SetRange(tree.Range{}, tree.PerIndex(recs...)); err != nil {
		return err
	}
	return t.Commit()
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
