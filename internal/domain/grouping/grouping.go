// Package grouping enumerates feasible roommate groups from a pool of
// unassigned applicants.
//
// Every singleton is always emitted. Larger groups, up to size 5, require
// every member to allow groups, every member's roommate budget to cover the
// group, and every pairwise compatibility to clear the threshold. Group
// enumeration is combinatorial in pool size; callers run it once per
// auction round over a shrinking pool.
package grouping

import (
	"sort"
	"strings"

	"github.com/davral/homebid/internal/domain/compat"
	"github.com/davral/homebid/internal/domain/model"
)

// SingletonCompatibility is the score assigned to groups of one.
const SingletonCompatibility = 100.0

// maxEnumeratedSize bounds enumeration; larger groups are not considered.
const maxEnumeratedSize = 5

// Group is a non-empty set of unique applicants willing to co-occupy one
// unit. Members are ordered by ID so the member-id tuple is canonical.
type Group struct {
	Members       []model.Applicant
	Compatibility float64

	// MaxSize is the minimum over members of maxOtherRoommates+1.
	MaxSize int
}

// Size returns the member count.
func (g Group) Size() int { return len(g.Members) }

// Key returns the canonical sorted member-id tuple.
func (g Group) Key() string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return strings.Join(ids, "|")
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithThreshold sets the minimum pairwise compatibility for shared groups.
func WithThreshold(threshold float64) Option {
	return func(g *Generator) {
		if threshold >= 0 {
			g.threshold = threshold
		}
	}
}

// WithMaxGroupSize caps enumerated group size; clamped to [1, 5].
func WithMaxGroupSize(size int) Option {
	return func(g *Generator) {
		if size >= 1 {
			g.maxSize = size
			if g.maxSize > maxEnumeratedSize {
				g.maxSize = maxEnumeratedSize
			}
		}
	}
}

// WithScorer sets a custom pairwise scorer.
func WithScorer(s compat.Scorer) Option {
	return func(g *Generator) {
		if s != nil {
			g.scorer = s
		}
	}
}

// Generator enumerates candidate groups.
type Generator struct {
	scorer    compat.Scorer
	threshold float64
	maxSize   int
}

// NewGenerator creates a Generator with default configuration.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		scorer:    compat.NewMeanScorer(),
		threshold: compat.DefaultThreshold,
		maxSize:   maxEnumeratedSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the deduplicated feasible groups for the pool, sorted by
// compatibility descending with the member-id tuple as a deterministic
// tie-break.
func (g *Generator) Generate(pool []model.Applicant) []Group {
	// Work on an ID-sorted copy so enumeration order is deterministic and
	// member tuples come out canonical.
	sorted := make([]model.Applicant, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// Collapse duplicate IDs so an applicant can never pair with itself.
	uniq := sorted[:0]
	for i, a := range sorted {
		if i > 0 && a.ID == sorted[i-1].ID {
			continue
		}
		uniq = append(uniq, a)
	}
	sorted = uniq

	seen := make(map[string]struct{}, len(sorted))
	var out []Group

	emit := func(grp Group) {
		key := grp.Key()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, grp)
	}

	// Singletons never require allowsGroups.
	for _, a := range sorted {
		emit(Group{
			Members:       []model.Applicant{a},
			Compatibility: SingletonCompatibility,
			MaxSize:       1,
		})
	}

	// Only applicants that allow groups and budget at least one roommate
	// can appear in a shared group.
	var eligible []model.Applicant
	for _, a := range sorted {
		if a.AllowsGroups && a.Profile.MaxOtherRoommates >= 1 {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) < 2 || g.maxSize < 2 {
		return out
	}

	// Pairwise scores among eligible applicants, computed once per round.
	scores := make([][]float64, len(eligible))
	for i := range eligible {
		scores[i] = make([]float64, len(eligible))
	}
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			s := g.scorer.Score(eligible[i].Profile, eligible[j].Profile)
			scores[i][j] = s
			scores[j][i] = s
		}
	}

	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			if scores[i][j] < g.threshold {
				continue
			}
			a, b := eligible[i], eligible[j]
			emit(Group{
				Members:       []model.Applicant{a, b},
				Compatibility: scores[i][j],
				MaxSize:       min(a.Profile.MaxOtherRoommates, b.Profile.MaxOtherRoommates) + 1,
			})
		}
	}

	for size := 3; size <= g.maxSize; size++ {
		g.enumerateSize(eligible, scores, size, emit)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Compatibility != out[j].Compatibility {
			return out[i].Compatibility > out[j].Compatibility
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// enumerateSize walks all index combinations of the given size iteratively
// with an explicit index slice. The per-member roommate-budget check runs
// before the pairwise compatibility check.
func (g *Generator) enumerateSize(eligible []model.Applicant, scores [][]float64, size int, emit func(Group)) {
	n := len(eligible)
	if n < size {
		return
	}

	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}

	for {
		if grp, ok := g.buildGroup(eligible, scores, idx); ok {
			emit(grp)
		}

		// Advance to the next combination.
		i := size - 1
		for i >= 0 && idx[i] == n-size+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func (g *Generator) buildGroup(eligible []model.Applicant, scores [][]float64, idx []int) (Group, bool) {
	size := len(idx)

	maxSize := maxEnumeratedSize + 1
	for _, i := range idx {
		budget := eligible[i].Profile.MaxOtherRoommates
		if budget < size-1 {
			return Group{}, false
		}
		if budget+1 < maxSize {
			maxSize = budget + 1
		}
	}

	var sum float64
	var pairs int
	for a := 0; a < size; a++ {
		for b := a + 1; b < size; b++ {
			s := scores[idx[a]][idx[b]]
			if s < g.threshold {
				return Group{}, false
			}
			sum += s
			pairs++
		}
	}

	members := make([]model.Applicant, size)
	for i, j := range idx {
		members[i] = eligible[j]
	}
	return Group{
		Members:       members,
		Compatibility: sum / float64(pairs),
		MaxSize:       maxSize,
	}, true
}
