// Package auction runs the iterative assignment and payment procedure.
//
// Each round regenerates candidate groups from the shrinking unassigned
// pool, collects every positive (unit, group) bid, assigns the globally
// best pairing, and prices it with a second-price rule. The engine is a
// pure, synchronous batch computation over in-memory snapshots: callers
// snapshot inputs, run it to completion, and apply outputs atomically.
package auction

import (
	"context"
	"fmt"
	"sort"

	"github.com/davral/homebid/internal/domain/grouping"
	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/valuation"
	"github.com/davral/homebid/pkg/logger"
)

// DefaultIterationCap bounds rounds as defense against unforeseen
// nontermination; the pool shrinking every successful round is the real
// termination argument.
const DefaultIterationCap = 100

// Result carries the outcome of one full matching run.
type Result struct {
	Assignments []model.Assignment
	Rounds      int

	// CapReached is set when the iteration cap terminated the run. It
	// indicates a configuration or data anomaly and must be surfaced to
	// the operator.
	CapReached bool

	// Enumeration counters for observability.
	GroupsGenerated int
	BidsEvaluated   int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGenerator sets the group generator.
func WithGenerator(g *grouping.Generator) Option {
	return func(e *Engine) {
		if g != nil {
			e.generator = g
		}
	}
}

// WithAdjuster sets the valuation adjuster.
func WithAdjuster(a *valuation.Adjuster) Option {
	return func(e *Engine) {
		if a != nil {
			e.adjuster = a
		}
	}
}

// WithIterationCap sets the round cap.
func WithIterationCap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cap = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine orchestrates auction rounds. It holds no hidden shared state;
// every input is passed to Run, so engines are safe to use from parallel
// tests with distinct inputs.
type Engine struct {
	generator *grouping.Generator
	adjuster  *valuation.Adjuster
	cap       int
	log       logger.Logger
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		generator: grouping.NewGenerator(),
		adjuster:  valuation.NewAdjuster(),
		cap:       DefaultIterationCap,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// bid is ephemeral: recomputed fresh each round, never persisted.
type bid struct {
	group grouping.Group
	value float64
}

// unitRound holds all positive bids observed for one unit in one round.
type unitRound struct {
	unitIdx int
	bids    []bid
	top     int // index of the highest bid
}

// Run executes auction rounds until no positive bid remains or the
// iteration cap trips. Inputs are copied; the caller's slices are never
// mutated. The context is only consulted between rounds.
func (e *Engine) Run(ctx context.Context, applicants []model.Applicant, units []model.Unit) (Result, error) {
	pool := make([]model.Applicant, len(applicants))
	copy(pool, applicants)
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	open := make([]model.Unit, len(units))
	copy(open, units)
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })

	var res Result

	for {
		if len(pool) == 0 {
			break
		}
		if res.Rounds >= e.cap {
			res.CapReached = true
			e.log.Warn(ctx, "iteration cap reached, terminating run",
				logger.Int("cap", e.cap),
				logger.Int("poolSize", len(pool)),
			)
			break
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("auction interrupted: %w", err)
		}

		groups := e.generator.Generate(pool)
		res.GroupsGenerated += len(groups)

		best, evaluated := e.collectBids(groups, open)
		res.BidsEvaluated += evaluated
		if best == nil {
			break
		}

		res.Rounds++
		assignment := e.settle(ctx, res.Rounds, best, &open[best.unitIdx])
		res.Assignments = append(res.Assignments, assignment)

		winGroup := best.bids[best.top].group
		assigned := make(map[string]struct{}, winGroup.Size())
		for _, m := range winGroup.Members {
			assigned[m.ID] = struct{}{}
		}
		remaining := pool[:0]
		for _, a := range pool {
			if _, ok := assigned[a.ID]; !ok {
				remaining = append(remaining, a)
			}
		}
		pool = remaining
	}

	return res, nil
}

// collectBids evaluates every eligible (unit, group) pair and returns the
// round winner: the unit whose top bid is highest network-wide, carrying
// every positive bid that unit drew. Returns nil when no positive bid
// exists.
func (e *Engine) collectBids(groups []grouping.Group, open []model.Unit) (*unitRound, int) {
	var best *unitRound
	evaluated := 0

	for i := range open {
		unit := open[i]
		remaining := unit.Remaining()
		if remaining <= 0 {
			continue
		}

		var ur *unitRound
		for _, g := range groups {
			if !eligible(g, unit, remaining) {
				continue
			}
			evaluated++
			value := e.adjuster.GroupBid(g, unit)
			if value <= 0 {
				continue
			}
			if ur == nil {
				ur = &unitRound{unitIdx: i}
			}
			ur.bids = append(ur.bids, bid{group: g, value: value})
			if value > ur.bids[ur.top].value {
				ur.top = len(ur.bids) - 1
			}
		}

		if ur != nil && (best == nil || ur.bids[ur.top].value > best.bids[best.top].value) {
			best = ur
		}
	}

	return best, evaluated
}

// secondPrice returns the highest bid on the unit from a group sharing no
// member with the winner. Bids overlapping the winner are invalidated by
// the assignment itself and cannot price it; without a disjoint rival the
// winner pays its own bid.
func secondPrice(ur *unitRound) (float64, bool) {
	winner := make(map[string]struct{}, ur.bids[ur.top].group.Size())
	for _, m := range ur.bids[ur.top].group.Members {
		winner[m.ID] = struct{}{}
	}

	best := 0.0
	found := false
	for i, b := range ur.bids {
		if i == ur.top {
			continue
		}
		overlaps := false
		for _, m := range b.group.Members {
			if _, ok := winner[m.ID]; ok {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		if !found || b.value > best {
			best = b.value
			found = true
		}
	}
	return best, found
}

// eligible checks remaining capacity, mutual sharing permission, and the
// group's own size ceiling.
func eligible(g grouping.Group, unit model.Unit, remaining int) bool {
	size := g.Size()
	if size > remaining {
		return false
	}
	if size > g.MaxSize {
		return false
	}
	if size > 1 {
		if !unit.AllowsSharing {
			return false
		}
		for _, m := range g.Members {
			if !m.AllowsGroups {
				return false
			}
		}
	}
	return true
}

// settle prices the winning bid, splits the payment, and updates the
// unit's occupancy.
func (e *Engine) settle(ctx context.Context, round int, win *unitRound, unit *model.Unit) model.Assignment {
	top := win.bids[win.top]
	group := top.group

	// Second-price rule with first-price fallback when no rival bid exists.
	payment := top.value
	secondBid := 0.0
	if second, ok := secondPrice(win); ok {
		payment = second
		secondBid = second
	}

	// Payment splits proportionally to original bid ceilings, not to the
	// post-penalty adjusted values.
	var ceilingSum float64
	for _, m := range group.Members {
		ceilingSum += m.Profile.BidCeiling
	}

	members := make([]model.MemberPayment, len(group.Members))
	for i, m := range group.Members {
		share := 0.0
		if ceilingSum > 0 {
			share = m.Profile.BidCeiling / ceilingSum
		}
		members[i] = model.MemberPayment{
			ApplicantID: m.ID,
			Name:        m.Name,
			Payment:     payment * share,
			AdjustedBid: e.adjuster.MemberValue(m.Profile, *unit),
		}
	}

	unit.Occupancy += group.Size()

	e.log.Info(ctx, "round settled",
		logger.Int("round", round),
		logger.String("unit", unit.ID),
		logger.Int("groupSize", group.Size()),
		logger.Float64("winningBid", top.value),
		logger.Float64("payment", payment),
	)

	return model.Assignment{
		Round:        round,
		UnitID:       unit.ID,
		UnitName:     unit.Name,
		Capacity:     unit.Capacity,
		Occupancy:    unit.Occupancy,
		WinningBid:   top.value,
		SecondBid:    secondBid,
		PaymentTotal: payment,
		Members:      members,
	}
}
