// Package valuation computes adjusted bids for applicants and groups
// against a candidate unit.
//
// A member's value is their bid ceiling minus the worth penalty of every
// unmet attribute preference; penalties are independent and additive. A
// group's bid sums its members' values and clamps the total, not each
// member, at zero.
package valuation

import (
	"fmt"

	"github.com/davral/homebid/internal/domain/grouping"
	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/profile"
)

// DirectionRule selects how desired window directions match a unit's set.
// Exactly one rule is active per run; the rules are never blended.
type DirectionRule string

const (
	// DirectionAnyOverlap is satisfied when at least one desired direction
	// appears in the unit's set. This is the default.
	DirectionAnyOverlap DirectionRule = "any-overlap"

	// DirectionSubset requires every desired direction to be present.
	DirectionSubset DirectionRule = "subset"

	// DirectionQuorum75 requires at least 75% of desired directions to be
	// present.
	DirectionQuorum75 DirectionRule = "quorum75"
)

const quorumShare = 0.75

// ParseDirectionRule converts a configuration string to a DirectionRule.
func ParseDirectionRule(s string) (DirectionRule, error) {
	switch DirectionRule(s) {
	case DirectionAnyOverlap, DirectionSubset, DirectionQuorum75:
		return DirectionRule(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirectionRule, s)
	}
}

// Option applies a configuration option to the Adjuster.
type Option func(*Adjuster)

// WithDirectionRule sets the window-direction matching rule.
func WithDirectionRule(rule DirectionRule) Option {
	return func(a *Adjuster) {
		if rule != "" {
			a.rule = rule
		}
	}
}

// Adjuster computes adjusted bid values.
type Adjuster struct {
	rule DirectionRule
}

// NewAdjuster creates an Adjuster with default configuration.
func NewAdjuster(opts ...Option) *Adjuster {
	a := &Adjuster{rule: DirectionAnyOverlap}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MemberValue returns one applicant's adjusted value for the unit. The
// result may be negative; clamping happens at the group level.
func (a *Adjuster) MemberValue(p profile.Profile, u model.Unit) float64 {
	value := p.BidCeiling

	ranged := [...]struct {
		pref *profile.RangePref
		have float64
	}{
		{p.Area, u.AreaSqm},
		{p.WindowCount, float64(u.WindowCount)},
		{p.WindowSizeSum, u.WindowSizeSum},
		{p.Bedrooms, float64(u.Bedrooms)},
		{p.Bathrooms, u.Bathrooms},
	}
	for _, r := range ranged {
		if r.pref != nil && !r.pref.Contains(r.have) {
			value -= r.pref.Worth
		}
	}

	if p.Directions != nil && len(p.Directions.Directions) > 0 &&
		!a.directionsMet(p.Directions.Directions, u.Directions) {
		value -= p.Directions.Worth
	}

	amenities := [...]struct {
		pref *profile.AmenityPref
		have bool
	}{
		{p.Dishwasher, u.HasDishwasher},
		{p.Washer, u.HasWasher},
		{p.Dryer, u.HasDryer},
	}
	for _, am := range amenities {
		if am.pref != nil && am.pref.Wanted && !am.have {
			value -= am.pref.Worth
		}
	}

	return value
}

// GroupBid sums the members' individually adjusted values and clamps the
// total at zero.
func (a *Adjuster) GroupBid(g grouping.Group, u model.Unit) float64 {
	var total float64
	for _, m := range g.Members {
		total += a.MemberValue(m.Profile, u)
	}
	if total < 0 {
		return 0
	}
	return total
}

func (a *Adjuster) directionsMet(want, have []string) bool {
	present := make(map[string]struct{}, len(have))
	for _, d := range have {
		present[d] = struct{}{}
	}

	matched := 0
	for _, d := range want {
		if _, ok := present[d]; ok {
			matched++
		}
	}

	switch a.rule {
	case DirectionSubset:
		return matched == len(want)
	case DirectionQuorum75:
		return float64(matched) >= quorumShare*float64(len(want))
	default: // DirectionAnyOverlap
		return matched > 0
	}
}
