// Package devdata generates synthetic applicant and unit pools for
// seeding demo databases and exercising the engine at scale.
package devdata

import (
	"fmt"
	"math/rand"

	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/profile"
)

// Generation ranges. Loosely modeled on realistic rental data.
const (
	ceilingMin   = 400.0
	ceilingRange = 1600.0
	areaMin      = 30.0
	areaRange    = 120.0
	worthMin     = 20.0
	worthRange   = 180.0
	soloShare    = 0.3
	maxRoommates = 4
)

var directions = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"} //nolint:gochecknoglobals // fixed vocabulary

var firstNames = []string{ //nolint:gochecknoglobals // fixed vocabulary
	"Alice", "Bob", "Charlie", "Dana", "Elif", "Farid", "Greta", "Hugo",
	"Ines", "Jonas", "Kira", "Lars", "Mina", "Noor", "Otto", "Priya",
}

// Generator produces deterministic synthetic pools from a seed.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator with the given seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // synthetic data, determinism wanted
}

// Applicants generates n applicants with varied profiles. Roughly a third
// are solo-only.
func (g *Generator) Applicants(n int) []model.Applicant {
	out := make([]model.Applicant, n)
	for i := range out {
		solo := g.rng.Float64() < soloShare

		p := profile.Profile{
			BidCeiling: ceilingMin + g.rng.Float64()*ceilingRange,
		}
		if !solo {
			p.MaxOtherRoommates = 1 + g.rng.Intn(maxRoommates)
		}

		areaLo := areaMin + g.rng.Float64()*areaRange/2
		p.Area = &profile.RangePref{
			Min:   areaLo,
			Max:   areaLo + 20 + g.rng.Float64()*areaRange/2,
			Worth: worthMin + g.rng.Float64()*worthRange,
		}
		if g.rng.Intn(2) == 0 {
			p.Bedrooms = &profile.RangePref{
				Min:   1,
				Max:   float64(1 + g.rng.Intn(4)),
				Worth: worthMin + g.rng.Float64()*worthRange,
			}
		}
		if g.rng.Intn(3) == 0 {
			p.Dishwasher = &profile.AmenityPref{Wanted: true, Worth: worthMin + g.rng.Float64()*worthRange/2}
		}
		if g.rng.Intn(3) == 0 {
			want := make([]string, 0, 2)
			want = append(want, directions[g.rng.Intn(len(directions))])
			if g.rng.Intn(2) == 0 {
				want = append(want, directions[g.rng.Intn(len(directions))])
			}
			p.Directions = &profile.DirectionPref{Directions: want, Worth: worthMin + g.rng.Float64()*worthRange/2}
		}

		p.Cleanliness = g.score()
		p.Quietness = g.score()
		p.GuestTolerance = g.score()
		p.PersonalSpace = g.score()
		p.SleepWindow = g.window(1260, 180) // around 21:00-03:00
		p.WakeWindow = g.window(330, 240)   // around 05:30-09:30

		out[i] = model.Applicant{
			ID:           fmt.Sprintf("a-%03d", i+1),
			Name:         fmt.Sprintf("%s %c.", firstNames[g.rng.Intn(len(firstNames))], 'A'+rune(g.rng.Intn(26))),
			AllowsGroups: !solo,
			Profile:      p,
		}
	}
	return out
}

// Units generates n units with varied attributes.
func (g *Generator) Units(n int) []model.Unit {
	out := make([]model.Unit, n)
	for i := range out {
		bedrooms := 1 + g.rng.Intn(4)
		windowCount := 2 + g.rng.Intn(6)

		dirCount := 1 + g.rng.Intn(3)
		dirs := make([]string, 0, dirCount)
		for len(dirs) < dirCount {
			d := directions[g.rng.Intn(len(directions))]
			dup := false
			for _, have := range dirs {
				if have == d {
					dup = true
				}
			}
			if !dup {
				dirs = append(dirs, d)
			}
		}

		out[i] = model.Unit{
			ID:            fmt.Sprintf("u-%03d", i+1),
			Name:          fmt.Sprintf("Unit %d", i+1),
			AreaSqm:       areaMin + g.rng.Float64()*areaRange,
			WindowCount:   windowCount,
			WindowSizeSum: float64(windowCount) * (1 + g.rng.Float64()*1.5),
			Directions:    dirs,
			Bedrooms:      bedrooms,
			Bathrooms:     1 + float64(g.rng.Intn(4))*0.5, // 1 to 2.5 in half steps
			HasDishwasher: g.rng.Intn(2) == 0,
			HasWasher:     g.rng.Intn(2) == 0,
			HasDryer:      g.rng.Intn(3) == 0,
			Capacity:      bedrooms,
			AllowsSharing: bedrooms > 1 && g.rng.Intn(4) != 0,
		}
	}
	return out
}

func (g *Generator) score() *float64 {
	v := float64(g.rng.Intn(101))
	return &v
}

func (g *Generator) window(center, spread int) *profile.TimeRange {
	start := (center - spread/2 + g.rng.Intn(spread) + profile.MinutesPerDay) % profile.MinutesPerDay
	end := (start + 60 + g.rng.Intn(120)) % profile.MinutesPerDay
	return &profile.TimeRange{Start: start, End: end}
}
