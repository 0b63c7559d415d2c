// Package compat computes pairwise interpersonal fit between applicants.
//
// The score is a 0-100 similarity: the mean of per-attribute similarities
// over the interpersonal importance scores both profiles carry, with the
// two daily-rhythm windows folded in as a single averaged factor. Missing
// attributes never contribute to the denominator; two applicants with
// nothing comparable score 0.
package compat

import (
	"math"

	"github.com/davral/homebid/internal/domain/profile"
)

// DefaultThreshold is the minimum acceptable pairwise score for two
// applicants to share a group.
const DefaultThreshold = 60.0

const (
	scaleMax = 100.0
	// A midpoint difference of six hours or more counts as zero similarity.
	timeFalloffMinutes = 360.0
)

// Scorer computes a pairwise similarity score; higher is more compatible.
type Scorer interface {
	Score(a, b profile.Profile) float64
}

// MeanScorer implements Scorer as the mean of per-attribute similarities.
type MeanScorer struct{}

// NewMeanScorer creates the stateless default scorer.
func NewMeanScorer() *MeanScorer {
	return &MeanScorer{}
}

// Score returns the 0-100 similarity between two profiles.
func (MeanScorer) Score(a, b profile.Profile) float64 {
	var sum float64
	var n int

	pairs := [...][2]*float64{
		{a.Cleanliness, b.Cleanliness},
		{a.Quietness, b.Quietness},
		{a.GuestTolerance, b.GuestTolerance},
		{a.PersonalSpace, b.PersonalSpace},
	}
	for _, pair := range pairs {
		if pair[0] == nil || pair[1] == nil {
			continue
		}
		sum += scaleMax - math.Abs(*pair[0]-*pair[1])
		n++
	}

	// Sleep and wake windows reduce to circular midpoints and fold into the
	// mean as one averaged factor.
	var timeSum float64
	var timeN int
	if a.SleepWindow != nil && b.SleepWindow != nil {
		timeSum += timeSimilarity(a.SleepWindow.Midpoint(), b.SleepWindow.Midpoint())
		timeN++
	}
	if a.WakeWindow != nil && b.WakeWindow != nil {
		timeSum += timeSimilarity(a.WakeWindow.Midpoint(), b.WakeWindow.Midpoint())
		timeN++
	}
	if timeN > 0 {
		sum += timeSum / float64(timeN)
		n++
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// timeSimilarity maps a circular minutes-of-day distance to 0-100.
func timeSimilarity(x, y float64) float64 {
	d := math.Abs(x - y)
	if wrapped := profile.MinutesPerDay - d; wrapped < d {
		d = wrapped
	}
	return math.Max(0, scaleMax-(d/timeFalloffMinutes)*scaleMax)
}
