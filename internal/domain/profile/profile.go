// Package profile defines the typed preference profile an applicant submits.
//
// A profile is decoded once by an adapter (file or database) and validated
// before the engine ever sees it; every optional preference is a pointer so
// a missing attribute is distinguishable from a zero one.
package profile

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Minutes in a day; time-of-day windows live on a circle of this size.
const MinutesPerDay = 1440

// RangePref is an inclusive [Min, Max] attribute preference with the
// penalty deducted from the bid when the unit falls outside it.
type RangePref struct {
	Min   float64 `json:"min" validate:"ltefield=Max"`
	Max   float64 `json:"max"`
	Worth float64 `json:"worth" validate:"gte=0"`
}

// Contains reports whether v lies inside the inclusive range.
func (r RangePref) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// AmenityPref is a wanted/not-wanted amenity preference with its penalty.
type AmenityPref struct {
	Wanted bool    `json:"wanted"`
	Worth  float64 `json:"worth" validate:"gte=0"`
}

// DirectionPref holds the desired window directions with the penalty
// deducted when the configured matching rule is not satisfied.
type DirectionPref struct {
	Directions []string `json:"directions"`
	Worth      float64  `json:"worth" validate:"gte=0"`
}

// TimeRange is a minutes-of-day window. End may be smaller than Start,
// in which case the window wraps past midnight.
type TimeRange struct {
	Start int `json:"start" validate:"gte=0,lt=1440"`
	End   int `json:"end" validate:"gte=0,lt=1440"`
}

// Midpoint returns the circular midpoint of the window in minutes of day.
// For a wrapping window the midpoint lies inside the wrapped span.
func (t TimeRange) Midpoint() float64 {
	span := t.End - t.Start
	if span < 0 {
		span += MinutesPerDay
	}
	mid := float64(t.Start) + float64(span)/2
	if mid >= MinutesPerDay {
		mid -= MinutesPerDay
	}
	return mid
}

// Profile holds one applicant's attribute preferences, interpersonal
// parameters, and bid ceiling.
type Profile struct {
	// Unit attribute preferences, each optional.
	Area          *RangePref     `json:"area,omitempty"`
	WindowCount   *RangePref     `json:"windowCount,omitempty"`
	WindowSizeSum *RangePref     `json:"windowSizeSum,omitempty"`
	Bedrooms      *RangePref     `json:"bedrooms,omitempty"`
	Bathrooms     *RangePref     `json:"bathrooms,omitempty"`
	Directions    *DirectionPref `json:"windowDirections,omitempty"`
	Dishwasher    *AmenityPref   `json:"dishwasher,omitempty"`
	Washer        *AmenityPref   `json:"washer,omitempty"`
	Dryer         *AmenityPref   `json:"dryer,omitempty"`

	// Monetary ceiling for the applicant's bid.
	BidCeiling float64 `json:"bidCeiling" validate:"gte=0"`

	// MaxOtherRoommates is 0 for solo-only applicants.
	MaxOtherRoommates int `json:"maxRoommates" validate:"gte=0"`

	// Interpersonal importance scores, 0-100, each optional.
	Cleanliness    *float64 `json:"cleanliness,omitempty" validate:"omitempty,gte=0,lte=100"`
	Quietness      *float64 `json:"quietness,omitempty" validate:"omitempty,gte=0,lte=100"`
	GuestTolerance *float64 `json:"guests,omitempty" validate:"omitempty,gte=0,lte=100"`
	PersonalSpace  *float64 `json:"personalSpace,omitempty" validate:"omitempty,gte=0,lte=100"`

	// Daily rhythm windows, each optional, circular.
	SleepWindow *TimeRange `json:"sleepWindow,omitempty"`
	WakeWindow  *TimeRange `json:"wakeWindow,omitempty"`
}

var validate = validator.New() //nolint:gochecknoglobals // validator instance is safe for concurrent use

// Decode parses and validates a JSON-encoded profile.
func Decode(raw []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks range ordering, score bounds, and time windows.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
