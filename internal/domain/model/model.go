// Package model contains domain value types passed between layers.
package model

import "github.com/davral/homebid/internal/domain/profile"

// Applicant is a person seeking housing. Immutable for the duration of a
// matching run; the persistence adapter marks it assigned afterwards.
type Applicant struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	AllowsGroups bool            `json:"allowsGroups"`
	Profile      profile.Profile `json:"preferences"`
}

// Unit is one rentable apartment with fixed attribute values.
type Unit struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AreaSqm       float64  `json:"areaSqm"`
	WindowCount   int      `json:"windowCount"`
	WindowSizeSum float64  `json:"windowSizeSum"`
	Directions    []string `json:"windowDirections"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms"`
	HasDishwasher bool     `json:"hasDishwasher"`
	HasWasher     bool     `json:"hasWasher"`
	HasDryer      bool     `json:"hasDryer"`

	// Capacity is the bedroom count usable for occupants; Occupancy tracks
	// how many are already placed.
	Capacity      int  `json:"capacity"`
	Occupancy     int  `json:"occupancy"`
	AllowsSharing bool `json:"allowsSharing"`
}

// Remaining returns how many more occupants the unit can take.
func (u Unit) Remaining() int { return u.Capacity - u.Occupancy }

// MemberPayment is one group member's share of a round payment.
type MemberPayment struct {
	ApplicantID string  `json:"applicantId"`
	Name        string  `json:"name"`
	Payment     float64 `json:"payment"`
	AdjustedBid float64 `json:"adjustedBid"`
}

// Assignment is the terminal record of one successful auction round.
type Assignment struct {
	ID       string `json:"id,omitempty"`
	Round    int    `json:"round"`
	UnitID   string `json:"unitId"`
	UnitName string `json:"unitName"`
	Capacity int    `json:"capacity"`

	// Occupancy is the unit's occupancy after this round.
	Occupancy int `json:"occupancy"`

	WinningBid   float64         `json:"winningBid"`
	SecondBid    float64         `json:"secondBid"`
	PaymentTotal float64         `json:"paymentTotal"`
	Members      []MemberPayment `json:"members"`
}
