package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// SwimType categorizes a drop-in swim session.
type SwimType string

const (
	LaneSwim     SwimType = "LANE_SWIM"
	Aquafit      SwimType = "AQUAFIT"
	Recreational SwimType = "RECREATIONAL"
	AdultSwim    SwimType = "ADULT_SWIM"
	SeniorSwim   SwimType = "SENIOR_SWIM"
	OtherSwim    SwimType = "OTHER"
)

// PersistableSwimTypes enumerates the types accepted by validation.
// OTHER is reported as a quality issue rather than persisted blindly.
var PersistableSwimTypes = []SwimType{LaneSwim, Aquafit, Recreational, AdultSwim, SeniorSwim}

// TimeOfDay is a wall-clock time without a date. The zero value is
// treated as "not set" by validation; no upstream source publishes
// midnight sessions.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// After reports whether t is later than other.
func (t TimeOfDay) After(other TimeOfDay) bool {
	return t.Minutes() > other.Minutes()
}

// IsZero reports whether the value is unset.
func (t TimeOfDay) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0
}

// String renders 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// CanonicalSession is one bookable time slot at one facility. Once the
// content hash is computed the session is treated as immutable.
type CanonicalSession struct {
	FacilityID  string
	FacilityRef string // raw upstream location name, kept for resolution and reporting
	Title       string
	SwimType    SwimType
	Date        time.Time
	Start       TimeOfDay
	End         TimeOfDay
	Notes       string
	Source      string
	MatchScore  float64
	ContentHash string
}

// FacilityKey groups sessions by resolved facility, falling back to the
// raw location reference for unresolved records.
func (s CanonicalSession) FacilityKey() string {
	if s.FacilityID != "" {
		return s.FacilityID
	}
	return s.FacilityRef
}

// DurationMinutes is the session length in minutes.
func (s CanonicalSession) DurationMinutes() int {
	return s.End.Minutes() - s.Start.Minutes()
}

// ComputeHash derives the deduplication fingerprint. Only facility, date,
// start time, and swim type participate; notes and source never do.
func (s CanonicalSession) ComputeHash() string {
	content := fmt.Sprintf("%s:%s:%s:%s",
		s.FacilityID,
		s.Date.Format("2006-01-02"),
		s.Start.String(),
		s.SwimType)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Facility is a read-only entry from the curated facility directory.
type Facility struct {
	FacilityID string
	Name       string
	Address    string
	PostalCode string
}

// MatchResult reports a resolved facility and heuristic confidence.
type MatchResult struct {
	FacilityID string
	Confidence float64
}
