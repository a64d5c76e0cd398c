package model

import "time"

// FallbackMode describes how a show is broadcast when the regular
// head-to-head battle cannot take place.
type FallbackMode string

const (
	FallbackBattle    FallbackMode = "battle"    // two finalists compete (default)
	FallbackShowcase  FallbackMode = "showcase"  // a single performer, no battle
	FallbackReport    FallbackMode = "report"    // editorial replay, no live performers
	FallbackCancelled FallbackMode = "cancelled" // the edition does not air
)

// Valid reports whether m is one of the known fallback modes.
func (m FallbackMode) Valid() bool {
	switch m {
	case FallbackBattle, FallbackShowcase, FallbackReport, FallbackCancelled:
		return true
	}
	return false
}

// LiveShow is the weekly broadcast whose lineup is managed by this
// service.  One show is created per week; it is never deleted, only
// superseded by the following week's show.
//
// Fields:
//
//	ID               – primary key (uuid).
//	WeekNumber       – week of the year the show airs.
//	ScheduledStart   – broadcast start; the confirmation deadline derives from it.
//	LineupLocked     – once true the roster can no longer change.
//	FallbackMode     – battle unless a replacement scenario or an admin changed it.
//	PenaltiesEnabled – when true, missed confirmation deadlines produce penalties.
type LiveShow struct {
	ID               string       `json:"id"`                       // live_shows.id
	WeekNumber       int          `json:"weekNumber"`               // live_shows.week_number
	Title            string       `json:"title"`                    // live_shows.title
	Description      *string      `json:"description,omitempty"`    // live_shows.description
	ScheduledStart   time.Time    `json:"scheduledStart"`           // live_shows.scheduled_start
	ScheduledEnd     time.Time    `json:"scheduledEnd"`             // live_shows.scheduled_end
	LineupLocked     bool         `json:"lineupLocked"`             // live_shows.lineup_locked
	LineupLockedAt   *time.Time   `json:"lineupLockedAt,omitempty"` // live_shows.lineup_locked_at
	FallbackMode     FallbackMode `json:"fallbackMode"`             // live_shows.fallback_mode
	FallbackReason   *string      `json:"fallbackReason,omitempty"` // live_shows.fallback_reason
	PenaltiesEnabled bool         `json:"penaltiesEnabled"`         // live_shows.penalties_enabled
	CreatedAt        time.Time    `json:"createdAt"`                // live_shows.created_at
	UpdatedAt        time.Time    `json:"updatedAt"`                // live_shows.updated_at
}
