package model

import "time"

// PenaltyType is the behaviour a penalty sanctions.
type PenaltyType string

const (
	PenaltyLateCancellation PenaltyType = "late_cancellation"
	PenaltyNoShow           PenaltyType = "no_show"
)

// Valid reports whether t is a known penalty type.
func (t PenaltyType) Valid() bool { return t == PenaltyLateCancellation || t == PenaltyNoShow }

// PenaltySeverity is the consequence tier chosen by the caller.
type PenaltySeverity string

const (
	SeverityWarning      PenaltySeverity = "warning"
	SeverityTemporaryBan PenaltySeverity = "temporary_ban"
	SeverityPermanentBan PenaltySeverity = "permanent_ban"
)

// Valid reports whether s is a known severity.
func (s PenaltySeverity) Valid() bool {
	switch s {
	case SeverityWarning, SeverityTemporaryBan, SeverityPermanentBan:
		return true
	}
	return false
}

// Penalty records a sanction against a performer.  Penalties are never
// updated; a newer penalty supersedes an older one.
type Penalty struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	LiveShowID       *string         `json:"liveShowId,omitempty"`
	PenaltyType      PenaltyType     `json:"penaltyType"`
	Severity         PenaltySeverity `json:"severity"`
	Description      string          `json:"description"`
	EditionsAffected *int            `json:"editionsAffected,omitempty"`
	ExpiresAt        *time.Time      `json:"expiresAt,omitempty"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ActiveAt reports whether the penalty is in force at t.  Expiry is
// derived from ExpiresAt at read time; a nil ExpiresAt never expires.
func (p Penalty) ActiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	return p.ExpiresAt == nil || p.ExpiresAt.After(t)
}
