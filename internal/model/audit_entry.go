package model

import "time"

// ActorType classifies who performed an audited action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorAdmin  ActorType = "admin"
	ActorSystem ActorType = "system"
	ActorAI     ActorType = "ai"
)

// AuditAction names a lineup state change.
type AuditAction string

const (
	AuditShowCreated                 AuditAction = "show_created"
	AuditFinalistDesignated          AuditAction = "finalist_designated"
	AuditConfirmationRequested       AuditAction = "confirmation_requested"
	AuditFinalistConfirmed           AuditAction = "finalist_confirmed"
	AuditFinalistCancelled           AuditAction = "finalist_cancelled"
	AuditAlternatePromoted           AuditAction = "alternate_promoted"
	AuditShowcaseActivated           AuditAction = "fallback_showcase_activated"
	AuditReplacementScenarioExecuted AuditAction = "replacement_scenario_executed"
	AuditLineupLocked                AuditAction = "lineup_locked"
	AuditFallbackModeChanged         AuditAction = "fallback_mode_changed"
	AuditPenaltyApplied              AuditAction = "penalty_applied"
)

// AuditEntry is one row of the append-only lineup journal.
type AuditEntry struct {
	ID              string         `json:"id"`
	LiveShowID      *string        `json:"liveShowId,omitempty"`
	ActionType      AuditAction    `json:"actionType"`
	PerformedBy     string         `json:"performedBy"`
	PerformedByType ActorType      `json:"performedByType"`
	TargetUserID    *string        `json:"targetUserId,omitempty"`
	Description     string         `json:"description"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}
