package model

import (
	"fmt"
	"strings"
	"time"
)

// Slot is a ranked lineup position.  Ranks 1 and 2 are the finalist
// slots (F1, F2); ranks 3 and 4 the alternate slots (A1, A2).
type Slot int

const (
	SlotF1 Slot = 1
	SlotF2 Slot = 2
	SlotA1 Slot = 3
	SlotA2 Slot = 4
)

// Valid reports whether s is one of the four lineup ranks.
func (s Slot) Valid() bool { return s >= SlotF1 && s <= SlotA2 }

// IsFinalist reports whether s is a head-to-head slot.
func (s Slot) IsFinalist() bool { return s == SlotF1 || s == SlotF2 }

func (s Slot) String() string {
	switch s {
	case SlotF1:
		return "F1"
	case SlotF2:
		return "F2"
	case SlotA1:
		return "A1"
	case SlotA2:
		return "A2"
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// ParseSlot accepts either a label (F1, a2) or a numeric rank (1..4).
func ParseSlot(raw string) (Slot, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "F1", "1":
		return SlotF1, true
	case "F2", "2":
		return SlotF2, true
	case "A1", "3":
		return SlotA1, true
	case "A2", "4":
		return SlotA2, true
	}
	return 0, false
}

// Role tells whether a lineup member competes or stands by.
type Role string

const (
	RoleFinalist  Role = "finalist"
	RoleAlternate Role = "alternate"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleFinalist || r == RoleAlternate }

// FinalistStatus is the lifecycle state of a lineup member.
type FinalistStatus string

const (
	StatusSelected  FinalistStatus = "selected"
	StatusConfirmed FinalistStatus = "confirmed"
	StatusCancelled FinalistStatus = "cancelled"
	StatusPromoted  FinalistStatus = "promoted"
	StatusStandby   FinalistStatus = "standby"
)

// Finalist is one occupant of a lineup slot.  Rows are never deleted:
// cancelled and promoted are terminal markers.  Rank is nil once a
// cancelled finalist's slot has been handed to a promoted alternate.
type Finalist struct {
	ID                      string         `json:"id"`                                // live_show_finalists.id
	LiveShowID              string         `json:"liveShowId"`                        // live_show_finalists.live_show_id
	UserID                  string         `json:"userId"`                            // live_show_finalists.user_id
	ArtistName              string         `json:"artistName"`                        // live_show_finalists.artist_name
	Rank                    *Slot          `json:"rank,omitempty"`                    // live_show_finalists.rank (nullable)
	Role                    Role           `json:"role"`                              // live_show_finalists.role
	Status                  FinalistStatus `json:"status"`                            // live_show_finalists.status
	AvailabilityConfirmed   bool           `json:"availabilityConfirmed"`             // live_show_finalists.availability_confirmed
	ConfirmationRequestedAt *time.Time     `json:"confirmationRequestedAt,omitempty"` // live_show_finalists.confirmation_requested_at
	ConfirmedAt             *time.Time     `json:"confirmedAt,omitempty"`             // live_show_finalists.confirmed_at
	CancelledAt             *time.Time     `json:"cancelledAt,omitempty"`             // live_show_finalists.cancelled_at
	CancellationReason      *string        `json:"cancellationReason,omitempty"`      // live_show_finalists.cancellation_reason
	PromotedAt              *time.Time     `json:"promotedAt,omitempty"`              // live_show_finalists.promoted_at
	PromotedFrom            *string        `json:"promotedFrom,omitempty"`            // live_show_finalists.promoted_from (slot label)
	CreatedAt               time.Time      `json:"createdAt"`                         // live_show_finalists.created_at
	UpdatedAt               time.Time      `json:"updatedAt"`                         // live_show_finalists.updated_at
}

// HoldsSlot reports whether f currently occupies s.
func (f *Finalist) HoldsSlot(s Slot) bool {
	return f != nil && f.Rank != nil && *f.Rank == s
}
