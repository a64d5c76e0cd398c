package lineup

import (
	"encoding/json"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// Scenario is a replacement strategy.
type Scenario string

const (
	// ScenarioS1 promotes A1 into the vacated finalist slot.
	ScenarioS1 Scenario = "S1"
	// ScenarioS2 promotes A2 into the vacated finalist slot (A1 absent).
	ScenarioS2 Scenario = "S2"
	// ScenarioS3 switches to showcase mode around the only alternate left.
	ScenarioS3 Scenario = "S3"
	// ScenarioS4 promotes A1 to F1 and A2 to F2.
	ScenarioS4 Scenario = "S4"
)

// Resolution is a scenario plus, for S1 and S2, the slot to refill.
type Resolution struct {
	Scenario   Scenario
	TargetSlot *model.Slot
}

// MarshalJSON renders the target slot by label.
func (r Resolution) MarshalJSON() ([]byte, error) {
	out := struct {
		Scenario   Scenario `json:"scenario"`
		TargetSlot string   `json:"targetSlot,omitempty"`
	}{Scenario: r.Scenario}
	if r.TargetSlot != nil {
		out.TargetSlot = r.TargetSlot.String()
	}
	return json.Marshal(out)
}

func (r Resolution) String() string {
	if r.TargetSlot == nil {
		return string(r.Scenario)
	}
	return string(r.Scenario) + "->" + r.TargetSlot.String()
}

// available reports whether an alternate can still be promoted: the
// slot is occupied by someone who has not withdrawn.
func available(f *model.Finalist) bool {
	return f != nil && f.Status != model.StatusCancelled
}

func cancelled(f *model.Finalist) bool {
	return f != nil && f.Status == model.StatusCancelled
}

// DetermineReplacementScenario picks the scenario for l, or nil when no
// replacement is needed or possible.  It has no side effects; the first
// matching rule wins.
func DetermineReplacementScenario(l Lineup) *Resolution {
	hasA1, hasA2 := available(l.A1), available(l.A2)
	target := func(s model.Slot) *model.Slot { return &s }

	switch {
	case cancelled(l.F1) && cancelled(l.F2):
		switch {
		case hasA1 && hasA2:
			return &Resolution{Scenario: ScenarioS4}
		case hasA1 || hasA2:
			return &Resolution{Scenario: ScenarioS3}
		}
		return nil
	case cancelled(l.F1):
		if hasA1 {
			return &Resolution{Scenario: ScenarioS1, TargetSlot: target(model.SlotF1)}
		}
		if hasA2 {
			return &Resolution{Scenario: ScenarioS2, TargetSlot: target(model.SlotF1)}
		}
	case cancelled(l.F2):
		if hasA1 {
			return &Resolution{Scenario: ScenarioS1, TargetSlot: target(model.SlotF2)}
		}
		if hasA2 {
			return &Resolution{Scenario: ScenarioS2, TargetSlot: target(model.SlotF2)}
		}
	}
	return nil
}
