package core

import "lodgecore/pkg/domain"

type (
	// Rule aliases domain.Rule evaluated within a transaction boundary.
	Rule = domain.Rule
	// RuleView aliases the read-only state exposed to rules.
	RuleView = domain.RuleView
	// RulesEngine aliases domain.RulesEngine.
	RulesEngine = domain.RulesEngine
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set
// guarding the allocation invariants.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewInventoryConservationRule())
	engine.Register(NewSingleActiveAllocationRule())
	engine.Register(NewPrivilegedSingleRoomRule())
	engine.Register(NewAssignmentOccupancyRule())
	return engine
}

// activeRoomUnits tallies the room units consumed per setup: one unit per
// active single allocation, one unit per double assignment with active
// occupants (its two allocation rows share the unit).
func activeRoomUnits(view RuleView) (singles, doubles map[string]int) {
	singles = make(map[string]int)
	doubles = make(map[string]int)
	doubleSeen := make(map[string]struct{})
	for _, a := range view.ListAllocations() {
		if !a.Status.Active() {
			continue
		}
		switch a.RoomType {
		case RoomSingle:
			singles[a.SetupID]++
		case RoomDouble:
			if _, ok := doubleSeen[a.AssignmentID]; ok {
				continue
			}
			doubleSeen[a.AssignmentID] = struct{}{}
			doubles[a.SetupID]++
		}
	}
	return singles, doubles
}
