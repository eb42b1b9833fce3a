package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewInventoryConservationRule returns the in-transaction rule enforcing that
// for every vendor setup, available + active room units equals the contracted
// capacity per room type, and that no counter is negative.
func NewInventoryConservationRule() domain.Rule {
	return inventoryConservationRule{}
}

type inventoryConservationRule struct{}

func (inventoryConservationRule) Name() string { return "inventory_conservation" }

func (inventoryConservationRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	singles, doubles := activeRoomUnits(view)

	res := domain.Result{}
	violate := func(setup AccommodationSetup, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "inventory_conservation",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityAccommodationSetup,
			EntityID: setup.ID,
		})
	}
	for _, setup := range view.ListAccommodationSetups() {
		if setup.SingleAvailable < 0 || setup.DoubleAvailable < 0 {
			violate(setup, fmt.Sprintf("setup %s has negative availability: single=%d double=%d",
				setup.ID, setup.SingleAvailable, setup.DoubleAvailable))
			continue
		}
		if got := setup.SingleAvailable + singles[setup.ID]; got != setup.SingleContracted {
			violate(setup, fmt.Sprintf("single rooms out of balance on setup %s: available %d + active %d != contracted %d",
				setup.ID, setup.SingleAvailable, singles[setup.ID], setup.SingleContracted))
		}
		if got := setup.DoubleAvailable + doubles[setup.ID]; got != setup.DoubleContracted {
			violate(setup, fmt.Sprintf("double rooms out of balance on setup %s: available %d + active %d != contracted %d",
				setup.ID, setup.DoubleAvailable, doubles[setup.ID], setup.DoubleContracted))
		}
	}
	return res, nil
}
