package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewSingleActiveAllocationRule returns the rule enforcing that a participant
// holds at most one active allocation per event.
func NewSingleActiveAllocationRule() domain.Rule {
	return singleActiveAllocationRule{}
}

type singleActiveAllocationRule struct{}

func (singleActiveAllocationRule) Name() string { return "single_active_allocation" }

func (singleActiveAllocationRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	type key struct{ event, participant string }
	active := make(map[key]int)
	for _, a := range view.ListAllocations() {
		if a.Status.Active() {
			active[key{a.EventID, a.ParticipantID}]++
		}
	}

	res := domain.Result{}
	for k, count := range active {
		if count <= 1 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "single_active_allocation",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("participant %s holds %d active allocations for event %s", k.participant, count, k.event),
			Entity:   domain.EntityParticipant,
			EntityID: k.participant,
		})
	}
	return res, nil
}
