package core

import (
	"context"
	"fmt"

	"lodgecore/pkg/domain"
)

// NewPrivilegedSingleRoomRule returns the rule enforcing that facilitators and
// organizers only ever occupy single rooms.
func NewPrivilegedSingleRoomRule() domain.Rule {
	return privilegedSingleRoomRule{}
}

type privilegedSingleRoomRule struct{}

func (privilegedSingleRoomRule) Name() string { return "privileged_single_room" }

func (privilegedSingleRoomRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, a := range view.ListAllocations() {
		if !a.Status.Active() || a.RoomType != RoomDouble {
			continue
		}
		participant, ok := view.FindParticipant(a.ParticipantID)
		if !ok {
			continue
		}
		if Classify(participant).Category != CategoryPrivileged {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "privileged_single_room",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("privileged participant %s (%s) booked into a double room", participant.FullName, participant.ID),
			Entity:   domain.EntityAllocation,
			EntityID: a.ID,
		})
	}
	return res, nil
}
