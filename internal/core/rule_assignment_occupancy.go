package core

import (
	"context"
	"fmt"
	"sort"

	"lodgecore/pkg/domain"
)

// NewAssignmentOccupancyRule returns the rule enforcing that each room
// assignment carries the occupant count its room type requires (one for a
// single, two for a settled double, one for a provisional double awaiting a
// merge) and that its occupant list matches the active allocation rows
// referencing it.
func NewAssignmentOccupancyRule() domain.Rule {
	return assignmentOccupancyRule{}
}

type assignmentOccupancyRule struct{}

func (assignmentOccupancyRule) Name() string { return "assignment_occupancy" }

func (assignmentOccupancyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	occupants := make(map[string][]string)
	for _, a := range view.ListAllocations() {
		if a.Status.Active() && a.AssignmentID != "" {
			occupants[a.AssignmentID] = append(occupants[a.AssignmentID], a.ParticipantID)
		}
	}

	res := domain.Result{}
	violate := func(assignment RoomAssignment, msg string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "assignment_occupancy",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityRoomAssignment,
			EntityID: assignment.ID,
		})
	}
	for _, assignment := range view.ListRoomAssignments() {
		want := 1
		if assignment.RoomType == RoomDouble && !assignment.Provisional {
			want = 2
		}
		active := occupants[assignment.ID]
		if len(active) != want {
			violate(assignment, fmt.Sprintf("%s assignment %s has %d active occupants, want %d",
				assignment.RoomType, assignment.ID, len(active), want))
			continue
		}
		if !sameMembers(active, assignment.OccupantIDs) {
			violate(assignment, fmt.Sprintf("assignment %s occupant list does not match its allocations", assignment.ID))
		}
	}
	return res, nil
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	ac := append([]string(nil), a...)
	bc := append([]string(nil), b...)
	sort.Strings(ac)
	sort.Strings(bc)
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}
