package core_test

import (
	"testing"
	"time"

	"lodgecore/internal/core"
	"lodgecore/pkg/domain"
)

func planParticipant(id, role, gender string, created time.Time) domain.Participant {
	p := domain.Participant{Role: role}
	p.ID = id
	p.CreatedAt = created
	if gender != "" {
		g := gender
		p.Gender = &g
	}
	return p
}

func TestSortParticipantsStableOrder(t *testing.T) {
	base := mustTime("2026-01-01T00:00:00Z")
	participants := []domain.Participant{
		planParticipant("c", "visitor", "male", base.Add(time.Hour)),
		planParticipant("b", "visitor", "male", base),
		planParticipant("a", "visitor", "male", base),
	}
	core.SortParticipants(participants)
	got := []string{participants[0].ID, participants[1].ID, participants[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestPlanEventBookingPairsByGender(t *testing.T) {
	base := mustTime("2026-01-01T00:00:00Z")
	participants := []domain.Participant{
		planParticipant("m1", "visitor", "male", base),
		planParticipant("m2", "visitor", "male", base.Add(time.Minute)),
		planParticipant("m3", "visitor", "male", base.Add(2*time.Minute)),
		planParticipant("f1", "visitor", "female", base.Add(3*time.Minute)),
		planParticipant("f2", "visitor", "female", base.Add(4*time.Minute)),
		planParticipant("x1", "visitor", "nonbinary", base.Add(5*time.Minute)),
		planParticipant("p1", "facilitator", "male", base.Add(6*time.Minute)),
	}

	plan := core.PlanEventBooking(participants)
	if len(plan) != 5 {
		t.Fatalf("plan length = %d, want 5: %+v", len(plan), plan)
	}

	// Privileged and unpooled participants come first as final singles.
	if plan[0].Kind != core.BookSingle || plan[0].ParticipantIDs[0] != "p1" || plan[0].Provisional {
		t.Fatalf("expected final single for privileged first, got %+v", plan[0])
	}
	if plan[1].Kind != core.BookSingle || plan[1].ParticipantIDs[0] != "x1" || plan[1].Provisional {
		t.Fatalf("expected final single for unpooled gender, got %+v", plan[1])
	}

	// Males pair positionally; the odd one out waits in a provisional single.
	if plan[2].Kind != core.BookDoublePair || plan[2].ParticipantIDs[0] != "m1" || plan[2].ParticipantIDs[1] != "m2" {
		t.Fatalf("expected m1+m2 pair, got %+v", plan[2])
	}
	if plan[3].Kind != core.BookSingle || plan[3].ParticipantIDs[0] != "m3" || !plan[3].Provisional {
		t.Fatalf("expected provisional single for m3, got %+v", plan[3])
	}
	if plan[4].Kind != core.BookDoublePair || plan[4].ParticipantIDs[0] != "f1" || plan[4].ParticipantIDs[1] != "f2" {
		t.Fatalf("expected f1+f2 pair, got %+v", plan[4])
	}
}

func TestPlanEventBookingNeverMixesGenders(t *testing.T) {
	base := mustTime("2026-01-01T00:00:00Z")
	participants := []domain.Participant{
		planParticipant("m1", "visitor", "male", base),
		planParticipant("f1", "visitor", "female", base.Add(time.Minute)),
	}
	plan := core.PlanEventBooking(participants)
	for _, action := range plan {
		if action.Kind == core.BookDoublePair {
			t.Fatalf("one male and one female must not pair: %+v", action)
		}
		if !action.Provisional {
			t.Fatalf("lone pool members stay provisional: %+v", action)
		}
	}
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
}

func TestPlanEventBookingIsDeterministic(t *testing.T) {
	base := mustTime("2026-01-01T00:00:00Z")
	participants := []domain.Participant{
		planParticipant("m2", "visitor", "male", base),
		planParticipant("m1", "visitor", "male", base),
		planParticipant("m3", "visitor", "male", base.Add(time.Minute)),
	}
	core.SortParticipants(participants)
	first := core.PlanEventBooking(participants)
	second := core.PlanEventBooking(participants)
	if len(first) != len(second) {
		t.Fatalf("plan lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind != second[i].Kind {
			t.Fatalf("plan kind diverged at %d", i)
		}
		for j := range first[i].ParticipantIDs {
			if first[i].ParticipantIDs[j] != second[i].ParticipantIDs[j] {
				t.Fatalf("plan participants diverged at %d", i)
			}
		}
	}
	// Same CreatedAt falls back to ID order.
	if first[0].ParticipantIDs[0] != "m1" || first[0].ParticipantIDs[1] != "m2" {
		t.Fatalf("tie-break by ID violated: %+v", first[0])
	}
}
