package core_test

import (
	"context"
	"errors"
	"testing"

	"lodgecore/internal/core"
	"lodgecore/pkg/domain"
)

func TestBookParticipantPrivilegedGetsFinalSingle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 2, 2)
	facilitator := addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "facilitator", gender: "female"})

	outcome, res, err := svc.BookParticipant(ctx, event.ID, facilitator.ID)
	if err != nil {
		t.Fatalf("book participant: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("unexpected violations: %+v", res.Violations)
	}
	if outcome.Status != core.BookingBooked || outcome.RoomType != domain.RoomSingle || outcome.Provisional {
		t.Fatalf("expected final single booking, got %+v", outcome)
	}

	alloc := activeAllocation(t, svc, event.ID, facilitator.ID)
	if alloc.RoomType != domain.RoomSingle || alloc.NumberOfGuests != 1 {
		t.Fatalf("unexpected allocation: %+v", alloc)
	}
	if alloc.RatePerDay != 80 || alloc.Currency != "EUR" || alloc.BoardType != domain.BoardFull {
		t.Fatalf("rate not copied from vendor contract: %+v", alloc)
	}
	if !alloc.CheckIn.Equal(event.StartDate) || !alloc.CheckOut.Equal(event.EndDate) {
		t.Fatalf("allocation dates do not follow the event: %+v", alloc)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestBookParticipantIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 2, 0)
	p := addParticipant(t, svc, event.ID, participantSpec{name: "Ana", role: "visitor", gender: "female"})

	first, _, err := svc.BookParticipant(ctx, event.ID, p.ID)
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second, _, err := svc.BookParticipant(ctx, event.ID, p.ID)
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if second.Status != core.BookingAlreadyAllocated {
		t.Fatalf("expected already_allocated, got %+v", second)
	}
	if second.AllocationID != first.AllocationID {
		t.Fatalf("idempotent booking surfaced a different allocation: %s vs %s", second.AllocationID, first.AllocationID)
	}
}

func TestBookParticipantSkipsIneligible(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 4, 0)

	pending := addParticipant(t, svc, event.ID, participantSpec{
		name: "Paul", role: "visitor", gender: "male", status: domain.ParticipantPending,
	})
	commuter := addParticipant(t, svc, event.ID, participantSpec{
		name: "Dora", role: "visitor", gender: "female", preference: domain.TravellingDaily,
	})

	for _, p := range []domain.Participant{pending, commuter} {
		outcome, _, err := svc.BookParticipant(ctx, event.ID, p.ID)
		if err != nil {
			t.Fatalf("book %s: %v", p.FullName, err)
		}
		if outcome.Status != core.BookingSkipped || outcome.Reason == "" {
			t.Fatalf("expected skip with reason for %s, got %+v", p.FullName, outcome)
		}
		if hasActiveAllocation(svc, event.ID, p.ID) {
			t.Fatalf("ineligible participant %s received an allocation", p.FullName)
		}
	}
}

func TestBookParticipantUnknownEventFails(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.BookParticipant(context.Background(), "missing", "nobody")
	var notFound core.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSecondPoolableBookingMergesIntoDouble(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 2, 1)

	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})

	first, _, err := svc.BookParticipant(ctx, event.ID, m1.ID)
	if err != nil {
		t.Fatalf("book first: %v", err)
	}
	if first.RoomType != domain.RoomSingle || !first.Provisional {
		t.Fatalf("first poolable booking should be a provisional single, got %+v", first)
	}

	if _, _, err := svc.BookParticipant(ctx, event.ID, m2.ID); err != nil {
		t.Fatalf("book second: %v", err)
	}

	// Compaction merged the two provisional singles into one shared double.
	assignments := svc.ListEventRoomAssignments(event.ID)
	if len(assignments) != 1 {
		t.Fatalf("expected one surviving assignment, got %d: %+v", len(assignments), assignments)
	}
	double := assignments[0]
	if double.RoomType != domain.RoomDouble || double.Provisional || len(double.OccupantIDs) != 2 {
		t.Fatalf("expected settled double for the pair, got %+v", double)
	}
	for _, p := range []domain.Participant{m1, m2} {
		alloc := activeAllocation(t, svc, event.ID, p.ID)
		if alloc.RoomType != domain.RoomDouble || alloc.NumberOfGuests != 2 || alloc.AssignmentID != double.ID {
			t.Fatalf("allocation for %s not repointed to the double: %+v", p.FullName, alloc)
		}
	}

	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.SingleAvailable != 2 || got.DoubleAvailable != 0 {
		t.Fatalf("merge should free both singles and hold one double: %+v", got)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestCompactionReusesProvisionalDouble(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 1, 1)

	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})

	if _, _, err := svc.BookParticipant(ctx, event.ID, m1.ID); err != nil {
		t.Fatalf("book first: %v", err)
	}
	// The single is taken, so the second poolable guest lands alone in the
	// double, and compaction moves the first guest in with them.
	second, _, err := svc.BookParticipant(ctx, event.ID, m2.ID)
	if err != nil {
		t.Fatalf("book second: %v", err)
	}
	if second.RoomType != domain.RoomDouble || !second.Provisional {
		t.Fatalf("expected provisional double fallback, got %+v", second)
	}

	assignments := svc.ListEventRoomAssignments(event.ID)
	if len(assignments) != 1 || assignments[0].RoomType != domain.RoomDouble || assignments[0].Provisional {
		t.Fatalf("expected the double to be reused and settled, got %+v", assignments)
	}
	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.SingleAvailable != 1 || got.DoubleAvailable != 0 {
		t.Fatalf("vacated single not returned: %+v", got)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestPrivilegedBookingFailsWithoutSingles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 0, 2)
	facilitator := addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "organizer", gender: "female"})

	outcome, _, err := svc.BookParticipant(ctx, event.ID, facilitator.ID)
	if err != nil {
		t.Fatalf("book participant: %v", err)
	}
	if outcome.Status != core.BookingFailed || outcome.Reason == "" {
		t.Fatalf("privileged guests never fall back to doubles, got %+v", outcome)
	}
	if hasActiveAllocation(svc, event.ID, facilitator.ID) {
		t.Fatalf("failed booking must not leave an allocation")
	}
}

func TestBookAllConfirmedSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 4, 2)

	addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Ana", role: "visitor", gender: "female"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "facilitator", gender: "female"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Kim", role: "visitor", gender: "nonbinary"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Paul", role: "visitor", gender: "male", status: domain.ParticipantPending})
	addParticipant(t, svc, event.ID, participantSpec{name: "Dora", role: "visitor", gender: "female", preference: domain.TravellingDaily})

	summary, res, err := svc.BookAllConfirmed(ctx, event.ID)
	if err != nil {
		t.Fatalf("book all: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("unexpected violations: %+v", res.Violations)
	}
	if summary.Booked != 5 || summary.Skipped != 2 || summary.Failed != 0 {
		t.Fatalf("summary = booked %d skipped %d failed %d, want 5/2/0", summary.Booked, summary.Skipped, summary.Failed)
	}
	if len(summary.Outcomes) != 7 {
		t.Fatalf("expected one outcome per participant, got %d", len(summary.Outcomes))
	}

	// One double for the male pair, three singles for the facilitator, the
	// unpooled guest, and the odd female out.
	var singles, doubles int
	for _, a := range svc.ListEventRoomAssignments(event.ID) {
		switch a.RoomType {
		case domain.RoomSingle:
			singles++
		case domain.RoomDouble:
			doubles++
		}
	}
	if singles != 3 || doubles != 1 {
		t.Fatalf("room mix = %d singles %d doubles, want 3/1", singles, doubles)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestBookAllConfirmedReportsCapacityFailures(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 1, 0)

	addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Ben", role: "visitor", gender: "male"})

	summary, _, err := svc.BookAllConfirmed(ctx, event.ID)
	if err != nil {
		t.Fatalf("capacity shortage must not abort the batch: %v", err)
	}
	if summary.Booked != 1 || summary.Failed != 2 {
		t.Fatalf("summary = booked %d failed %d, want 1 booked and 2 failed", summary.Booked, summary.Failed)
	}
	for _, o := range summary.Outcomes {
		if o.Status == core.BookingFailed && o.Reason == "" {
			t.Fatalf("failed outcome without reason: %+v", o)
		}
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestReleaseDemotesPartnerToProvisionalSingle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 2, 1)
	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}

	if _, err := svc.ReleaseParticipant(ctx, event.ID, m1.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	released, _ := svc.GetAllocation(activeOrLastAllocationID(svc, event.ID, m1.ID))
	if released.Status != domain.AllocationReleased {
		t.Fatalf("released allocation status = %s", released.Status)
	}
	partner := activeAllocation(t, svc, event.ID, m2.ID)
	if partner.RoomType != domain.RoomSingle || partner.NumberOfGuests != 1 {
		t.Fatalf("partner not demoted to a single: %+v", partner)
	}
	assignment, ok := svc.Store().GetRoomAssignment(partner.AssignmentID)
	if !ok || !assignment.Provisional || assignment.RoomType != domain.RoomSingle {
		t.Fatalf("partner room should be a provisional single: %+v", assignment)
	}

	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.SingleAvailable != 1 || got.DoubleAvailable != 1 {
		t.Fatalf("counters after demotion: %+v", got)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestReleaseKeepsPartnerInDoubleWhenSinglesExhausted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 0, 1)
	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}

	if _, err := svc.ReleaseParticipant(ctx, event.ID, m1.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	partner := activeAllocation(t, svc, event.ID, m2.ID)
	if partner.RoomType != domain.RoomDouble || partner.NumberOfGuests != 1 {
		t.Fatalf("partner should keep the double alone: %+v", partner)
	}
	assignment, ok := svc.Store().GetRoomAssignment(partner.AssignmentID)
	if !ok || !assignment.Provisional || len(assignment.OccupantIDs) != 1 {
		t.Fatalf("double should turn provisional with one occupant: %+v", assignment)
	}
	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.DoubleAvailable != 0 {
		t.Fatalf("double unit stays held by the partner: %+v", got)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestCompactionFallsForwardToLaterDoubleHolder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 2, 1)
	s1 := addParticipant(t, svc, event.ID, participantSpec{name: "Sam", role: "visitor", gender: "male", status: domain.ParticipantPending})
	s2 := addParticipant(t, svc, event.ID, participantSpec{name: "Tim", role: "visitor", gender: "male", status: domain.ParticipantPending})
	d1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	d2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})

	// The two confirmed visitors take the only double.
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}
	// The late confirmations drain the singles; with no double left they
	// stay provisional singles.
	for _, p := range []domain.Participant{s1, s2} {
		if _, _, err := svc.SetParticipantStatus(ctx, event.ID, p.ID, domain.ParticipantConfirmed); err != nil {
			t.Fatalf("confirm %s: %v", p.FullName, err)
		}
	}
	// Releasing one double occupant leaves the partner alone in the double
	// (singles are gone). Compaction cannot pair the two single holders
	// without a fresh double, but the earliest of them still moves in with
	// the lone double holder.
	if _, err := svc.ReleaseParticipant(ctx, event.ID, d2.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	moved := activeAllocation(t, svc, event.ID, s1.ID)
	holder := activeAllocation(t, svc, event.ID, d1.ID)
	if moved.AssignmentID != holder.AssignmentID {
		t.Fatalf("expected a shared double, got %s vs %s", moved.AssignmentID, holder.AssignmentID)
	}
	if moved.RoomType != domain.RoomDouble || moved.NumberOfGuests != 2 || holder.NumberOfGuests != 2 {
		t.Fatalf("merged allocations: %+v / %+v", moved, holder)
	}
	assignment, ok := svc.Store().GetRoomAssignment(holder.AssignmentID)
	if !ok || assignment.Provisional || len(assignment.OccupantIDs) != 2 {
		t.Fatalf("double should settle with two occupants: %+v", assignment)
	}
	waiting := activeAllocation(t, svc, event.ID, s2.ID)
	if waiting.RoomType != domain.RoomSingle {
		t.Fatalf("second single holder should stay in a single: %+v", waiting)
	}
	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.SingleAvailable != 1 || got.DoubleAvailable != 0 {
		t.Fatalf("counters after merge: %+v", got)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestReleaseWithoutAllocationIsNoop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 1, 0)
	p := addParticipant(t, svc, event.ID, participantSpec{name: "Ana", role: "visitor", gender: "female"})

	if _, err := svc.ReleaseParticipant(ctx, event.ID, p.ID); err != nil {
		t.Fatalf("releasing an unallocated participant should be a no-op: %v", err)
	}
}

func TestSetParticipantStatusDrivesAllocations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 2, 1)
	p := addParticipant(t, svc, event.ID, participantSpec{
		name: "Ana", role: "visitor", gender: "female", status: domain.ParticipantPending,
	})

	outcome, _, err := svc.SetParticipantStatus(ctx, event.ID, p.ID, domain.ParticipantConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if outcome.Status != core.BookingBooked {
		t.Fatalf("confirming should book lodging, got %+v", outcome)
	}
	if !hasActiveAllocation(svc, event.ID, p.ID) {
		t.Fatalf("no allocation after confirmation")
	}

	outcome, _, err = svc.SetParticipantStatus(ctx, event.ID, p.ID, domain.ParticipantDeclined)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if outcome.Status != core.BookingSkipped {
		t.Fatalf("declining should release, got %+v", outcome)
	}
	if hasActiveAllocation(svc, event.ID, p.ID) {
		t.Fatalf("allocation still active after decline")
	}
	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.SingleAvailable != 2 || got.DoubleAvailable != 1 {
		t.Fatalf("counters not restored after decline: %+v", got)
	}
}

func TestSetParticipantRolePromotionRefreshesPairing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 2, 1)
	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}

	// Promoting half of a double pair invalidates the pairing; the whole
	// event re-books so the new facilitator lands in a single.
	if _, _, err := svc.SetParticipantRole(ctx, event.ID, m1.ID, "facilitator", ""); err != nil {
		t.Fatalf("promote: %v", err)
	}

	promoted := activeAllocation(t, svc, event.ID, m1.ID)
	if promoted.RoomType != domain.RoomSingle {
		t.Fatalf("promoted facilitator must hold a single, got %+v", promoted)
	}
	former := activeAllocation(t, svc, event.ID, m2.ID)
	if former.RoomType != domain.RoomSingle {
		t.Fatalf("former partner waits in a single, got %+v", former)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestSetParticipantRoleWithoutCategoryChangeLeavesRooms(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 2, 1)
	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}
	before := activeAllocation(t, svc, event.ID, m1.ID)

	if _, _, err := svc.SetParticipantRole(ctx, event.ID, m1.ID, "speaker", ""); err != nil {
		t.Fatalf("role change: %v", err)
	}

	after := activeAllocation(t, svc, event.ID, m1.ID)
	if after.ID != before.ID || after.AssignmentID != before.AssignmentID {
		t.Fatalf("same-category role change must not move rooms: %+v vs %+v", before, after)
	}
	_ = m2
}

func TestRefreshEventIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 3, 2)
	addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Ana", role: "visitor", gender: "female"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "facilitator", gender: "female"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}
	countRooms := func() (singles, doubles int) {
		for _, a := range svc.ListEventRoomAssignments(event.ID) {
			if a.RoomType == domain.RoomSingle {
				singles++
			} else {
				doubles++
			}
		}
		return singles, doubles
	}
	s1, d1 := countRooms()

	summary, _, err := svc.RefreshEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if summary.Cleared != 4 || summary.Summary.Booked != 4 || summary.Summary.Failed != 0 {
		t.Fatalf("refresh summary: %+v", summary)
	}
	s2, d2 := countRooms()
	if s1 != s2 || d1 != d2 {
		t.Fatalf("room mix changed across refresh: %d/%d vs %d/%d", s1, d1, s2, d2)
	}
	assertConserved(t, svc, event.ID, setup.ID)
}

func TestRefreshEventAfterDateChangeMovesAllocations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 1, 0)
	p := addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "facilitator", gender: "female"})
	if _, _, err := svc.BookParticipant(ctx, event.ID, p.ID); err != nil {
		t.Fatalf("book: %v", err)
	}

	newStart := eventStart.AddDate(0, 0, 7)
	newEnd := eventEnd.AddDate(0, 0, 7)
	if _, _, err := svc.UpdateEventDates(ctx, event.ID, newStart, newEnd); err != nil {
		t.Fatalf("move dates: %v", err)
	}
	// The booked allocation keeps the old dates until a refresh.
	stale := activeAllocation(t, svc, event.ID, p.ID)
	if !stale.CheckIn.Equal(eventStart) {
		t.Fatalf("date move must not touch bookings directly: %+v", stale)
	}

	if _, _, err := svc.RefreshEvent(ctx, event.ID); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fresh := activeAllocation(t, svc, event.ID, p.ID)
	if !fresh.CheckIn.Equal(newStart) || !fresh.CheckOut.Equal(newEnd) {
		t.Fatalf("refresh did not re-book against the new range: %+v", fresh)
	}
}

func TestCheckInAndCheckOutFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 0, 1)
	m1 := addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	m2 := addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}

	for _, p := range []domain.Participant{m1, m2} {
		updated, _, err := svc.CheckInParticipant(ctx, event.ID, p.ID)
		if err != nil {
			t.Fatalf("check in %s: %v", p.FullName, err)
		}
		if updated.Status != domain.AllocationCheckedIn {
			t.Fatalf("status after check-in: %+v", updated)
		}
	}
	// A second check-in is rejected.
	if _, _, err := svc.CheckInParticipant(ctx, event.ID, m1.ID); err == nil {
		t.Fatalf("expected error on double check-in")
	}

	if _, err := svc.CheckOutParticipant(ctx, event.ID, m1.ID); err != nil {
		t.Fatalf("check out: %v", err)
	}
	departed := lastAllocationFor(svc, event.ID, m1.ID)
	if departed.Status != domain.AllocationCheckedOut {
		t.Fatalf("status after check-out: %+v", departed)
	}
	// With no singles contracted the remaining guest keeps the double alone.
	partner := activeAllocation(t, svc, event.ID, m2.ID)
	if partner.Status != domain.AllocationCheckedIn || partner.RoomType != domain.RoomDouble || partner.NumberOfGuests != 1 {
		t.Fatalf("partner after checkout: %+v", partner)
	}
	assertConserved(t, svc, event.ID, setup.ID)

	if _, err := svc.CheckOutParticipant(ctx, event.ID, m2.ID); err != nil {
		t.Fatalf("final check out: %v", err)
	}
	got, _ := svc.GetAccommodationSetup(setup.ID)
	if got.DoubleAvailable != 1 {
		t.Fatalf("double not returned after last checkout: %+v", got)
	}
}

func TestCheckOutRequiresCheckedIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, _ := seedEvent(t, svc, 1, 0)
	p := addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "facilitator", gender: "female"})
	if _, _, err := svc.BookParticipant(ctx, event.ID, p.ID); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.CheckOutParticipant(ctx, event.ID, p.ID); err == nil {
		t.Fatalf("expected error checking out a merely booked allocation")
	}
}

func TestEventCapacitySummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	event, setup := seedEvent(t, svc, 3, 2)
	addParticipant(t, svc, event.ID, participantSpec{name: "Tom", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Jan", role: "visitor", gender: "male"})
	addParticipant(t, svc, event.ID, participantSpec{name: "Lena", role: "facilitator", gender: "female"})
	if _, _, err := svc.BookAllConfirmed(ctx, event.ID); err != nil {
		t.Fatalf("book all: %v", err)
	}

	summary, err := svc.EventCapacity(ctx, event.ID)
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if summary.SetupID != setup.ID {
		t.Fatalf("summary setup = %s, want %s", summary.SetupID, setup.ID)
	}
	if summary.SingleTotal != 3 || summary.SingleOccupied != 1 || summary.SingleAvailable != 2 {
		t.Fatalf("single counters: %+v", summary)
	}
	if summary.DoubleTotal != 2 || summary.DoubleOccupied != 1 || summary.DoubleAvailable != 1 {
		t.Fatalf("double counters: %+v", summary)
	}
	if summary.GuestCapacity != 7 || summary.GuestsLodged != 3 {
		t.Fatalf("guest totals: %+v", summary)
	}
}

// activeOrLastAllocationID returns the participant's active allocation ID, or
// the most recent inactive one when none is active.
func activeOrLastAllocationID(svc *core.Service, eventID, participantID string) string {
	return lastAllocationFor(svc, eventID, participantID).ID
}

func lastAllocationFor(svc *core.Service, eventID, participantID string) domain.Allocation {
	var last domain.Allocation
	for _, a := range svc.ListEventAllocations(eventID) {
		if a.ParticipantID != participantID {
			continue
		}
		if a.Status.Active() {
			return a
		}
		last = a
	}
	return last
}
