package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lodgecore/internal/core"
	"lodgecore/pkg/domain"
)

// eventStart/eventEnd give every fixture event a fixed four-night stay.
var (
	eventStart = mustTime("2026-06-01T14:00:00Z")
	eventEnd   = mustTime("2026-06-05T10:00:00Z")
)

func mustTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func newTestService(t *testing.T) *core.Service {
	t.Helper()
	return core.NewInMemoryService(core.NewDefaultRulesEngine())
}

// seedEvent creates an event plus a linked vendor setup with the given
// contracted room counts.
func seedEvent(t *testing.T, svc *core.Service, singles, doubles int) (domain.Event, domain.AccommodationSetup) {
	t.Helper()
	ctx := context.Background()
	event, _, err := svc.CreateEvent(ctx, domain.Event{
		Name:      "Summer Retreat",
		StartDate: eventStart,
		EndDate:   eventEnd,
		BoardType: domain.BoardFull,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	setup, _, err := svc.CreateAccommodationSetup(ctx, domain.AccommodationSetup{
		EventID:          event.ID,
		VendorContractID: "vendor-1",
		SingleContracted: singles,
		DoubleContracted: doubles,
		SingleAvailable:  singles,
		DoubleAvailable:  doubles,
		Rates: map[domain.BoardType]domain.DailyRate{
			domain.BoardFull: {RatePerDay: 80, Currency: "EUR"},
			domain.BoardHalf: {RatePerDay: 60, Currency: "EUR"},
		},
	})
	if err != nil {
		t.Fatalf("create setup: %v", err)
	}
	refreshed, ok := svc.GetEvent(event.ID)
	if !ok {
		t.Fatalf("event %s missing after setup creation", event.ID)
	}
	if refreshed.SetupID == nil || *refreshed.SetupID != setup.ID {
		t.Fatalf("event not linked to setup: %+v", refreshed.SetupID)
	}
	return refreshed, setup
}

type participantSpec struct {
	name       string
	role       string
	gender     string
	status     domain.ParticipantStatus
	preference domain.AccommodationPreference
}

func addParticipant(t *testing.T, svc *core.Service, eventID string, spec participantSpec) domain.Participant {
	t.Helper()
	if spec.status == "" {
		spec.status = domain.ParticipantConfirmed
	}
	if spec.preference == "" {
		spec.preference = domain.StayingAtVenue
	}
	p := domain.Participant{
		EventID:    eventID,
		FullName:   spec.name,
		Email:      spec.name + "@example.org",
		Role:       spec.role,
		Status:     spec.status,
		Preference: spec.preference,
	}
	if spec.gender != "" {
		g := spec.gender
		p.Gender = &g
	}
	created, _, err := svc.CreateParticipant(context.Background(), p)
	if err != nil {
		t.Fatalf("create participant %s: %v", spec.name, err)
	}
	return created
}

func activeAllocation(t *testing.T, svc *core.Service, eventID, participantID string) domain.Allocation {
	t.Helper()
	for _, a := range svc.ListEventAllocations(eventID) {
		if a.ParticipantID == participantID && a.Status.Active() {
			return a
		}
	}
	t.Fatalf("no active allocation for participant %s", participantID)
	return domain.Allocation{}
}

func hasActiveAllocation(svc *core.Service, eventID, participantID string) bool {
	for _, a := range svc.ListEventAllocations(eventID) {
		if a.ParticipantID == participantID && a.Status.Active() {
			return true
		}
	}
	return false
}

// assertConserved checks the room counter balance directly from committed
// state, mirroring what the blocking rule enforces inside transactions.
func assertConserved(t *testing.T, svc *core.Service, eventID string, setupID string) {
	t.Helper()
	setup, ok := svc.GetAccommodationSetup(setupID)
	if !ok {
		t.Fatalf("setup %s missing", setupID)
	}
	singles := 0
	doubleUnits := map[string]struct{}{}
	for _, a := range svc.ListEventAllocations(eventID) {
		if !a.Status.Active() {
			continue
		}
		switch a.RoomType {
		case domain.RoomSingle:
			singles++
		case domain.RoomDouble:
			doubleUnits[a.AssignmentID] = struct{}{}
		}
	}
	if setup.SingleAvailable+singles != setup.SingleContracted {
		t.Fatalf("single counters out of balance: available=%d active=%d contracted=%d",
			setup.SingleAvailable, singles, setup.SingleContracted)
	}
	if setup.DoubleAvailable+len(doubleUnits) != setup.DoubleContracted {
		t.Fatalf("double counters out of balance: available=%d active=%d contracted=%d",
			setup.DoubleAvailable, len(doubleUnits), setup.DoubleContracted)
	}
}

func isInsufficientCapacity(err error) bool {
	var capErr core.InsufficientCapacityError
	return errors.As(err, &capErr)
}
