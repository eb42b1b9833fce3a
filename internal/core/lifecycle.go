package core

import (
	"context"
	"errors"
	"fmt"

	"lodgecore/pkg/domain"
)

// BookingStatus classifies the per-participant outcome of a booking pass.
type BookingStatus string

const (
	// BookingBooked indicates an allocation was created for the participant.
	BookingBooked BookingStatus = "booked"
	// BookingSkipped indicates the participant was not eligible for lodging.
	BookingSkipped BookingStatus = "skipped"
	// BookingAlreadyAllocated indicates an active allocation already existed.
	BookingAlreadyAllocated BookingStatus = "already_allocated"
	// BookingFailed indicates the participant could not be placed, typically
	// because the vendor contract ran out of rooms.
	BookingFailed BookingStatus = "failed"
)

// BookingOutcome reports what happened to a single participant during a
// booking pass.
type BookingOutcome struct {
	ParticipantID string        `json:"participant_id"`
	Status        BookingStatus `json:"status"`
	Reason        string        `json:"reason,omitempty"`
	AllocationID  string        `json:"allocation_id,omitempty"`
	RoomType      RoomType      `json:"room_type,omitempty"`
	Provisional   bool          `json:"provisional,omitempty"`
}

// BatchSummary aggregates a bulk booking pass over an event.
type BatchSummary struct {
	EventID  string           `json:"event_id"`
	Booked   int              `json:"booked"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Merges   []MergeRecord    `json:"merges,omitempty"`
	Outcomes []BookingOutcome `json:"outcomes,omitempty"`
}

func (s *BatchSummary) record(o BookingOutcome) {
	switch o.Status {
	case BookingBooked, BookingAlreadyAllocated:
		s.Booked++
	case BookingFailed:
		s.Failed++
	default:
		s.Skipped++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// RefreshSummary reports an atomic clear-and-rebook of an event.
type RefreshSummary struct {
	EventID string       `json:"event_id"`
	Cleared int          `json:"cleared"`
	Summary BatchSummary `json:"summary"`
}

// CapacitySummary reports live room counters for an event's setup.
type CapacitySummary struct {
	EventID         string `json:"event_id"`
	SetupID         string `json:"setup_id"`
	SingleTotal     int    `json:"single_total"`
	SingleOccupied  int    `json:"single_occupied"`
	SingleAvailable int    `json:"single_available"`
	DoubleTotal     int    `json:"double_total"`
	DoubleOccupied  int    `json:"double_occupied"`
	DoubleAvailable int    `json:"double_available"`
	GuestCapacity   int    `json:"guest_capacity"`
	GuestsLodged    int    `json:"guests_lodged"`
}

// resolveEventSetup loads an event and its linked accommodation setup inside
// a transaction.
func resolveEventSetup(tx domain.Transaction, eventID string) (Event, AccommodationSetup, error) {
	event, ok := tx.FindEvent(eventID)
	if !ok {
		return Event{}, AccommodationSetup{}, ErrNotFound{Entity: EntityEvent, ID: eventID}
	}
	if event.SetupID == nil {
		return Event{}, AccommodationSetup{}, fmt.Errorf("event %s has no accommodation setup", eventID)
	}
	setup, ok := tx.FindAccommodationSetup(*event.SetupID)
	if !ok {
		return Event{}, AccommodationSetup{}, ErrNotFound{Entity: EntityAccommodationSetup, ID: *event.SetupID}
	}
	return event, setup, nil
}

// ineligibilityReason returns a non-empty reason when the participant should
// not receive lodging.
func ineligibilityReason(p Participant) string {
	if p.Status != ParticipantConfirmed {
		return fmt.Sprintf("participant status is %s", p.Status)
	}
	if p.Preference != StayingAtVenue {
		return "participant is travelling daily"
	}
	return ""
}

// activeAllocationFor finds the participant's active allocation for the
// event, if any.
func activeAllocationFor(view domain.TransactionView, eventID, participantID string) (Allocation, bool) {
	for _, a := range view.ListAllocations() {
		if a.EventID == eventID && a.ParticipantID == participantID && a.Status.Active() {
			return a, true
		}
	}
	return Allocation{}, false
}

// createRoomAndAllocation reserves nothing itself; callers reserve inventory
// first. It writes the assignment plus one allocation row per occupant.
func createRoomAndAllocation(tx domain.Transaction, event Event, setup AccommodationSetup, roomType RoomType, provisional bool, occupants []Participant) ([]Allocation, error) {
	ids := make([]string, len(occupants))
	for i, p := range occupants {
		ids[i] = p.ID
	}
	assignment, err := tx.CreateRoomAssignment(RoomAssignment{
		EventID:     event.ID,
		SetupID:     setup.ID,
		RoomType:    roomType,
		OccupantIDs: ids,
		Provisional: provisional,
		CheckIn:     event.StartDate,
		CheckOut:    event.EndDate,
	})
	if err != nil {
		return nil, err
	}
	rate := setup.Rate(event.BoardType)
	guests := 1
	if roomType == RoomDouble && !provisional {
		guests = 2
	}
	allocations := make([]Allocation, 0, len(occupants))
	for _, p := range occupants {
		alloc, err := tx.CreateAllocation(Allocation{
			EventID:        event.ID,
			ParticipantID:  p.ID,
			SetupID:        setup.ID,
			AssignmentID:   assignment.ID,
			RoomType:       roomType,
			Status:         AllocationBooked,
			NumberOfGuests: guests,
			CheckIn:        event.StartDate,
			CheckOut:       event.EndDate,
			BoardType:      event.BoardType,
			RatePerDay:     rate.RatePerDay,
			Currency:       rate.Currency,
		})
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	return allocations, nil
}

// bookSingleTx places one participant in a single room. Poolable
// participants that find no single left fall back to holding a double alone
// as a provisional occupant, so a later compaction can pair them in place.
func bookSingleTx(tx domain.Transaction, event Event, setup AccommodationSetup, p Participant, provisional bool) (BookingOutcome, error) {
	inv := NewRoomInventory(tx)
	err := inv.ReserveSingle(setup.ID)
	if err == nil {
		allocs, createErr := createRoomAndAllocation(tx, event, setup, RoomSingle, provisional, []Participant{p})
		if createErr != nil {
			return BookingOutcome{}, createErr
		}
		return BookingOutcome{
			ParticipantID: p.ID,
			Status:        BookingBooked,
			AllocationID:  allocs[0].ID,
			RoomType:      RoomSingle,
			Provisional:   provisional,
		}, nil
	}
	var insufficient InsufficientCapacityError
	if !errors.As(err, &insufficient) {
		return BookingOutcome{}, err
	}
	if !provisional {
		// Privileged guests and unpooled genders never share a double.
		return BookingOutcome{
			ParticipantID: p.ID,
			Status:        BookingFailed,
			Reason:        insufficient.Error(),
		}, nil
	}
	if doubleErr := inv.ReserveDouble(setup.ID); doubleErr != nil {
		if errors.As(doubleErr, &insufficient) {
			return BookingOutcome{
				ParticipantID: p.ID,
				Status:        BookingFailed,
				Reason:        insufficient.Error(),
			}, nil
		}
		return BookingOutcome{}, doubleErr
	}
	allocs, createErr := createRoomAndAllocation(tx, event, setup, RoomDouble, true, []Participant{p})
	if createErr != nil {
		return BookingOutcome{}, createErr
	}
	return BookingOutcome{
		ParticipantID: p.ID,
		Status:        BookingBooked,
		AllocationID:  allocs[0].ID,
		RoomType:      RoomDouble,
		Provisional:   true,
	}, nil
}

// bookPairTx places two same-gender participants in one double room.
func bookPairTx(tx domain.Transaction, event Event, setup AccommodationSetup, first, second Participant) ([]BookingOutcome, error) {
	inv := NewRoomInventory(tx)
	if err := inv.ReserveDouble(setup.ID); err != nil {
		var insufficient InsufficientCapacityError
		if errors.As(err, &insufficient) {
			outcomes := make([]BookingOutcome, 0, 2)
			for _, p := range []Participant{first, second} {
				outcomes = append(outcomes, BookingOutcome{
					ParticipantID: p.ID,
					Status:        BookingFailed,
					Reason:        insufficient.Error(),
				})
			}
			return outcomes, nil
		}
		return nil, err
	}
	allocs, err := createRoomAndAllocation(tx, event, setup, RoomDouble, false, []Participant{first, second})
	if err != nil {
		return nil, err
	}
	outcomes := make([]BookingOutcome, 0, 2)
	for _, a := range allocs {
		outcomes = append(outcomes, BookingOutcome{
			ParticipantID: a.ParticipantID,
			Status:        BookingBooked,
			AllocationID:  a.ID,
			RoomType:      RoomDouble,
		})
	}
	return outcomes, nil
}

// bookParticipantTx books a single participant according to their
// classification. Poolable participants receive a provisional single that a
// later compaction may merge into a double.
func bookParticipantTx(tx domain.Transaction, event Event, setup AccommodationSetup, p Participant) (BookingOutcome, error) {
	if existing, ok := activeAllocationFor(tx.Snapshot(), event.ID, p.ID); ok {
		return BookingOutcome{
			ParticipantID: p.ID,
			Status:        BookingAlreadyAllocated,
			AllocationID:  existing.ID,
			RoomType:      existing.RoomType,
		}, nil
	}
	if reason := ineligibilityReason(p); reason != "" {
		return BookingOutcome{ParticipantID: p.ID, Status: BookingSkipped, Reason: reason}, nil
	}
	class := Classify(p)
	switch {
	case class.Category == CategoryPrivileged:
		return bookSingleTx(tx, event, setup, p, false)
	case class.Gender == GenderOther:
		// Never pooled, but also never shares, so the room is final.
		return bookSingleTx(tx, event, setup, p, false)
	default:
		return bookSingleTx(tx, event, setup, p, true)
	}
}

// applyPlanTx executes one planned booking action against the transaction.
func applyPlanTx(tx domain.Transaction, event Event, setup AccommodationSetup, byID map[string]Participant, action BookingAction) ([]BookingOutcome, error) {
	switch action.Kind {
	case BookDoublePair:
		return bookPairTx(tx, event, setup, byID[action.ParticipantIDs[0]], byID[action.ParticipantIDs[1]])
	default:
		outcome, err := bookSingleTx(tx, event, setup, byID[action.ParticipantIDs[0]], action.Provisional)
		if err != nil {
			return nil, err
		}
		return []BookingOutcome{outcome}, nil
	}
}

// releaseAllocationTx marks an allocation inactive with the given terminal
// status and cleans up its room. When the room was a shared double the
// remaining partner is demoted to a provisional single, or kept alone in the
// double as a provisional occupant when no single is left. Either way the
// partner becomes a compaction candidate again.
func releaseAllocationTx(tx domain.Transaction, alloc Allocation, terminal AllocationStatus) error {
	if _, err := tx.UpdateAllocation(alloc.ID, func(a *Allocation) error {
		a.Status = terminal
		return nil
	}); err != nil {
		return err
	}
	assignment, ok := tx.FindRoomAssignment(alloc.AssignmentID)
	if !ok {
		return ErrNotFound{Entity: EntityRoomAssignment, ID: alloc.AssignmentID}
	}
	inv := NewRoomInventory(tx)
	var partner *Allocation
	for _, other := range tx.Snapshot().ListAllocations() {
		if other.AssignmentID == assignment.ID && other.ID != alloc.ID && other.Status.Active() {
			o := other
			partner = &o
			break
		}
	}
	if partner == nil {
		if err := tx.DeleteRoomAssignment(assignment.ID); err != nil {
			return err
		}
		if assignment.RoomType == RoomSingle {
			return inv.ReleaseSingle(assignment.SetupID, 1)
		}
		return inv.ReleaseDouble(assignment.SetupID, 1)
	}
	// A partner stays behind in a double. Prefer moving them to a
	// provisional single; keep them alone in the double when none is left.
	singleErr := inv.ReserveSingle(assignment.SetupID)
	if singleErr == nil {
		single, err := tx.CreateRoomAssignment(RoomAssignment{
			EventID:     assignment.EventID,
			SetupID:     assignment.SetupID,
			RoomType:    RoomSingle,
			OccupantIDs: []string{partner.ParticipantID},
			Provisional: true,
			CheckIn:     assignment.CheckIn,
			CheckOut:    assignment.CheckOut,
		})
		if err != nil {
			return err
		}
		if _, err := tx.UpdateAllocation(partner.ID, func(a *Allocation) error {
			a.AssignmentID = single.ID
			a.RoomType = RoomSingle
			a.NumberOfGuests = 1
			return nil
		}); err != nil {
			return err
		}
		if err := tx.DeleteRoomAssignment(assignment.ID); err != nil {
			return err
		}
		return inv.ReleaseDouble(assignment.SetupID, 1)
	}
	var insufficient InsufficientCapacityError
	if !errors.As(singleErr, &insufficient) {
		return singleErr
	}
	if _, err := tx.UpdateRoomAssignment(assignment.ID, func(a *RoomAssignment) error {
		a.OccupantIDs = []string{partner.ParticipantID}
		a.Provisional = true
		return nil
	}); err != nil {
		return err
	}
	_, err := tx.UpdateAllocation(partner.ID, func(a *Allocation) error {
		a.NumberOfGuests = 1
		return nil
	})
	return err
}

// clearEventTx releases every active allocation of the event and restores
// the room counters by dropping each assignment.
func clearEventTx(tx domain.Transaction, eventID string) (int, error) {
	inv := NewRoomInventory(tx)
	cleared := 0
	for _, alloc := range tx.Snapshot().ListAllocations() {
		if alloc.EventID != eventID || !alloc.Status.Active() {
			continue
		}
		if _, err := tx.UpdateAllocation(alloc.ID, func(a *Allocation) error {
			a.Status = AllocationReleased
			return nil
		}); err != nil {
			return cleared, err
		}
		cleared++
	}
	for _, assignment := range tx.Snapshot().ListRoomAssignments() {
		if assignment.EventID != eventID {
			continue
		}
		if err := tx.DeleteRoomAssignment(assignment.ID); err != nil {
			return cleared, err
		}
		var err error
		if assignment.RoomType == RoomSingle {
			err = inv.ReleaseSingle(assignment.SetupID, 1)
		} else {
			err = inv.ReleaseDouble(assignment.SetupID, 1)
		}
		if err != nil {
			return cleared, err
		}
	}
	return cleared, nil
}

// bookEventTx plans and books every eligible participant of the event,
// recording per-participant outcomes instead of failing the batch when
// capacity runs out.
func bookEventTx(tx domain.Transaction, event Event, setup AccommodationSetup, summary *BatchSummary) error {
	var candidates []Participant
	byID := make(map[string]Participant)
	for _, p := range tx.Snapshot().ListParticipants() {
		if p.EventID != event.ID {
			continue
		}
		if _, ok := activeAllocationFor(tx.Snapshot(), event.ID, p.ID); ok {
			summary.record(BookingOutcome{ParticipantID: p.ID, Status: BookingAlreadyAllocated})
			continue
		}
		if reason := ineligibilityReason(p); reason != "" {
			summary.record(BookingOutcome{ParticipantID: p.ID, Status: BookingSkipped, Reason: reason})
			continue
		}
		candidates = append(candidates, p)
		byID[p.ID] = p
	}
	SortParticipants(candidates)
	for _, action := range PlanEventBooking(candidates) {
		outcomes, err := applyPlanTx(tx, event, setup, byID, action)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			summary.record(o)
		}
	}
	merges, err := compactEvent(tx, event.ID)
	if err != nil {
		return err
	}
	summary.Merges = append(summary.Merges, merges...)
	return nil
}

// refreshEventTx atomically clears and re-books an event.
func refreshEventTx(tx domain.Transaction, eventID string) (RefreshSummary, error) {
	event, setup, err := resolveEventSetup(tx, eventID)
	if err != nil {
		return RefreshSummary{}, err
	}
	cleared, err := clearEventTx(tx, eventID)
	if err != nil {
		return RefreshSummary{}, err
	}
	summary := BatchSummary{EventID: eventID}
	if err := bookEventTx(tx, event, setup, &summary); err != nil {
		return RefreshSummary{}, err
	}
	return RefreshSummary{EventID: eventID, Cleared: cleared, Summary: summary}, nil
}

// BookParticipant books lodging for a single participant. Poolable visitors
// receive a provisional single or, when singles are exhausted, a provisional
// double, and the subsequent compaction pass may pair them immediately.
func (s *Service) BookParticipant(ctx context.Context, eventID, participantID string) (BookingOutcome, Result, error) {
	var outcome BookingOutcome
	var res Result
	err := s.run(ctx, "book_participant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			event, setup, txErr := resolveEventSetup(tx, eventID)
			if txErr != nil {
				return txErr
			}
			participant, ok := tx.FindParticipant(participantID)
			if !ok {
				return ErrNotFound{Entity: EntityParticipant, ID: participantID}
			}
			outcome, txErr = bookParticipantTx(tx, event, setup, participant)
			if txErr != nil {
				return txErr
			}
			if outcome.Status == BookingBooked {
				if _, txErr = compactEvent(tx, eventID); txErr != nil {
					return txErr
				}
			}
			return nil
		})
		return err
	})
	return outcome, res, err
}

// BookAllConfirmed books every confirmed venue-staying participant of the
// event in one transaction, pairing poolable visitors by gender.
func (s *Service) BookAllConfirmed(ctx context.Context, eventID string) (BatchSummary, Result, error) {
	summary := BatchSummary{EventID: eventID}
	var res Result
	err := s.run(ctx, "book_all_confirmed", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			event, setup, txErr := resolveEventSetup(tx, eventID)
			if txErr != nil {
				return txErr
			}
			return bookEventTx(tx, event, setup, &summary)
		})
		return err
	})
	if err != nil {
		return BatchSummary{EventID: eventID}, res, err
	}
	s.logger.Info("booking batch completed",
		"event_id", eventID,
		"booked", summary.Booked,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, res, err
}

// ReleaseParticipant releases the participant's active allocation, restores
// room counters, and re-queues a surviving double partner for compaction.
// Releasing a participant without an active allocation is a no-op.
func (s *Service) ReleaseParticipant(ctx context.Context, eventID, participantID string) (Result, error) {
	var res Result
	err := s.run(ctx, "release_participant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			alloc, ok := activeAllocationFor(tx.Snapshot(), eventID, participantID)
			if !ok {
				return nil
			}
			if txErr := releaseAllocationTx(tx, alloc, AllocationReleased); txErr != nil {
				return txErr
			}
			_, txErr := compactEvent(tx, eventID)
			return txErr
		})
		return err
	})
	return res, err
}

// SetParticipantStatus transitions a participant's registration status and
// applies the allocation side effect: confirming books lodging, leaving the
// confirmed state releases it.
func (s *Service) SetParticipantStatus(ctx context.Context, eventID, participantID string, status ParticipantStatus) (BookingOutcome, Result, error) {
	var outcome BookingOutcome
	var res Result
	err := s.run(ctx, "set_participant_status", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			participant, txErr := tx.UpdateParticipant(participantID, func(p *Participant) error {
				p.Status = status
				return nil
			})
			if txErr != nil {
				return txErr
			}
			if status == ParticipantConfirmed {
				event, setup, txErr := resolveEventSetup(tx, eventID)
				if txErr != nil {
					return txErr
				}
				outcome, txErr = bookParticipantTx(tx, event, setup, participant)
				if txErr != nil {
					return txErr
				}
				if outcome.Status == BookingBooked {
					_, txErr = compactEvent(tx, eventID)
				}
				return txErr
			}
			alloc, ok := activeAllocationFor(tx.Snapshot(), eventID, participantID)
			if !ok {
				outcome = BookingOutcome{ParticipantID: participantID, Status: BookingSkipped, Reason: "no active allocation"}
				return nil
			}
			if txErr := releaseAllocationTx(tx, alloc, AllocationReleased); txErr != nil {
				return txErr
			}
			outcome = BookingOutcome{ParticipantID: participantID, Status: BookingSkipped, Reason: "allocation released"}
			_, txErr = compactEvent(tx, eventID)
			return txErr
		})
		return err
	})
	return outcome, res, err
}

// SetParticipantRole changes a participant's roles. When the change flips
// the pairing category of an actively lodged participant the event is
// refreshed, since a privilege change can invalidate an existing pairing.
func (s *Service) SetParticipantRole(ctx context.Context, eventID, participantID, role, participantRole string) (Participant, Result, error) {
	var updated Participant
	var res Result
	err := s.run(ctx, "set_participant_role", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			before, ok := tx.FindParticipant(participantID)
			if !ok {
				return ErrNotFound{Entity: EntityParticipant, ID: participantID}
			}
			var txErr error
			updated, txErr = tx.UpdateParticipant(participantID, func(p *Participant) error {
				p.Role = role
				p.ParticipantRole = participantRole
				return nil
			})
			if txErr != nil {
				return txErr
			}
			if Classify(before).Category == Classify(updated).Category {
				return nil
			}
			if _, lodged := activeAllocationFor(tx.Snapshot(), eventID, participantID); !lodged {
				return nil
			}
			_, txErr = refreshEventTx(tx, eventID)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// RefreshEvent atomically clears and re-books the whole event. The clear and
// the rebooking commit together or not at all; individual participants that
// no longer fit are reported as failed outcomes rather than aborting the
// refresh.
func (s *Service) RefreshEvent(ctx context.Context, eventID string) (RefreshSummary, Result, error) {
	var summary RefreshSummary
	var res Result
	err := s.run(ctx, "refresh_event", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			summary, txErr = refreshEventTx(tx, eventID)
			return txErr
		})
		return err
	})
	if err == nil {
		s.logger.Info("event refreshed",
			"event_id", eventID,
			"cleared", summary.Cleared,
			"booked", summary.Summary.Booked,
			"failed", summary.Summary.Failed,
		)
	}
	return summary, res, err
}

// CheckInParticipant marks a booked allocation as checked in.
func (s *Service) CheckInParticipant(ctx context.Context, eventID, participantID string) (Allocation, Result, error) {
	var updated Allocation
	var res Result
	err := s.run(ctx, "check_in_participant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			alloc, ok := activeAllocationFor(tx.Snapshot(), eventID, participantID)
			if !ok {
				return ErrNotFound{Entity: EntityAllocation, ID: participantID}
			}
			if alloc.Status != AllocationBooked {
				return fmt.Errorf("allocation %s cannot check in from status %s", alloc.ID, alloc.Status)
			}
			var txErr error
			updated, txErr = tx.UpdateAllocation(alloc.ID, func(a *Allocation) error {
				a.Status = AllocationCheckedIn
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// CheckOutParticipant ends a checked-in stay and frees the room. A partner
// still checked in keeps the double alone as a provisional occupant.
func (s *Service) CheckOutParticipant(ctx context.Context, eventID, participantID string) (Result, error) {
	var res Result
	err := s.run(ctx, "check_out_participant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			alloc, ok := activeAllocationFor(tx.Snapshot(), eventID, participantID)
			if !ok {
				return ErrNotFound{Entity: EntityAllocation, ID: participantID}
			}
			if alloc.Status != AllocationCheckedIn {
				return fmt.Errorf("allocation %s cannot check out from status %s", alloc.ID, alloc.Status)
			}
			return releaseAllocationTx(tx, alloc, AllocationCheckedOut)
		})
		return err
	})
	return res, err
}

// EventCapacity reports live counter state for the event's setup.
func (s *Service) EventCapacity(ctx context.Context, eventID string) (CapacitySummary, error) {
	var summary CapacitySummary
	err := s.run(ctx, "event_capacity", func(ctx context.Context) error {
		return s.store.View(ctx, func(view domain.TransactionView) error {
			event, ok := view.FindEvent(eventID)
			if !ok {
				return ErrNotFound{Entity: EntityEvent, ID: eventID}
			}
			if event.SetupID == nil {
				return fmt.Errorf("event %s has no accommodation setup", eventID)
			}
			setup, ok := view.FindAccommodationSetup(*event.SetupID)
			if !ok {
				return ErrNotFound{Entity: EntityAccommodationSetup, ID: *event.SetupID}
			}
			guests := 0
			for _, a := range view.ListAllocations() {
				if a.EventID == eventID && a.Status.Active() {
					guests++
				}
			}
			summary = CapacitySummary{
				EventID:         eventID,
				SetupID:         setup.ID,
				SingleTotal:     setup.SingleContracted,
				SingleOccupied:  setup.SingleContracted - setup.SingleAvailable,
				SingleAvailable: setup.SingleAvailable,
				DoubleTotal:     setup.DoubleContracted,
				DoubleOccupied:  setup.DoubleContracted - setup.DoubleAvailable,
				DoubleAvailable: setup.DoubleAvailable,
				GuestCapacity:   setup.SingleContracted + 2*setup.DoubleContracted,
				GuestsLodged:    guests,
			}
			return nil
		})
	})
	return summary, err
}
