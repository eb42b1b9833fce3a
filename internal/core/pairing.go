package core

import (
	"errors"
	"sort"

	"lodgecore/pkg/domain"
)

// BookingActionKind discriminates planned booking steps.
type BookingActionKind string

// Planned booking steps emitted by PlanEventBooking.
const (
	// BookSingle books one participant into a single room. Poolable
	// participants booked this way remain provisional, eligible for a
	// future merge.
	BookSingle BookingActionKind = "book_single"
	// BookDoublePair books two same-gender poolable participants into one
	// double room.
	BookDoublePair BookingActionKind = "book_double_pair"
)

// BookingAction is one step of a deterministic event booking plan.
type BookingAction struct {
	Kind           BookingActionKind
	ParticipantIDs []string
	Provisional    bool
}

// SortParticipants orders participants by creation time then ID, the stable
// key used for planning and compaction so reruns reproduce the same pairing.
func SortParticipants(participants []Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		if !participants[i].CreatedAt.Equal(participants[j].CreatedAt) {
			return participants[i].CreatedAt.Before(participants[j].CreatedAt)
		}
		return participants[i].ID < participants[j].ID
	})
}

// PlanEventBooking partitions the ordered participants into privileged,
// male-poolable, female-poolable, and other-poolable groups, then emits one
// BookSingle per privileged and per other participant and positional
// BookDoublePair actions per gender group, leaving an odd remainder as a
// provisional single. The tie-break is strictly positional: first unmatched
// with second unmatched, no preference weighting.
func PlanEventBooking(participants []Participant) []BookingAction {
	var privileged, other []Participant
	pools := map[Gender][]Participant{}
	for _, p := range participants {
		c := Classify(p)
		switch {
		case c.Category == CategoryPrivileged:
			privileged = append(privileged, p)
		case c.Gender == GenderOther:
			other = append(other, p)
		default:
			pools[c.Gender] = append(pools[c.Gender], p)
		}
	}

	var plan []BookingAction
	for _, p := range privileged {
		plan = append(plan, BookingAction{Kind: BookSingle, ParticipantIDs: []string{p.ID}})
	}
	for _, p := range other {
		plan = append(plan, BookingAction{Kind: BookSingle, ParticipantIDs: []string{p.ID}})
	}
	for _, gender := range []Gender{GenderMale, GenderFemale} {
		pool := pools[gender]
		for len(pool) >= 2 {
			plan = append(plan, BookingAction{Kind: BookDoublePair, ParticipantIDs: []string{pool[0].ID, pool[1].ID}})
			pool = pool[2:]
		}
		if len(pool) == 1 {
			plan = append(plan, BookingAction{Kind: BookSingle, ParticipantIDs: []string{pool[0].ID}, Provisional: true})
		}
	}
	return plan
}

// MergeRecord reports one compaction merge: two provisional occupants now
// sharing the double assignment.
type MergeRecord struct {
	AssignmentID   string
	ParticipantIDs [2]string
	Gender         Gender
}

// mergeCandidate is a provisional room share eligible for compaction: a
// poolable participant alone in a provisional single, or alone in a double
// left behind by a departed partner.
type mergeCandidate struct {
	participant Participant
	allocation  Allocation
	assignment  RoomAssignment
}

// compactEvent merges waiting same-gender provisional occupants into shared
// double rooms, walking each gender pool in the stable participant order and
// pairing positionally. Merging two provisional singles consumes one double
// and frees two singles; when one candidate already sits alone in a double
// room the partner simply moves in, freeing the partner's old room. When the
// vendor has no fresh double left the pass falls forward to the next
// candidate already holding a provisional double, and stops the gender pool
// only once no such room remains either.
func compactEvent(tx domain.Transaction, eventID string) ([]MergeRecord, error) {
	view := tx.Snapshot()
	inv := NewRoomInventory(tx)

	pools := map[Gender][]mergeCandidate{}
	for _, allocation := range view.ListAllocations() {
		if allocation.EventID != eventID || allocation.Status != AllocationBooked {
			continue
		}
		assignment, ok := view.FindRoomAssignment(allocation.AssignmentID)
		if !ok || !assignment.Provisional {
			continue
		}
		participant, ok := view.FindParticipant(allocation.ParticipantID)
		if !ok {
			continue
		}
		c := Classify(participant)
		if c.Category != CategoryPoolable || c.Gender == GenderOther {
			continue
		}
		pools[c.Gender] = append(pools[c.Gender], mergeCandidate{
			participant: participant,
			allocation:  allocation,
			assignment:  assignment,
		})
	}

	var merges []MergeRecord
	for _, gender := range []Gender{GenderMale, GenderFemale} {
		pool := pools[gender]
		sort.SliceStable(pool, func(i, j int) bool {
			a, b := pool[i].participant, pool[j].participant
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		})
		for len(pool) >= 2 {
			first, second := pool[0], pool[1]
			remainder := pool[2:]
			record, err := mergePair(tx, inv, first, second)
			if err != nil {
				var insufficient InsufficientCapacityError
				if !errors.As(err, &insufficient) {
					return merges, err
				}
				// Both hold singles and no fresh double is left. A later
				// candidate already alone in a provisional double can still
				// take one of them in place.
				idx := doubleHolderIndex(remainder)
				if idx < 0 {
					break
				}
				record, err = mergePair(tx, inv, first, remainder[idx])
				if err != nil {
					return merges, err
				}
				rest := make([]mergeCandidate, 0, len(remainder))
				rest = append(rest, second)
				rest = append(rest, remainder[:idx]...)
				rest = append(rest, remainder[idx+1:]...)
				pool = rest
			} else {
				pool = remainder
			}
			record.Gender = gender
			merges = append(merges, record)
		}
	}
	return merges, nil
}

// doubleHolderIndex finds the first candidate already occupying a double.
func doubleHolderIndex(pool []mergeCandidate) int {
	for i, c := range pool {
		if c.assignment.RoomType == RoomDouble {
			return i
		}
	}
	return -1
}

// mergePair moves two provisional occupants into one double room. An existing
// provisional double among the pair's rooms is reused before a fresh double is
// reserved.
func mergePair(tx domain.Transaction, inv RoomInventory, first, second mergeCandidate) (MergeRecord, error) {
	// Prefer keeping the room of a candidate already holding a double.
	if second.assignment.RoomType == RoomDouble && first.assignment.RoomType != RoomDouble {
		first, second = second, first
	}

	var target RoomAssignment
	var vacated []RoomAssignment
	if first.assignment.RoomType == RoomDouble {
		moved, err := tx.UpdateRoomAssignment(first.assignment.ID, func(a *RoomAssignment) error {
			a.Provisional = false
			a.OccupantIDs = []string{first.participant.ID, second.participant.ID}
			return nil
		})
		if err != nil {
			return MergeRecord{}, err
		}
		target = moved
		vacated = []RoomAssignment{second.assignment}
	} else {
		if err := inv.ReserveDouble(first.allocation.SetupID); err != nil {
			return MergeRecord{}, err
		}
		created, err := tx.CreateRoomAssignment(RoomAssignment{
			EventID:     first.allocation.EventID,
			SetupID:     first.allocation.SetupID,
			RoomType:    RoomDouble,
			OccupantIDs: []string{first.participant.ID, second.participant.ID},
			CheckIn:     first.allocation.CheckIn,
			CheckOut:    first.allocation.CheckOut,
		})
		if err != nil {
			return MergeRecord{}, err
		}
		target = created
		vacated = []RoomAssignment{first.assignment, second.assignment}
	}

	// Repoint the allocation rows before dropping the vacated rooms; the
	// store refuses to delete an assignment still referenced by an active
	// allocation.
	for _, candidate := range []mergeCandidate{first, second} {
		if _, err := tx.UpdateAllocation(candidate.allocation.ID, func(a *Allocation) error {
			a.RoomType = RoomDouble
			a.NumberOfGuests = 2
			a.AssignmentID = target.ID
			return nil
		}); err != nil {
			return MergeRecord{}, err
		}
	}
	for _, room := range vacated {
		if err := releaseVacatedRoom(tx, inv, room); err != nil {
			return MergeRecord{}, err
		}
	}
	return MergeRecord{
		AssignmentID:   target.ID,
		ParticipantIDs: [2]string{first.participant.ID, second.participant.ID},
	}, nil
}

// releaseVacatedRoom deletes an emptied assignment and returns its room unit
// to the vendor pool. Reused rooms must not be passed here.
func releaseVacatedRoom(tx domain.Transaction, inv RoomInventory, assignment RoomAssignment) error {
	if err := tx.DeleteRoomAssignment(assignment.ID); err != nil {
		return err
	}
	if assignment.RoomType == RoomDouble {
		return inv.ReleaseDouble(assignment.SetupID, 1)
	}
	return inv.ReleaseSingle(assignment.SetupID, 1)
}
