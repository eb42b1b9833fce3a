// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by lodgecore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityEvent identifies an event record.
	EntityEvent EntityType = "event"
	// EntityAccommodationSetup identifies a vendor accommodation setup record.
	EntityAccommodationSetup EntityType = "accommodation_setup"
	// EntityParticipant identifies a participant record.
	EntityParticipant EntityType = "participant"
	// EntityRoomAssignment identifies a room assignment record.
	EntityRoomAssignment EntityType = "room_assignment"
	// EntityAllocation identifies a guest allocation record.
	EntityAllocation EntityType = "allocation"
)

// RoomType enumerates the contracted room categories.
type RoomType string

// Contracted room categories.
const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
)

// AllocationStatus represents the lifecycle state of a guest allocation.
type AllocationStatus string

// Canonical allocation statuses. Booked and checked-in allocations count
// against the vendor setup counters; the rest do not.
const (
	AllocationBooked     AllocationStatus = "booked"
	AllocationCheckedIn  AllocationStatus = "checked_in"
	AllocationCheckedOut AllocationStatus = "checked_out"
	AllocationReleased   AllocationStatus = "released"
	AllocationCancelled  AllocationStatus = "cancelled"
)

// Active reports whether the status holds a room unit.
func (s AllocationStatus) Active() bool {
	return s == AllocationBooked || s == AllocationCheckedIn
}

// ParticipantStatus enumerates participant confirmation states owned by the
// outer registration layer and consumed read-only by the engine.
type ParticipantStatus string

// Canonical participant statuses.
const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantDeclined  ParticipantStatus = "declined"
	ParticipantCancelled ParticipantStatus = "cancelled"
)

// AccommodationPreference states whether a participant needs a room at all.
type AccommodationPreference string

// Accommodation preferences.
const (
	StayingAtVenue  AccommodationPreference = "staying_at_venue"
	TravellingDaily AccommodationPreference = "travelling_daily"
)

// BoardType is the meal plan determining the daily rate of an allocation.
type BoardType string

// Supported meal plans.
const (
	BoardFull         BoardType = "full_board"
	BoardHalf         BoardType = "half_board"
	BoardBedBreakfast BoardType = "bed_breakfast"
	BoardBedOnly      BoardType = "bed_only"
)

// Category is the canonical role classification driving room assignment.
type Category string

// Role categories.
const (
	// CategoryPrivileged marks facilitators and organizers; they always
	// receive a single room and are excluded from pairing.
	CategoryPrivileged Category = "privileged"
	// CategoryPoolable marks visitors eligible for gender-based pairing.
	CategoryPoolable Category = "poolable"
)

// Gender is the normalized gender signal used for pairing.
type Gender string

// Normalized genders. GenderOther is never pooled.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event represents a managed event with a vendor lodging contract. The
// engine treats it as immutable except for its date range.
type Event struct {
	Base
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	SetupID   *string   `json:"setup_id"`
	BoardType BoardType `json:"board_type"`
}

// DailyRate is the per-day price of a board type under a vendor contract.
type DailyRate struct {
	RatePerDay float64 `json:"rate_per_day"`
	Currency   string  `json:"currency"`
}

// AccommodationSetup captures the vendor lodging contract for an event:
// contracted room counts, live availability counters, and the rate table.
type AccommodationSetup struct {
	Base
	EventID          string                  `json:"event_id"`
	VendorContractID string                  `json:"vendor_contract_id"`
	SingleContracted int                     `json:"single_rooms_contracted"`
	DoubleContracted int                     `json:"double_rooms_contracted"`
	SingleAvailable  int                     `json:"single_rooms_available"`
	DoubleAvailable  int                     `json:"double_rooms_available"`
	Rates            map[BoardType]DailyRate `json:"rates"`
}

// Rate returns the daily rate for a board type, falling back to a zero rate
// when the vendor contract does not price the plan.
func (s AccommodationSetup) Rate(board BoardType) DailyRate {
	if r, ok := s.Rates[board]; ok {
		return r
	}
	return DailyRate{}
}

// Participant is the read model of an attendee consumed from the
// registration layer. Gender carries the participant's own field;
// RegistrationGender the linked public-registration fallback.
type Participant struct {
	Base
	EventID            string                  `json:"event_id"`
	FullName           string                  `json:"full_name"`
	Email              string                  `json:"email"`
	Role               string                  `json:"role"`
	ParticipantRole    string                  `json:"participant_role"`
	Gender             *string                 `json:"gender"`
	RegistrationGender *string                 `json:"registration_gender"`
	Preference         AccommodationPreference `json:"accommodation_preference"`
	Status             ParticipantStatus       `json:"status"`
}

// RoomAssignment groups the occupants of one physical room unit. A double
// assignment carries exactly two occupants; a provisional single carries one
// occupant eligible for a future merge.
type RoomAssignment struct {
	Base
	EventID     string    `json:"event_id"`
	SetupID     string    `json:"setup_id"`
	RoomType    RoomType  `json:"room_type"`
	OccupantIDs []string  `json:"occupant_ids"`
	Provisional bool      `json:"provisional"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
}

// Allocation is the persisted assignment of one guest to one room share for
// an event's date range, carrying the cost attributes consumed by billing.
type Allocation struct {
	Base
	EventID        string           `json:"event_id"`
	ParticipantID  string           `json:"participant_id"`
	SetupID        string           `json:"setup_id"`
	AssignmentID   string           `json:"assignment_id"`
	RoomType       RoomType         `json:"room_type"`
	Status         AllocationStatus `json:"status"`
	NumberOfGuests int              `json:"number_of_guests"`
	CheckIn        time.Time        `json:"check_in"`
	CheckOut       time.Time        `json:"check_out"`
	BoardType      BoardType        `json:"board_type"`
	RatePerDay     float64          `json:"rate_per_day"`
	Currency       string           `json:"currency"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
