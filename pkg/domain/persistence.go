package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateEvent(Event) (Event, error)
	UpdateEvent(id string, mutator func(*Event) error) (Event, error)
	DeleteEvent(id string) error
	CreateAccommodationSetup(AccommodationSetup) (AccommodationSetup, error)
	UpdateAccommodationSetup(id string, mutator func(*AccommodationSetup) error) (AccommodationSetup, error)
	DeleteAccommodationSetup(id string) error
	CreateParticipant(Participant) (Participant, error)
	UpdateParticipant(id string, mutator func(*Participant) error) (Participant, error)
	DeleteParticipant(id string) error
	CreateRoomAssignment(RoomAssignment) (RoomAssignment, error)
	UpdateRoomAssignment(id string, mutator func(*RoomAssignment) error) (RoomAssignment, error)
	DeleteRoomAssignment(id string) error
	CreateAllocation(Allocation) (Allocation, error)
	UpdateAllocation(id string, mutator func(*Allocation) error) (Allocation, error)
	DeleteAllocation(id string) error
	FindEvent(id string) (Event, bool)
	FindAccommodationSetup(id string) (AccommodationSetup, bool)
	FindParticipant(id string) (Participant, bool)
	FindRoomAssignment(id string) (RoomAssignment, bool)
	FindAllocation(id string) (Allocation, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetEvent(id string) (Event, bool)
	ListEvents() []Event
	GetAccommodationSetup(id string) (AccommodationSetup, bool)
	ListAccommodationSetups() []AccommodationSetup
	GetParticipant(id string) (Participant, bool)
	ListParticipants() []Participant
	GetRoomAssignment(id string) (RoomAssignment, bool)
	ListRoomAssignments() []RoomAssignment
	GetAllocation(id string) (Allocation, bool)
	ListAllocations() []Allocation
}
