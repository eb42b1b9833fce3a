package core

import "fmt"

// ErrNotFound is returned when reference validation fails within transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InsufficientCapacityError is returned when a room reservation would drive a
// vendor setup counter negative. Batch operations treat it as recoverable and
// report it per participant.
type InsufficientCapacityError struct {
	SetupID  string
	RoomType RoomType
}

func (e InsufficientCapacityError) Error() string {
	return fmt.Sprintf("no %s rooms available on accommodation setup %s", e.RoomType, e.SetupID)
}

// AlreadyAllocatedError guards idempotency: booking a participant who already
// holds an active allocation is a no-op that surfaces the existing record.
type AlreadyAllocatedError struct {
	ParticipantID string
	AllocationID  string
}

func (e AlreadyAllocatedError) Error() string {
	return fmt.Sprintf("participant %s already holds allocation %s", e.ParticipantID, e.AllocationID)
}
