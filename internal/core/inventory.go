package core

import (
	"lodgecore/pkg/domain"
)

// RoomInventory mutates the availability counters of a vendor setup inside a
// running transaction. All counter movement goes through this type; callers
// never touch the setup fields directly, so a failed reservation leaves the
// counters untouched and the conservation rule can hold the balance on commit.
type RoomInventory struct {
	tx domain.Transaction
}

// NewRoomInventory wraps a transaction with counter operations.
func NewRoomInventory(tx domain.Transaction) RoomInventory {
	return RoomInventory{tx: tx}
}

// ReserveSingle consumes one single room, failing with
// InsufficientCapacityError when none remain.
func (inv RoomInventory) ReserveSingle(setupID string) error {
	_, err := inv.tx.UpdateAccommodationSetup(setupID, func(s *AccommodationSetup) error {
		if s.SingleAvailable < 1 {
			return InsufficientCapacityError{SetupID: setupID, RoomType: RoomSingle}
		}
		s.SingleAvailable--
		return nil
	})
	return err
}

// ReserveDouble consumes one double room, failing with
// InsufficientCapacityError when none remain.
func (inv RoomInventory) ReserveDouble(setupID string) error {
	_, err := inv.tx.UpdateAccommodationSetup(setupID, func(s *AccommodationSetup) error {
		if s.DoubleAvailable < 1 {
			return InsufficientCapacityError{SetupID: setupID, RoomType: RoomDouble}
		}
		s.DoubleAvailable--
		return nil
	})
	return err
}

// ReleaseSingle returns n single rooms to the pool.
func (inv RoomInventory) ReleaseSingle(setupID string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := inv.tx.UpdateAccommodationSetup(setupID, func(s *AccommodationSetup) error {
		s.SingleAvailable += n
		return nil
	})
	return err
}

// ReleaseDouble returns n double rooms to the pool.
func (inv RoomInventory) ReleaseDouble(setupID string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := inv.tx.UpdateAccommodationSetup(setupID, func(s *AccommodationSetup) error {
		s.DoubleAvailable += n
		return nil
	})
	return err
}
