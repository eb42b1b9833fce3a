package core

import "lodgecore/pkg/domain"

type (
	EntityType         = domain.EntityType
	RoomType           = domain.RoomType
	AllocationStatus   = domain.AllocationStatus
	ParticipantStatus  = domain.ParticipantStatus
	BoardType          = domain.BoardType
	Category           = domain.Category
	Gender             = domain.Gender
	Severity           = domain.Severity
	Base               = domain.Base
	Event              = domain.Event
	AccommodationSetup = domain.AccommodationSetup
	DailyRate          = domain.DailyRate
	Participant        = domain.Participant
	RoomAssignment     = domain.RoomAssignment
	Allocation         = domain.Allocation
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityEvent              = domain.EntityEvent
	EntityAccommodationSetup = domain.EntityAccommodationSetup
	EntityParticipant        = domain.EntityParticipant
	EntityRoomAssignment     = domain.EntityRoomAssignment
	EntityAllocation         = domain.EntityAllocation
)

const (
	RoomSingle = domain.RoomSingle
	RoomDouble = domain.RoomDouble
)

const (
	AllocationBooked     = domain.AllocationBooked
	AllocationCheckedIn  = domain.AllocationCheckedIn
	AllocationCheckedOut = domain.AllocationCheckedOut
	AllocationReleased   = domain.AllocationReleased
	AllocationCancelled  = domain.AllocationCancelled
)

const (
	ParticipantPending   = domain.ParticipantPending
	ParticipantConfirmed = domain.ParticipantConfirmed
	ParticipantDeclined  = domain.ParticipantDeclined
	ParticipantCancelled = domain.ParticipantCancelled
)

const (
	StayingAtVenue  = domain.StayingAtVenue
	TravellingDaily = domain.TravellingDaily
)

const (
	CategoryPrivileged = domain.CategoryPrivileged
	CategoryPoolable   = domain.CategoryPoolable
)

const (
	GenderMale   = domain.GenderMale
	GenderFemale = domain.GenderFemale
	GenderOther  = domain.GenderOther
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
