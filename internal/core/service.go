package core

import (
	"context"
	"sort"
	"time"

	"lodgecore/internal/infra/persistence/memory"
	"lodgecore/pkg/domain"
)

// Service exposes the allocation engine commands to the surrounding CRUD
// layer. All mutations run through the store's transactional scope so the
// invariant rules gate every commit.
type Service struct {
	store   domain.PersistentStore
	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger overrides the no-op default logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the system clock, primarily for deterministic tests.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder attaches an operation metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer attaches a span tracer around service operations.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		clock:  systemClock{},
		tracer: noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, system := s.clock.(systemClock); !system {
		// An overridden clock drives entity timestamps too, so stores that
		// expose their transaction clock pick it up here.
		if nc, ok := s.store.(interface{ SetNowFunc(func() time.Time) }); ok {
			nc.SetNowFunc(s.clock.Now)
		}
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// given rules engine (the default policy set when nil).
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// run wraps an operation with tracing, metrics, and outcome logging.
func (s *Service) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, operation)
	start := s.clock.Now()
	err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	span.End(err)
	if err != nil {
		s.logger.Error(operation+" failed", "error", err, "duration_ms", duration.Milliseconds())
	} else {
		s.logger.Debug(operation+" completed", "duration_ms", duration.Milliseconds())
	}
	return err
}

// CreateEvent persists a new event.
func (s *Service) CreateEvent(ctx context.Context, event Event) (Event, Result, error) {
	var created Event
	var res Result
	err := s.run(ctx, "create_event", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateEvent(event)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateEventDates moves an event's date range, the only event mutation the
// engine owns. Active allocations keep their booked dates; a refresh re-books
// against the new range.
func (s *Service) UpdateEventDates(ctx context.Context, eventID string, start, end time.Time) (Event, Result, error) {
	var updated Event
	var res Result
	err := s.run(ctx, "update_event_dates", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateEvent(eventID, func(e *Event) error {
				e.StartDate = start
				e.EndDate = end
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// CreateAccommodationSetup persists the vendor lodging contract for an event
// and links it as the event's active setup.
func (s *Service) CreateAccommodationSetup(ctx context.Context, setup AccommodationSetup) (AccommodationSetup, Result, error) {
	var created AccommodationSetup
	var res Result
	err := s.run(ctx, "create_accommodation_setup", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateAccommodationSetup(setup)
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.UpdateEvent(created.EventID, func(e *Event) error {
				id := created.ID
				e.SetupID = &id
				return nil
			})
			return txErr
		})
		return err
	})
	return created, res, err
}

// CreateParticipant persists a participant record consumed from the
// registration layer.
func (s *Service) CreateParticipant(ctx context.Context, participant Participant) (Participant, Result, error) {
	var created Participant
	var res Result
	err := s.run(ctx, "create_participant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateParticipant(participant)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateParticipant mutates a participant using the provided mutator. Status
// and role transitions with allocation side effects belong to
// SetParticipantStatus and SetParticipantRole instead.
func (s *Service) UpdateParticipant(ctx context.Context, id string, mutator func(*Participant) error) (Participant, Result, error) {
	var updated Participant
	var res Result
	err := s.run(ctx, "update_participant", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateParticipant(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// GetEvent retrieves an event by ID from committed state.
func (s *Service) GetEvent(id string) (Event, bool) {
	return s.store.GetEvent(id)
}

// GetAccommodationSetup retrieves a vendor setup by ID from committed state.
func (s *Service) GetAccommodationSetup(id string) (AccommodationSetup, bool) {
	return s.store.GetAccommodationSetup(id)
}

// GetParticipant retrieves a participant by ID from committed state.
func (s *Service) GetParticipant(id string) (Participant, bool) {
	return s.store.GetParticipant(id)
}

// GetAllocation retrieves an allocation by ID from committed state.
func (s *Service) GetAllocation(id string) (Allocation, bool) {
	return s.store.GetAllocation(id)
}

// ListEventParticipants returns the event's participants in the stable
// planning order.
func (s *Service) ListEventParticipants(eventID string) []Participant {
	var out []Participant
	for _, p := range s.store.ListParticipants() {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	SortParticipants(out)
	return out
}

// ListEventAllocations returns the event's allocations ordered by creation
// time then ID, the order billing exports consume.
func (s *Service) ListEventAllocations(eventID string) []Allocation {
	var out []Allocation
	for _, a := range s.store.ListAllocations() {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListEventRoomAssignments returns the event's room assignments ordered by
// creation time then ID.
func (s *Service) ListEventRoomAssignments(eventID string) []RoomAssignment {
	var out []RoomAssignment
	for _, a := range s.store.ListRoomAssignments() {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
