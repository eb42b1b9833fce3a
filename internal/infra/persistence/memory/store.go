// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"lodgecore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Event aliases domain.Event for in-memory persistence operations.
	Event = domain.Event
	// AccommodationSetup aliases domain.AccommodationSetup.
	AccommodationSetup = domain.AccommodationSetup
	// Participant aliases domain.Participant.
	Participant = domain.Participant
	// RoomAssignment aliases domain.RoomAssignment.
	RoomAssignment = domain.RoomAssignment
	// Allocation aliases domain.Allocation.
	Allocation = domain.Allocation
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	events       map[string]Event
	setups       map[string]AccommodationSetup
	participants map[string]Participant
	assignments  map[string]RoomAssignment
	allocations  map[string]Allocation
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Events       map[string]Event              `json:"events"`
	Setups       map[string]AccommodationSetup `json:"setups"`
	Participants map[string]Participant        `json:"participants"`
	Assignments  map[string]RoomAssignment     `json:"assignments"`
	Allocations  map[string]Allocation         `json:"allocations"`
}

func newMemoryState() memoryState {
	return memoryState{
		events:       make(map[string]Event),
		setups:       make(map[string]AccommodationSetup),
		participants: make(map[string]Participant),
		assignments:  make(map[string]RoomAssignment),
		allocations:  make(map[string]Allocation),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.events {
		cloned.events[k] = cloneEvent(v)
	}
	for k, v := range s.setups {
		cloned.setups[k] = cloneSetup(v)
	}
	for k, v := range s.participants {
		cloned.participants[k] = cloneParticipant(v)
	}
	for k, v := range s.assignments {
		cloned.assignments[k] = cloneAssignment(v)
	}
	for k, v := range s.allocations {
		cloned.allocations[k] = cloneAllocation(v)
	}
	return cloned
}

func cloneEvent(e Event) Event {
	cp := e
	if e.SetupID != nil {
		id := *e.SetupID
		cp.SetupID = &id
	}
	return cp
}

func cloneSetup(s AccommodationSetup) AccommodationSetup {
	cp := s
	if s.Rates != nil {
		cp.Rates = make(map[domain.BoardType]domain.DailyRate, len(s.Rates))
		for k, v := range s.Rates {
			cp.Rates[k] = v
		}
	}
	return cp
}

func cloneParticipant(p Participant) Participant {
	cp := p
	if p.Gender != nil {
		g := *p.Gender
		cp.Gender = &g
	}
	if p.RegistrationGender != nil {
		g := *p.RegistrationGender
		cp.RegistrationGender = &g
	}
	return cp
}

func cloneAssignment(a RoomAssignment) RoomAssignment {
	cp := a
	cp.OccupantIDs = append([]string(nil), a.OccupantIDs...)
	return cp
}

func cloneAllocation(a Allocation) Allocation { return a }

// Store provides an in-memory transactional store for the lodging domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState returns a deep copy of the committed state for snapshotting.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state.clone()
	return Snapshot{
		Events:       state.events,
		Setups:       state.setups,
		Participants: state.participants,
		Assignments:  state.assignments,
		Allocations:  state.allocations,
	}
}

// ImportState replaces the committed state with the supplied snapshot,
// dropping records whose references no longer resolve.
func (s *Store) ImportState(snapshot Snapshot) {
	normalizeSnapshot(&snapshot)
	state := newMemoryState()
	for k, v := range snapshot.Events {
		state.events[k] = cloneEvent(v)
	}
	for k, v := range snapshot.Setups {
		state.setups[k] = cloneSetup(v)
	}
	for k, v := range snapshot.Participants {
		state.participants[k] = cloneParticipant(v)
	}
	for k, v := range snapshot.Assignments {
		state.assignments[k] = cloneAssignment(v)
	}
	for k, v := range snapshot.Allocations {
		state.allocations[k] = cloneAllocation(v)
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// normalizeSnapshot repairs hydrated snapshots: nil maps become empty maps and
// records pointing at missing parents are dropped rather than resurrected.
func normalizeSnapshot(snapshot *Snapshot) {
	if snapshot.Events == nil {
		snapshot.Events = map[string]Event{}
	}
	if snapshot.Setups == nil {
		snapshot.Setups = map[string]AccommodationSetup{}
	}
	if snapshot.Participants == nil {
		snapshot.Participants = map[string]Participant{}
	}
	if snapshot.Assignments == nil {
		snapshot.Assignments = map[string]RoomAssignment{}
	}
	if snapshot.Allocations == nil {
		snapshot.Allocations = map[string]Allocation{}
	}

	eventExists := func(id string) bool {
		_, ok := snapshot.Events[id]
		return ok
	}
	setupExists := func(id string) bool {
		_, ok := snapshot.Setups[id]
		return ok
	}
	participantExists := func(id string) bool {
		_, ok := snapshot.Participants[id]
		return ok
	}
	assignmentExists := func(id string) bool {
		_, ok := snapshot.Assignments[id]
		return ok
	}

	for id, setup := range snapshot.Setups {
		if setup.EventID == "" || !eventExists(setup.EventID) {
			delete(snapshot.Setups, id)
		}
	}
	for id, participant := range snapshot.Participants {
		if participant.EventID == "" || !eventExists(participant.EventID) {
			delete(snapshot.Participants, id)
		}
	}
	for id, assignment := range snapshot.Assignments {
		if !eventExists(assignment.EventID) || !setupExists(assignment.SetupID) {
			delete(snapshot.Assignments, id)
			continue
		}
		kept := assignment.OccupantIDs[:0]
		for _, occupant := range assignment.OccupantIDs {
			if participantExists(occupant) {
				kept = append(kept, occupant)
			}
		}
		assignment.OccupantIDs = kept
		snapshot.Assignments[id] = assignment
	}
	for id, allocation := range snapshot.Allocations {
		if !eventExists(allocation.EventID) || !setupExists(allocation.SetupID) || !participantExists(allocation.ParticipantID) {
			delete(snapshot.Allocations, id)
			continue
		}
		if allocation.AssignmentID != "" && !assignmentExists(allocation.AssignmentID) {
			allocation.AssignmentID = ""
			snapshot.Allocations[id] = allocation
		}
	}
}

// RulesEngine exposes the engine evaluating invariants on commit.
func (s *Store) RulesEngine() *RulesEngine {
	return s.engine
}

// SetNowFunc overrides the transaction clock, primarily for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) transactionView {
	return transactionView{state: state}
}

// ListEvents returns all events within the snapshot.
func (v transactionView) ListEvents() []Event {
	out := make([]Event, 0, len(v.state.events))
	for _, e := range v.state.events {
		out = append(out, cloneEvent(e))
	}
	return out
}

// ListAccommodationSetups returns all vendor setups within the snapshot.
func (v transactionView) ListAccommodationSetups() []AccommodationSetup {
	out := make([]AccommodationSetup, 0, len(v.state.setups))
	for _, s := range v.state.setups {
		out = append(out, cloneSetup(s))
	}
	return out
}

// ListParticipants returns all participants within the snapshot.
func (v transactionView) ListParticipants() []Participant {
	out := make([]Participant, 0, len(v.state.participants))
	for _, p := range v.state.participants {
		out = append(out, cloneParticipant(p))
	}
	return out
}

// ListRoomAssignments returns all room assignments within the snapshot.
func (v transactionView) ListRoomAssignments() []RoomAssignment {
	out := make([]RoomAssignment, 0, len(v.state.assignments))
	for _, a := range v.state.assignments {
		out = append(out, cloneAssignment(a))
	}
	return out
}

// ListAllocations returns all allocations within the snapshot.
func (v transactionView) ListAllocations() []Allocation {
	out := make([]Allocation, 0, len(v.state.allocations))
	for _, a := range v.state.allocations {
		out = append(out, cloneAllocation(a))
	}
	return out
}

// FindEvent retrieves an event by ID from the snapshot.
func (v transactionView) FindEvent(id string) (Event, bool) {
	e, ok := v.state.events[id]
	if !ok {
		return Event{}, false
	}
	return cloneEvent(e), true
}

// FindAccommodationSetup retrieves a vendor setup by ID from the snapshot.
func (v transactionView) FindAccommodationSetup(id string) (AccommodationSetup, bool) {
	s, ok := v.state.setups[id]
	if !ok {
		return AccommodationSetup{}, false
	}
	return cloneSetup(s), true
}

// FindParticipant retrieves a participant by ID from the snapshot.
func (v transactionView) FindParticipant(id string) (Participant, bool) {
	p, ok := v.state.participants[id]
	if !ok {
		return Participant{}, false
	}
	return cloneParticipant(p), true
}

// FindRoomAssignment retrieves an assignment by ID from the snapshot.
func (v transactionView) FindRoomAssignment(id string) (RoomAssignment, bool) {
	a, ok := v.state.assignments[id]
	if !ok {
		return RoomAssignment{}, false
	}
	return cloneAssignment(a), true
}

// FindAllocation retrieves an allocation by ID from the snapshot.
func (v transactionView) FindAllocation(id string) (Allocation, bool) {
	a, ok := v.state.allocations[id]
	if !ok {
		return Allocation{}, false
	}
	return cloneAllocation(a), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindEvent retrieves an event from the transactional state.
func (tx *transaction) FindEvent(id string) (Event, bool) {
	e, ok := tx.state.events[id]
	if !ok {
		return Event{}, false
	}
	return cloneEvent(e), true
}

// FindAccommodationSetup retrieves a vendor setup from the transactional state.
func (tx *transaction) FindAccommodationSetup(id string) (AccommodationSetup, bool) {
	s, ok := tx.state.setups[id]
	if !ok {
		return AccommodationSetup{}, false
	}
	return cloneSetup(s), true
}

// FindParticipant retrieves a participant from the transactional state.
func (tx *transaction) FindParticipant(id string) (Participant, bool) {
	p, ok := tx.state.participants[id]
	if !ok {
		return Participant{}, false
	}
	return cloneParticipant(p), true
}

// FindRoomAssignment retrieves an assignment from the transactional state.
func (tx *transaction) FindRoomAssignment(id string) (RoomAssignment, bool) {
	a, ok := tx.state.assignments[id]
	if !ok {
		return RoomAssignment{}, false
	}
	return cloneAssignment(a), true
}

// FindAllocation retrieves an allocation from the transactional state.
func (tx *transaction) FindAllocation(id string) (Allocation, bool) {
	a, ok := tx.state.allocations[id]
	if !ok {
		return Allocation{}, false
	}
	return cloneAllocation(a), true
}

// CreateEvent stores a new event within the transaction.
func (tx *transaction) CreateEvent(e Event) (Event, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.events[e.ID]; exists {
		return Event{}, fmt.Errorf("event %q already exists", e.ID)
	}
	if !e.EndDate.After(e.StartDate) {
		return Event{}, errors.New("event end date must follow start date")
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.events[e.ID] = cloneEvent(e)
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionCreate, After: cloneEvent(e)})
	return cloneEvent(e), nil
}

// UpdateEvent mutates an event using the provided mutator function.
func (tx *transaction) UpdateEvent(id string, mutator func(*Event) error) (Event, error) {
	current, ok := tx.state.events[id]
	if !ok {
		return Event{}, fmt.Errorf("event %q not found", id)
	}
	before := cloneEvent(current)
	if err := mutator(&current); err != nil {
		return Event{}, err
	}
	if !current.EndDate.After(current.StartDate) {
		return Event{}, errors.New("event end date must follow start date")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.events[id] = cloneEvent(current)
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionUpdate, Before: before, After: cloneEvent(current)})
	return cloneEvent(current), nil
}

// DeleteEvent removes an event and refuses while dependents remain.
func (tx *transaction) DeleteEvent(id string) error {
	current, ok := tx.state.events[id]
	if !ok {
		return fmt.Errorf("event %q not found", id)
	}
	for _, a := range tx.state.allocations {
		if a.EventID == id && a.Status.Active() {
			return fmt.Errorf("event %q still has active allocations", id)
		}
	}
	delete(tx.state.events, id)
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionDelete, Before: cloneEvent(current)})
	return nil
}

// CreateAccommodationSetup stores a new vendor setup.
func (tx *transaction) CreateAccommodationSetup(s AccommodationSetup) (AccommodationSetup, error) {
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	if _, exists := tx.state.setups[s.ID]; exists {
		return AccommodationSetup{}, fmt.Errorf("accommodation setup %q already exists", s.ID)
	}
	if _, ok := tx.state.events[s.EventID]; !ok {
		return AccommodationSetup{}, fmt.Errorf("event %q not found", s.EventID)
	}
	if s.SingleContracted < 0 || s.DoubleContracted < 0 {
		return AccommodationSetup{}, errors.New("contracted room counts must not be negative")
	}
	// New contracts start with the full capacity available.
	s.SingleAvailable = s.SingleContracted
	s.DoubleAvailable = s.DoubleContracted
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.setups[s.ID] = cloneSetup(s)
	tx.recordChange(Change{Entity: domain.EntityAccommodationSetup, Action: domain.ActionCreate, After: cloneSetup(s)})
	return cloneSetup(s), nil
}

// UpdateAccommodationSetup mutates an existing vendor setup.
func (tx *transaction) UpdateAccommodationSetup(id string, mutator func(*AccommodationSetup) error) (AccommodationSetup, error) {
	current, ok := tx.state.setups[id]
	if !ok {
		return AccommodationSetup{}, fmt.Errorf("accommodation setup %q not found", id)
	}
	before := cloneSetup(current)
	if err := mutator(&current); err != nil {
		return AccommodationSetup{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.setups[id] = cloneSetup(current)
	tx.recordChange(Change{Entity: domain.EntityAccommodationSetup, Action: domain.ActionUpdate, Before: before, After: cloneSetup(current)})
	return cloneSetup(current), nil
}

// DeleteAccommodationSetup removes a vendor setup without live allocations.
func (tx *transaction) DeleteAccommodationSetup(id string) error {
	current, ok := tx.state.setups[id]
	if !ok {
		return fmt.Errorf("accommodation setup %q not found", id)
	}
	for _, a := range tx.state.allocations {
		if a.SetupID == id && a.Status.Active() {
			return fmt.Errorf("accommodation setup %q still has active allocations", id)
		}
	}
	delete(tx.state.setups, id)
	tx.recordChange(Change{Entity: domain.EntityAccommodationSetup, Action: domain.ActionDelete, Before: cloneSetup(current)})
	return nil
}

// CreateParticipant stores a new participant record.
func (tx *transaction) CreateParticipant(p Participant) (Participant, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.participants[p.ID]; exists {
		return Participant{}, fmt.Errorf("participant %q already exists", p.ID)
	}
	if _, ok := tx.state.events[p.EventID]; !ok {
		return Participant{}, fmt.Errorf("event %q not found", p.EventID)
	}
	if p.Status == "" {
		p.Status = domain.ParticipantPending
	}
	if p.Preference == "" {
		p.Preference = domain.TravellingDaily
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.participants[p.ID] = cloneParticipant(p)
	tx.recordChange(Change{Entity: domain.EntityParticipant, Action: domain.ActionCreate, After: cloneParticipant(p)})
	return cloneParticipant(p), nil
}

// UpdateParticipant mutates a participant using the provided mutator function.
func (tx *transaction) UpdateParticipant(id string, mutator func(*Participant) error) (Participant, error) {
	current, ok := tx.state.participants[id]
	if !ok {
		return Participant{}, fmt.Errorf("participant %q not found", id)
	}
	before := cloneParticipant(current)
	if err := mutator(&current); err != nil {
		return Participant{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.participants[id] = cloneParticipant(current)
	tx.recordChange(Change{Entity: domain.EntityParticipant, Action: domain.ActionUpdate, Before: before, After: cloneParticipant(current)})
	return cloneParticipant(current), nil
}

// DeleteParticipant removes a participant without an active allocation.
func (tx *transaction) DeleteParticipant(id string) error {
	current, ok := tx.state.participants[id]
	if !ok {
		return fmt.Errorf("participant %q not found", id)
	}
	for _, a := range tx.state.allocations {
		if a.ParticipantID == id && a.Status.Active() {
			return fmt.Errorf("participant %q still has an active allocation", id)
		}
	}
	delete(tx.state.participants, id)
	tx.recordChange(Change{Entity: domain.EntityParticipant, Action: domain.ActionDelete, Before: cloneParticipant(current)})
	return nil
}

// CreateRoomAssignment stores a new room assignment.
func (tx *transaction) CreateRoomAssignment(a RoomAssignment) (RoomAssignment, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.assignments[a.ID]; exists {
		return RoomAssignment{}, fmt.Errorf("room assignment %q already exists", a.ID)
	}
	if _, ok := tx.state.events[a.EventID]; !ok {
		return RoomAssignment{}, fmt.Errorf("event %q not found", a.EventID)
	}
	if _, ok := tx.state.setups[a.SetupID]; !ok {
		return RoomAssignment{}, fmt.Errorf("accommodation setup %q not found", a.SetupID)
	}
	for _, occupant := range a.OccupantIDs {
		if _, ok := tx.state.participants[occupant]; !ok {
			return RoomAssignment{}, fmt.Errorf("participant %q not found", occupant)
		}
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.assignments[a.ID] = cloneAssignment(a)
	tx.recordChange(Change{Entity: domain.EntityRoomAssignment, Action: domain.ActionCreate, After: cloneAssignment(a)})
	return cloneAssignment(a), nil
}

// UpdateRoomAssignment mutates an existing room assignment.
func (tx *transaction) UpdateRoomAssignment(id string, mutator func(*RoomAssignment) error) (RoomAssignment, error) {
	current, ok := tx.state.assignments[id]
	if !ok {
		return RoomAssignment{}, fmt.Errorf("room assignment %q not found", id)
	}
	before := cloneAssignment(current)
	if err := mutator(&current); err != nil {
		return RoomAssignment{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.assignments[id] = cloneAssignment(current)
	tx.recordChange(Change{Entity: domain.EntityRoomAssignment, Action: domain.ActionUpdate, Before: before, After: cloneAssignment(current)})
	return cloneAssignment(current), nil
}

// DeleteRoomAssignment removes a room assignment.
func (tx *transaction) DeleteRoomAssignment(id string) error {
	current, ok := tx.state.assignments[id]
	if !ok {
		return fmt.Errorf("room assignment %q not found", id)
	}
	for _, a := range tx.state.allocations {
		if a.AssignmentID == id && a.Status.Active() {
			return fmt.Errorf("room assignment %q still has active allocations", id)
		}
	}
	delete(tx.state.assignments, id)
	tx.recordChange(Change{Entity: domain.EntityRoomAssignment, Action: domain.ActionDelete, Before: cloneAssignment(current)})
	return nil
}

// CreateAllocation stores a new guest allocation.
func (tx *transaction) CreateAllocation(a Allocation) (Allocation, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.allocations[a.ID]; exists {
		return Allocation{}, fmt.Errorf("allocation %q already exists", a.ID)
	}
	if _, ok := tx.state.events[a.EventID]; !ok {
		return Allocation{}, fmt.Errorf("event %q not found", a.EventID)
	}
	if _, ok := tx.state.setups[a.SetupID]; !ok {
		return Allocation{}, fmt.Errorf("accommodation setup %q not found", a.SetupID)
	}
	if _, ok := tx.state.participants[a.ParticipantID]; !ok {
		return Allocation{}, fmt.Errorf("participant %q not found", a.ParticipantID)
	}
	if a.AssignmentID != "" {
		if _, ok := tx.state.assignments[a.AssignmentID]; !ok {
			return Allocation{}, fmt.Errorf("room assignment %q not found", a.AssignmentID)
		}
	}
	if a.Status == "" {
		a.Status = domain.AllocationBooked
	}
	if a.NumberOfGuests <= 0 {
		a.NumberOfGuests = 1
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.allocations[a.ID] = cloneAllocation(a)
	tx.recordChange(Change{Entity: domain.EntityAllocation, Action: domain.ActionCreate, After: cloneAllocation(a)})
	return cloneAllocation(a), nil
}

// UpdateAllocation mutates an existing allocation.
func (tx *transaction) UpdateAllocation(id string, mutator func(*Allocation) error) (Allocation, error) {
	current, ok := tx.state.allocations[id]
	if !ok {
		return Allocation{}, fmt.Errorf("allocation %q not found", id)
	}
	before := cloneAllocation(current)
	if err := mutator(&current); err != nil {
		return Allocation{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.allocations[id] = cloneAllocation(current)
	tx.recordChange(Change{Entity: domain.EntityAllocation, Action: domain.ActionUpdate, Before: before, After: cloneAllocation(current)})
	return cloneAllocation(current), nil
}

// DeleteAllocation removes an allocation from state.
func (tx *transaction) DeleteAllocation(id string) error {
	current, ok := tx.state.allocations[id]
	if !ok {
		return fmt.Errorf("allocation %q not found", id)
	}
	delete(tx.state.allocations, id)
	tx.recordChange(Change{Entity: domain.EntityAllocation, Action: domain.ActionDelete, Before: cloneAllocation(current)})
	return nil
}

// Read helpers ---------------------------------------------------------------

// GetEvent retrieves an event by ID from committed state.
func (s *Store) GetEvent(id string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.events[id]
	if !ok {
		return Event{}, false
	}
	return cloneEvent(e), true
}

// ListEvents returns all events from committed state.
func (s *Store) ListEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.state.events))
	for _, e := range s.state.events {
		out = append(out, cloneEvent(e))
	}
	return out
}

// GetAccommodationSetup retrieves a vendor setup by ID.
func (s *Store) GetAccommodationSetup(id string) (AccommodationSetup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setup, ok := s.state.setups[id]
	if !ok {
		return AccommodationSetup{}, false
	}
	return cloneSetup(setup), true
}

// ListAccommodationSetups returns all vendor setups.
func (s *Store) ListAccommodationSetups() []AccommodationSetup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AccommodationSetup, 0, len(s.state.setups))
	for _, setup := range s.state.setups {
		out = append(out, cloneSetup(setup))
	}
	return out
}

// GetParticipant retrieves a participant by ID.
func (s *Store) GetParticipant(id string) (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.participants[id]
	if !ok {
		return Participant{}, false
	}
	return cloneParticipant(p), true
}

// ListParticipants returns all participants.
func (s *Store) ListParticipants() []Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Participant, 0, len(s.state.participants))
	for _, p := range s.state.participants {
		out = append(out, cloneParticipant(p))
	}
	return out
}

// GetRoomAssignment retrieves a room assignment by ID.
func (s *Store) GetRoomAssignment(id string) (RoomAssignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.assignments[id]
	if !ok {
		return RoomAssignment{}, false
	}
	return cloneAssignment(a), true
}

// ListRoomAssignments returns all room assignments.
func (s *Store) ListRoomAssignments() []RoomAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomAssignment, 0, len(s.state.assignments))
	for _, a := range s.state.assignments {
		out = append(out, cloneAssignment(a))
	}
	return out
}

// GetAllocation retrieves an allocation by ID.
func (s *Store) GetAllocation(id string) (Allocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.allocations[id]
	if !ok {
		return Allocation{}, false
	}
	return cloneAllocation(a), true
}

// ListAllocations returns all allocations.
func (s *Store) ListAllocations() []Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Allocation, 0, len(s.state.allocations))
	for _, a := range s.state.allocations {
		out = append(out, cloneAllocation(a))
	}
	return out
}
