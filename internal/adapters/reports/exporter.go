// Package reports renders allocation rosters and billing summaries for an
// event and stores the artifacts in the configured blob store.
package reports

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"lodgecore/internal/blob"
	"lodgecore/internal/core"
)

// Kind selects which report a request renders.
type Kind string

const (
	// KindAllocationRoster lists every allocation with its occupant and room.
	KindAllocationRoster Kind = "allocation_roster"
	// KindBillingSummary totals lodging charges per allocation.
	KindBillingSummary Kind = "billing_summary"
)

// Format selects an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Status describes the lifecycle stage of a report request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures a stored report artifact.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks a report request and its resulting artifacts.
type Record struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	Kind        Kind       `json:"kind"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	return dup
}

// Request enqueues a report for the worker.
type Request struct {
	EventID     string
	Kind        Kind
	Formats     []Format
	RequestedBy string
	Reason      string
}

// AuditLogger records report audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for report runs.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	EventID    string         `json:"event_id"`
	Kind       Kind           `json:"kind"`
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Worker renders report requests asynchronously.
type Worker struct {
	service *core.Service
	store   blob.Store
	audit   AuditLogger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id      string
	request Request
}

// NewWorker constructs a report worker over the given service and blob
// store.
func NewWorker(service *core.Service, store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		service: service,
		store:   store,
		audit:   audit,
		queue:   make(chan task, 32),
		jobs:    make(map[string]*Record),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing report requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules a report run and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, req Request) (Record, error) {
	if strings.TrimSpace(req.EventID) == "" {
		return Record{}, fmt.Errorf("event id required")
	}
	switch req.Kind {
	case KindAllocationRoster, KindBillingSummary:
	default:
		return Record{}, fmt.Errorf("unknown report kind %s", req.Kind)
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, f := range formats {
		if f != FormatCSV && f != FormatJSON {
			return Record{}, fmt.Errorf("unsupported report format %s", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	id := newID()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		EventID:     req.EventID,
		Kind:        req.Kind,
		Formats:     uniq,
		Status:      StatusQueued,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, req.RequestedBy, req.EventID, req.Kind, StatusQueued, req.Reason, nil)

	select {
	case w.queue <- task{id: id, request: req}:
	default:
		// The record must not linger as permanently queued.
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return Record{}, fmt.Errorf("report queue full")
	}
	return queued, nil
}

// Get returns a snapshot of the report record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(t task) {
	w.setStatus(t.id, StatusRunning, "")

	header, rows, err := w.buildRows(t.request.EventID, t.request.Kind)
	if err != nil {
		w.fail(t.id, err.Error())
		return
	}

	record, ok := w.Get(t.id)
	if !ok {
		return
	}
	artifacts := make([]Artifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		payload, contentType, err := render(format, header, rows)
		if err != nil {
			w.fail(t.id, err.Error())
			return
		}
		key := fmt.Sprintf("reports/%s/%s-%s.%s", t.request.EventID, t.request.Kind, t.id, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"rows": strconv.Itoa(len(rows)), "kind": string(t.request.Kind)},
		})
		if err != nil {
			w.fail(t.id, fmt.Sprintf("store artifact failed: %v", err))
			return
		}
		artifacts = append(artifacts, Artifact{
			Key:         info.Key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			URL:         info.URL,
			CreatedAt:   info.LastModified,
		})
	}
	w.complete(t.id, artifacts)
}

// buildRows reads committed state through the service and flattens it into
// report rows.
func (w *Worker) buildRows(eventID string, kind Kind) ([]string, [][]string, error) {
	if _, ok := w.service.GetEvent(eventID); !ok {
		return nil, nil, fmt.Errorf("event %s not found", eventID)
	}
	allocations := w.service.ListEventAllocations(eventID)
	switch kind {
	case KindAllocationRoster:
		header := []string{"allocation_id", "participant", "email", "room_type", "assignment_id", "status", "check_in", "check_out", "board_type"}
		rows := make([][]string, 0, len(allocations))
		for _, a := range allocations {
			name, email := "", ""
			if p, ok := w.service.GetParticipant(a.ParticipantID); ok {
				name, email = p.FullName, p.Email
			}
			rows = append(rows, []string{
				a.ID, name, email, string(a.RoomType), a.AssignmentID, string(a.Status),
				a.CheckIn.Format("2006-01-02"), a.CheckOut.Format("2006-01-02"), string(a.BoardType),
			})
		}
		return header, rows, nil
	case KindBillingSummary:
		header := []string{"allocation_id", "participant", "room_type", "nights", "rate_per_day", "currency", "total"}
		rows := make([][]string, 0, len(allocations))
		for _, a := range allocations {
			if !a.Status.Active() && a.Status != core.AllocationCheckedOut {
				continue
			}
			name := ""
			if p, ok := w.service.GetParticipant(a.ParticipantID); ok {
				name = p.FullName
			}
			nights := lodgingNights(a.CheckIn, a.CheckOut)
			total := a.RatePerDay * float64(nights)
			rows = append(rows, []string{
				a.ID, name, string(a.RoomType), strconv.Itoa(nights),
				strconv.FormatFloat(a.RatePerDay, 'f', 2, 64), a.Currency,
				strconv.FormatFloat(total, 'f', 2, 64),
			})
		}
		return header, rows, nil
	default:
		return nil, nil, fmt.Errorf("unknown report kind %s", kind)
	}
}

// lodgingNights counts billable nights the hotel way: the number of dates
// slept over, regardless of check-in and check-out times.
func lodgingNights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	nights := int(out.Sub(in).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}

func render(format Format, header []string, rows [][]string) ([]byte, string, error) {
	switch format {
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(header); err != nil {
			return nil, "", err
		}
		for _, row := range rows {
			if err := writer.Write(row); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	case FormatJSON:
		objects := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			obj := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					obj[col] = row[i]
				}
			}
			objects = append(objects, obj)
		}
		payload, err := json.Marshal(objects)
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	default:
		return nil, "", fmt.Errorf("unsupported report format %s", format)
	}
}

func (w *Worker) setStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor, eventID string
	var kind Kind
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
		actor, eventID, kind = record.RequestedBy, record.EventID, record.Kind
	}
	w.mu.Unlock()
	var md map[string]any
	if message != "" {
		md = map[string]any{"note": message}
	}
	w.recordAudit(w.ctx, actor, eventID, kind, status, "", md)
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor, eventID string
	var kind Kind
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor, eventID, kind = record.RequestedBy, record.EventID, record.Kind
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, eventID, kind, StatusSucceeded, "", map[string]any{"artifacts": len(artifacts)})
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor, eventID string
	var kind Kind
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor, eventID, kind = record.RequestedBy, record.EventID, record.Kind
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, eventID, kind, StatusFailed, "", map[string]any{"error": reason})
}

func (w *Worker) recordAudit(ctx context.Context, actor, eventID string, kind Kind, status Status, reason string, md map[string]any) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     "report_export",
		Actor:      actor,
		EventID:    eventID,
		Kind:       kind,
		Status:     status,
		Reason:     reason,
		Metadata:   md,
		OccurredAt: time.Now().UTC(),
	})
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}

// MemoryAuditLog captures audit entries in-memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a defensive copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
