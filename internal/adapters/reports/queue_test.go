package reports

import (
	"context"
	"testing"
)

func TestEnqueueQueueFullDropsRecord(t *testing.T) {
	// The worker is never started, so every accepted request stays queued.
	w := NewWorker(nil, nil, nil)
	ctx := context.Background()
	req := Request{EventID: "evt-1", Kind: KindAllocationRoster, Formats: []Format{FormatJSON}}

	accepted := 0
	for i := 0; i < cap(w.queue); i++ {
		if _, err := w.Enqueue(ctx, req); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
		accepted++
	}
	if _, err := w.Enqueue(ctx, req); err == nil {
		t.Fatalf("expected queue full error")
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.jobs) != accepted {
		t.Fatalf("jobs = %d, want %d; rejected requests must not leave records behind", len(w.jobs), accepted)
	}
	for _, record := range w.jobs {
		if record.Status != StatusQueued {
			t.Fatalf("retained record has status %s", record.Status)
		}
	}
}
