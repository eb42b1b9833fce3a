// Command lodgecorectl drives the allocation engine against the configured
// storage backend. Storage and blob backends are selected via LODGECORE_*
// environment variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"lodgecore/internal/adapters/reports"
	"lodgecore/internal/blob"
	"lodgecore/internal/core"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() error {
	fmt.Fprintln(os.Stderr, `usage: lodgecorectl <command> [flags]

commands:
  capacity  -event <id>                      print room counters for an event
  book      -event <id>                      book all confirmed participants
  release   -event <id> -participant <id>    release one participant
  refresh   -event <id>                      clear and re-book the event
  report    -event <id> -kind <kind>         export a report to the blob store`)
	return fmt.Errorf("missing or unknown command")
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return err
	}
	svc := core.NewService(store, core.WithLogger(slogAdapter{slog.Default()}))
	ctx := context.Background()

	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	eventID := fs.String("event", "", "event id")
	participantID := fs.String("participant", "", "participant id")
	kind := fs.String("kind", string(reports.KindAllocationRoster), "report kind")

	switch args[0] {
	case "capacity":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		summary, err := svc.EventCapacity(ctx, *eventID)
		if err != nil {
			return err
		}
		return printJSON(summary)
	case "book":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		summary, _, err := svc.BookAllConfirmed(ctx, *eventID)
		if err != nil {
			return err
		}
		return printJSON(summary)
	case "release":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := svc.ReleaseParticipant(ctx, *eventID, *participantID); err != nil {
			return err
		}
		return nil
	case "refresh":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		summary, _, err := svc.RefreshEvent(ctx, *eventID)
		if err != nil {
			return err
		}
		return printJSON(summary)
	case "report":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		store, err := blob.Open(ctx)
		if err != nil {
			return err
		}
		worker := reports.NewWorker(svc, store, nil)
		worker.Start()
		defer func() { _ = worker.Stop(ctx) }()
		record, err := worker.Enqueue(ctx, reports.Request{
			EventID:     *eventID,
			Kind:        reports.Kind(*kind),
			RequestedBy: "lodgecorectl",
		})
		if err != nil {
			return err
		}
		record = waitForReport(worker, record.ID)
		return printJSON(record)
	default:
		return usage()
	}
}

func waitForReport(worker *reports.Worker, id string) reports.Record {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		record, ok := worker.Get(id)
		if !ok {
			break
		}
		if record.Status == reports.StatusSucceeded || record.Status == reports.StatusFailed {
			return record
		}
		time.Sleep(50 * time.Millisecond)
	}
	record, _ := worker.Get(id)
	return record
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// slogAdapter bridges the service logger interface onto log/slog.
type slogAdapter struct{ l *slog.Logger }

func (a slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
