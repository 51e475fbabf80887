package progress

import (
	"context"
	"testing"
	"time"

	"spectrum/internal/convert"
)

func feedOutcomes(outcomes ...convert.Outcome) <-chan convert.Outcome {
	ch := make(chan convert.Outcome, len(outcomes))
	for _, outcome := range outcomes {
		ch <- outcome
	}
	close(ch)
	return ch
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return all
			}
			all = append(all, event)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d so far", len(all))
		}
	}
}

func TestStreamProtocolShape(t *testing.T) {
	outcomes := feedOutcomes(
		convert.Outcome{SourcePath: "/in/a.arw", Success: true},
		convert.Outcome{SourcePath: "/in/b.arw", Success: true, Skipped: true},
		convert.Outcome{SourcePath: "/in/c.arw", ErrorMessage: "decode failed"},
	)
	events := collect(t, Stream(context.Background(), 3, outcomes))

	if len(events) != 5 {
		t.Fatalf("expected start + 3 progress + complete, got %d events", len(events))
	}
	if events[0].Kind != KindStart || events[0].Total != 3 {
		t.Fatalf("unexpected start event: %+v", events[0])
	}
	last := events[len(events)-1]
	if last.Kind != KindComplete {
		t.Fatalf("expected terminal complete, got %q", last.Kind)
	}
	if last.Successful != 1 || last.Skipped != 1 || last.Failed != 1 || last.Processed != 3 {
		t.Fatalf("unexpected final counters: %+v", last)
	}
}

func TestStreamCountersMonotonic(t *testing.T) {
	outcomes := feedOutcomes(
		convert.Outcome{SourcePath: "/in/a.arw", Success: true},
		convert.Outcome{SourcePath: "/in/b.arw", ErrorMessage: "boom"},
		convert.Outcome{SourcePath: "/in/c.arw", Success: true, Skipped: true},
		convert.Outcome{SourcePath: "/in/d.arw", Success: true},
	)
	events := collect(t, Stream(context.Background(), 4, outcomes))

	prev := -1
	for _, event := range events {
		if event.Kind != KindProgress {
			continue
		}
		if event.Processed <= prev {
			t.Fatalf("processed counter did not advance: %+v", event)
		}
		if event.Processed != event.Successful+event.Failed+event.Skipped {
			t.Fatalf("counter invariant violated: %+v", event)
		}
		if event.Result == nil {
			t.Fatalf("progress event missing result: %+v", event)
		}
		prev = event.Processed
	}
	if prev != 4 {
		t.Fatalf("expected final progress processed=4, got %d", prev)
	}
}

func TestStreamEmptyBatch(t *testing.T) {
	events := collect(t, Stream(context.Background(), 0, feedOutcomes()))
	if len(events) != 2 {
		t.Fatalf("expected start and complete only, got %d events", len(events))
	}
	if events[0].Kind != KindStart || events[1].Kind != KindComplete {
		t.Fatalf("unexpected event kinds: %q %q", events[0].Kind, events[1].Kind)
	}
}

func TestStreamResultsCarryIdentity(t *testing.T) {
	outcomes := feedOutcomes(convert.Outcome{
		SourcePath: "/in/a.arw",
		OutputPath: "/in/converted/a.jpg",
		Success:    true,
		SizeBytes:  1024,
	})
	events := collect(t, Stream(context.Background(), 1, outcomes))

	var progressed *Event
	for i := range events {
		if events[i].Kind == KindProgress {
			progressed = &events[i]
		}
	}
	if progressed == nil || progressed.Result == nil {
		t.Fatal("no progress event with result")
	}
	if progressed.Result.SourcePath != "/in/a.arw" {
		t.Fatalf("unexpected result identity: %+v", progressed.Result)
	}
	if progressed.Result.OutputPath != "/in/converted/a.jpg" {
		t.Fatalf("unexpected output path: %+v", progressed.Result)
	}
}

func TestStreamPartialCompleteAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	outcomes := make(chan convert.Outcome)
	events := Stream(ctx, 3, outcomes)

	if event := <-events; event.Kind != KindStart {
		t.Fatalf("expected start, got %q", event.Kind)
	}
	outcomes <- convert.Outcome{SourcePath: "/in/a.arw", Success: true}
	if event := <-events; event.Kind != KindProgress || event.Processed != 1 {
		t.Fatalf("unexpected progress event: %+v", event)
	}

	cancel()
	close(outcomes)

	final := collect(t, events)
	if len(final) != 1 || final[0].Kind != KindComplete {
		t.Fatalf("expected single terminal complete, got %+v", final)
	}
	if final[0].Processed != 1 || final[0].Successful != 1 {
		t.Fatalf("terminal event should carry partial counts: %+v", final[0])
	}
}

func TestErrorEvent(t *testing.T) {
	event := ErrorEvent("cannot create output directory")
	if event.Kind != KindError {
		t.Fatalf("unexpected kind %q", event.Kind)
	}
	if event.Message != "cannot create output directory" {
		t.Fatalf("unexpected message %q", event.Message)
	}
}
