// Package progress turns an engine outcome stream into the ordered event
// protocol callers consume incrementally: exactly one start event, one
// progress event per completed job with cumulative counters, and exactly one
// terminal event. Counters are owned by the batch that produced them, never
// shared across batches.
package progress

import (
	"context"

	"spectrum/internal/convert"
)

// Kind enumerates the event types in emission order.
type Kind string

const (
	KindStart    Kind = "start"
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Event is one element of the progress protocol. For progress events the
// counters are cumulative and always satisfy
// Processed == Successful + Failed + Skipped.
type Event struct {
	Kind       Kind             `json:"type"`
	Total      int              `json:"total"`
	Processed  int              `json:"processed"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Result     *convert.Outcome `json:"result,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// eventBuffer bounds in-flight events. A slow consumer therefore holds the
// worker pool back through the unbuffered outcome channel instead of letting
// results queue without limit on very large batches.
const eventBuffer = 8

// tally is the per-batch counter state. One tally exists per Stream call;
// nothing here is ambient or shared.
type tally struct {
	total      int
	processed  int
	successful int
	failed     int
	skipped    int
}

func (t *tally) apply(outcome convert.Outcome) {
	t.processed++
	switch {
	case outcome.Skipped:
		t.skipped++
	case outcome.Success:
		t.successful++
	default:
		t.failed++
	}
}

func (t *tally) event(kind Kind, result *convert.Outcome) Event {
	return Event{
		Kind:       kind,
		Total:      t.total,
		Processed:  t.processed,
		Successful: t.successful,
		Failed:     t.failed,
		Skipped:    t.skipped,
		Result:     result,
	}
}

// Stream wraps outcomes into the event protocol. The returned channel closes
// after the terminal event. If ctx is canceled the terminal complete event
// still reflects the counts accumulated up to cancellation, because the
// engine closes the outcome channel once in-flight jobs finish.
func Stream(ctx context.Context, total int, outcomes <-chan convert.Outcome) <-chan Event {
	events := make(chan Event, eventBuffer)

	go func() {
		defer close(events)
		counters := &tally{total: total}

		if !emit(ctx, events, counters.event(KindStart, nil)) {
			return
		}
		for outcome := range outcomes {
			outcome := outcome
			counters.apply(outcome)
			if !emit(ctx, events, counters.event(KindProgress, &outcome)) {
				return
			}
		}
		emit(ctx, events, counters.event(KindComplete, nil))
	}()

	return events
}

// ErrorEvent builds the terminal event for a batch that could not start.
func ErrorEvent(message string) Event {
	return Event{Kind: KindError, Message: message}
}

func emit(ctx context.Context, events chan<- Event, event Event) bool {
	// Prefer the send so a consumer still draining after cancellation sees
	// the terminal event with the partial counts.
	select {
	case events <- event:
		return true
	default:
	}
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
