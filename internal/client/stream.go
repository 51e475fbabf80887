package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"spectrum/internal/api"
	"spectrum/internal/progress"
)

// ErrStreamStalled reports that the server stopped delivering events within
// the per-chunk timeout.
var ErrStreamStalled = errors.New("conversion stream stalled")

// ConvertStream runs a batch and invokes handler once per delivered event.
// Progress events whose (src, dst) result pair was already seen are dropped
// before reaching the handler, so a replayed chunk never double-counts.
// A handler error stops reading and cancels the stream.
func (c *Client) ConvertStream(ctx context.Context, req api.ConvertRequest, handler func(progress.Event) error) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, c.baseURL+"/api/convert/stream", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}

	// The watchdog cancels the request when no chunk arrives in time. The
	// body read then fails and the stall surfaces as ErrStreamStalled.
	var stalled atomic.Bool
	watchdog := time.AfterFunc(c.chunkTimeout, func() {
		stalled.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	seen := make(map[string]struct{})
	reader := bufio.NewReader(resp.Body)
	var eventName, eventData string

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			if stalled.Load() {
				return fmt.Errorf("%w: no event within %s", ErrStreamStalled, c.chunkTimeout)
			}
			if errors.Is(readErr, context.Canceled) && ctx.Err() != nil {
				return ctx.Err()
			}
			// EOF after a delivered terminal event is normal end of stream.
			return nil
		}
		watchdog.Reset(c.chunkTimeout)

		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			eventData = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if eventName == "" {
				continue
			}
			event, decodeErr := decodeEvent(eventName, eventData)
			eventName, eventData = "", ""
			if decodeErr != nil {
				return decodeErr
			}
			if duplicate(event, seen) {
				continue
			}
			if err := handler(event); err != nil {
				return err
			}
			if event.Kind == progress.KindComplete || event.Kind == progress.KindError {
				return nil
			}
		}
	}
}

func decodeEvent(name, data string) (progress.Event, error) {
	var event progress.Event
	if data != "" {
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return progress.Event{}, fmt.Errorf("decode %s event: %w", name, err)
		}
	}
	event.Kind = progress.Kind(name)
	return event, nil
}

// duplicate records the result pair carried by a progress event and reports
// whether it was already applied.
func duplicate(event progress.Event, seen map[string]struct{}) bool {
	if event.Kind != progress.KindProgress || event.Result == nil {
		return false
	}
	key := event.Result.SourcePath + "\x00" + event.Result.OutputPath
	if _, ok := seen[key]; ok {
		return true
	}
	seen[key] = struct{}{}
	return false
}
