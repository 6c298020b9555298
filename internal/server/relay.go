package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/akarsten/demodash-go/internal/llm"
)

// relayBufferSize bounds the producer/consumer channel. A small buffer
// absorbs upstream bursts without letting an absent client hold the upstream
// connection open indefinitely.
const relayBufferSize = 16

// streamErrorMessage is the in-band terminal error payload. The real error
// is logged, never sent: headers are already committed when a mid-stream
// failure occurs and upstream detail must not leak to the client.
const streamErrorMessage = "Stream processing error"

// writeFlusher is the downstream half of a relay: the response body plus
// incremental flushing. gin.ResponseWriter and httptest recorders satisfy it.
type writeFlusher interface {
	io.Writer
	http.Flusher
}

// relay re-frames a delta stream as server-sent events on w, flushing after
// every frame so tokens reach the client as they arrive.
//
// A producer goroutine pulls from the upstream stream into a bounded channel
// and the calling goroutine performs the transport writes; cancellation in
// either direction propagates through the channel and the derived context.
// Deltas are forwarded strictly in upstream arrival order and never
// coalesced. On a mid-stream upstream failure exactly one terminal
// {"error": ...} frame is written and the stream ends cleanly; the upstream
// stream is always closed exactly once. Returns the number of deltas and
// payload bytes relayed.
func relay(ctx context.Context, w writeFlusher, stream llm.Stream, logger *slog.Logger) (deltas, bytes int64) {
	ctx, cancel := context.WithCancel(ctx)

	events := make(chan llm.DeltaEvent, relayBufferSize)
	errc := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(events)
		for stream.Next() {
			select {
			case events <- stream.Current():
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			errc <- err
		}
	}()

	defer func() {
		// Unblock the producer, wait for it to stop touching the stream,
		// then release the upstream connection. This is the single close.
		cancel()
		<-done
		if err := stream.Close(); err != nil {
			logger.Debug("close upstream stream", "error", err)
		}
	}()

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			logger.Error("marshal delta event", "error", err)
			writeErrorFrame(w)
			return deltas, bytes
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// The client went away; stop relaying and let the deferred
			// cleanup cancel the upstream fetch.
			logger.Debug("client write failed", "error", err)
			return deltas, bytes
		}
		w.Flush()
		deltas++
		bytes += int64(len(event.Delta))
	}

	select {
	case err := <-errc:
		logger.Warn("upstream stream failed mid-iteration", "error", err)
		writeErrorFrame(w)
	default:
	}
	return deltas, bytes
}

// writeErrorFrame emits the terminal in-band error event. Clients parse it
// instead of seeing a broken transport.
func writeErrorFrame(w writeFlusher) {
	payload, _ := json.Marshal(map[string]string{"error": streamErrorMessage})
	fmt.Fprintf(w, "data: %s\n\n", payload)
	w.Flush()
}
