// Package llm adapts upstream model providers to a single streaming
// completion interface.
package llm

// DeltaEvent is one incremental fragment of model output text. Ordering
// within a response is significant: clients concatenate deltas in arrival
// order to reconstruct the full text.
type DeltaEvent struct {
	ItemID       string `json:"item_id"`
	OutputIndex  int64  `json:"output_index"`
	ContentIndex int64  `json:"content_index"`
	Delta        string `json:"delta"`
}

// Stream is a lazy, single-pass, forward-only sequence of text deltas.
// Control and metadata events from the upstream are filtered out before they
// reach the consumer. A stream is not restartable; a fresh completion call
// is required to re-fetch.
//
// The usage pattern follows the provider SDKs:
//
//	for stream.Next() {
//		ev := stream.Current()
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
type Stream interface {
	// Next advances to the next text delta, reporting false at end of
	// stream or on error.
	Next() bool

	// Current returns the delta positioned by the last successful Next.
	Current() DeltaEvent

	// Err returns the error that terminated iteration, if any.
	Err() error

	// Close releases the underlying connection. It is safe to call after
	// iteration has finished.
	Close() error
}
