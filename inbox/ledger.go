// Package inbox implements the consumer-side deduplication ledger that makes
// message processing idempotent under at-least-once delivery.
package inbox

import "context"

// Ledger is the durable record of messages already consumed.
//
// Consumers check IsProcessed before applying side effects, and record the
// message with MarkProcessed after the side effect succeeded — ideally in
// the same transaction as the side effect itself, to close the window where
// a crash in between causes a double apply.
//
// All inbox mutations go through this narrow contract: no other component
// is permitted to write the deduplication table directly.
type Ledger interface {
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
}

// Process runs the provided side effect exactly when the addressed message
// has not been consumed yet, recording it in the Ledger afterwards.
//
// The returned boolean reports whether the side effect ran: false means the
// message was a duplicate and was skipped, which is a normal, expected
// outcome of at-least-once delivery, not an error.
func Process(ctx context.Context, ledger Ledger, messageID string, sideEffect func(ctx context.Context) error) (bool, error) {
	processed, err := ledger.IsProcessed(ctx, messageID)
	if err != nil {
		return false, err
	}

	if processed {
		return false, nil
	}

	if err := sideEffect(ctx); err != nil {
		return false, err
	}

	if err := ledger.MarkProcessed(ctx, messageID); err != nil {
		return false, err
	}

	return true, nil
}
