// This file implements a generic, batched loader that walks pre-parsed rows
// and invokes a provided bulk-insert function (CopyFn) per batch. Backends
// implement CopyFn using their most efficient primitive (Postgres COPY,
// SQLite transactional multi-insert).
//
// Loading is strictly sequential: batches are flushed one after another on
// the calling goroutine. A progress line is logged every progressEvery
// batches with running totals and instantaneous rows/sec.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultBatchSize is the fact-table batch size when none is configured.
const DefaultBatchSize = 1000

// progressEvery controls how often a progress line is emitted, in batches.
const progressEvery = 5

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to the columns order) and return the number of
// rows inserted by that call.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches groups rows into batches of batchSize and calls copyFn for each
// non-empty batch in order. It returns the total number of rows reported by
// copyFn and the first error encountered.
//
// On a batch error the loader stops immediately: the failing batch's pending
// writes are rolled back by the backend, while batches committed earlier in
// the run remain committed. The fact load is therefore best-effort partial
// rather than all-or-nothing.
func LoadBatches(
	ctx context.Context,
	log *slog.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("warehouse: batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("warehouse: copyFn must not be nil")
	}

	var (
		total   int64
		batches int64
		start   = time.Now()
		lastTS  = start
		last    int64
	)

	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[off:end]

		n, err := copyFn(ctx, columns, batch)
		total += n
		if err != nil {
			log.Error("batch insert failed", "batch", batches+1, "total_inserted", total, "err", err)
			return total, err
		}
		batches++

		if batches%progressEvery == 0 {
			now := time.Now()
			sinceLast := now.Sub(lastTS)
			rps := float64(0)
			if sinceLast > 0 {
				rps = float64(total-last) / sinceLast.Seconds()
			}
			log.Info("load progress",
				"rows", total,
				"of", len(rows),
				"batches", batches,
				"rps", int64(rps),
				"elapsed", now.Sub(start).Truncate(time.Millisecond),
			)
			lastTS = now
			last = total
		}
	}

	return total, nil
}
