// Package relay moves committed outbox entries to Kafka. It is the second
// half of the transactional outbox: the business transaction writes the
// entry, the relay publishes it and marks it done.
package relay

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sink is where relayed entries go. Satisfied by the kafka producer.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Relay struct {
	db        *sql.DB
	sink      Sink
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// Option configures the Relay.
type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batchSize = n }
}

func New(db *sql.DB, sink Sink, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		db:        db,
		sink:      sink,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until the context is cancelled. Publish failures leave the entry
// unpublished; it is retried on the next tick, so consumers must tolerate
// duplicates.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil {
				r.logger.Error("outbox relay pass failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          uuid.UUID
	aggregateID string
	payload     []byte
}

// drainOnce publishes one batch. SKIP LOCKED lets multiple relay instances
// share the table without double-publishing within a pass.
func (r *Relay) drainOnce(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin relay tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, r.batchSize)
	if err != nil {
		return fmt.Errorf("select outbox batch: %w", err)
	}

	var batch []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read outbox batch: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	for _, row := range batch {
		if err := r.sink.Publish(ctx, row.aggregateID, row.payload); err != nil {
			return fmt.Errorf("publish outbox entry %s: %w", row.id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE outbox SET published_at = NOW() WHERE id = $1`, row.id,
		); err != nil {
			return fmt.Errorf("mark outbox entry %s: %w", row.id, err)
		}
	}
	return tx.Commit()
}
