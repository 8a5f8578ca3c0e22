package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "ppdb/pkg/platform/audit"
	txcontext "ppdb/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and published to Kafka by the relay;
// Kafka is the source of truth for audit events. When the caller's context
// carries an open transaction, the outbox write commits or rolls back with
// the business write.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for deserialization by the consumer.
type outboxPayload struct {
	ID          string `json:"ID"`
	Category    string `json:"Category"`
	Action      string `json:"Action"`
	Timestamp   string `json:"Timestamp"`
	ApplicantID string `json:"ApplicantID,omitempty"`
	Actor       string `json:"Actor,omitempty"`
	FromStatus  string `json:"FromStatus,omitempty"`
	ToStatus    string `json:"ToStatus,omitempty"`
	Catatan     string `json:"Catatan,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
	UserAgent   string `json:"UserAgent,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:         eventID.String(),
		Category:   string(event.Action.Category()),
		Action:     string(event.Action),
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		Actor:      event.Actor,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Catatan:    event.Catatan,
		RequestID:  event.RequestID,
		UserAgent:  event.UserAgent,
	}
	if !event.ApplicantID.IsNil() {
		payload.ApplicantID = event.ApplicantID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.ApplicantID.IsNil() {
		aggregateType = "applicant"
		aggregateID = event.ApplicantID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		aggregateType,
		aggregateID,
		string(event.Action),
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}
