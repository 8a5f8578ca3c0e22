// Package service orchestrates the applicant aggregate: registration, form
// updates, the status transition engine, and the admin read paths.
package service

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	applicantmetrics "ppdb/internal/applicant/metrics"
	"ppdb/internal/storage"
	audit "ppdb/pkg/platform/audit"
)

// Stores bundles the persistence ports the service needs. All of them must
// share the same backend so RunInTx covers every write.
type Stores struct {
	Identities storage.IdentityStore
	Profiles   storage.ProfileStore
	Scores     storage.ScoresStore
	Documents  storage.DocumentsStore
	History    storage.HistoryStore
	Settings   storage.SettingsStore
	Tx         storage.TxRunner
}

// Service holds the applicant business logic.
type Service struct {
	stores  Stores
	audit   *audit.Publisher
	metrics *applicantmetrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAudit wires the audit publisher. Registration and status changes are
// emitted fail-closed inside the transaction; form updates are queued.
func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *applicantmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(stores Stores, opts ...Option) *Service {
	s := &Service{
		stores: stores,
		logger: slog.Default(),
		tracer: otel.Tracer("ppdb/internal/applicant"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
