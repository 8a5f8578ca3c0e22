package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	applicantmetrics "ppdb/internal/applicant/metrics"
	applicantmodels "ppdb/internal/applicant/models"
	applicantservice "ppdb/internal/applicant/service"
	identitymodels "ppdb/internal/identity/models"
	identityservice "ppdb/internal/identity/service"
	"ppdb/internal/identity/store/lockout"
	"ppdb/internal/jwttoken"
	"ppdb/internal/platform/config"
	"ppdb/internal/platform/httpserver"
	"ppdb/internal/platform/kafka"
	"ppdb/internal/platform/logger"
	"ppdb/internal/platform/metrics"
	platformredis "ppdb/internal/platform/redis"
	"ppdb/internal/storage"
	httptransport "ppdb/internal/transport/http"
	id "ppdb/pkg/domain"
	"ppdb/pkg/platform/audit"
	"ppdb/pkg/platform/audit/relay"
	auditmemory "ppdb/pkg/platform/audit/store/memory"
	auditpostgres "ppdb/pkg/platform/audit/store/postgres"
	auditworker "ppdb/pkg/platform/audit/worker"
	"ppdb/pkg/platform/sentinel"
	"ppdb/pkg/secrets"
)

const (
	requestTimeout = 30 * time.Second
	auditInboxSize = 256
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		stores     applicantservice.Stores
		auditStore audit.Store
		db         *sql.DB
	)
	if cfg.Database.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		stores = applicantservice.Stores{
			Identities: storage.NewPostgresIdentities(db),
			Profiles:   storage.NewPostgresProfiles(db),
			Scores:     storage.NewPostgresScores(db),
			Documents:  storage.NewPostgresDocuments(db),
			History:    storage.NewPostgresHistory(db),
			Settings:   storage.NewPostgresSettings(db),
			Tx:         storage.NewPostgresTxRunner(db),
		}
		auditStore = auditpostgres.New(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		mem := storage.NewMemory(applicantmodels.Settings{
			Year: cfg.Admission.Year,
			Wave: cfg.Admission.Wave,
		})
		stores = applicantservice.Stores{
			Identities: mem.Identities(),
			Profiles:   mem.Profiles(),
			Scores:     mem.Scores(),
			Documents:  mem.Documents(),
			History:    mem.History(),
			Settings:   mem.Settings(),
			Tx:         mem,
		}
		auditStore = auditmemory.New()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var lockouts lockout.Store
	if redisClient != nil {
		defer redisClient.Close()
		lockouts = lockout.NewRedis(redisClient.Client)
	} else {
		log.Warn("no redis configured, login lockout state is in-process only")
		lockouts = lockout.NewInMemory()
	}

	inbox := make(chan audit.Event, auditInboxSize)
	publisher := audit.NewPublisher(auditStore,
		audit.WithLogger(log),
		audit.WithInbox(inbox),
	)
	worker := auditworker.NewWorker(auditStore, inbox, log)

	var auditRelay *relay.Relay
	if db != nil && len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		auditRelay = relay.New(db, producer, log)
	}

	tokens := jwttoken.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)

	identitySvc := identityservice.New(stores.Identities, lockouts, tokens,
		identityservice.WithLogger(log),
		identityservice.WithAudit(publisher),
		identityservice.WithLockoutPolicy(cfg.Auth.MaxLoginAttempts, cfg.Auth.FailureWindow, cfg.Auth.LockoutDuration),
	)
	applicantSvc := applicantservice.New(stores,
		applicantservice.WithLogger(log),
		applicantservice.WithAudit(publisher),
		applicantservice.WithMetrics(applicantmetrics.New()),
	)

	if err := bootstrapAdmin(ctx, cfg.Auth, stores.Identities, log); err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        metrics.New(),
		Tokens:         tokens,
		Auth:           httptransport.NewAuthHandler(applicantSvc, identitySvc, log),
		Applicant:      httptransport.NewApplicantHandler(applicantSvc, log),
		Admin:          httptransport.NewAdminHandler(applicantSvc, log),
		RequestTimeout: requestTimeout,
		Readiness:      readiness(db, redisClient),
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	if auditRelay != nil {
		g.Go(func() error {
			return auditRelay.Run(ctx)
		})
	}
	g.Go(func() error {
		log.Info("starting ppdb server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// bootstrapAdmin ensures the configured staff account exists. Re-running
// against an existing account is a no-op.
func bootstrapAdmin(ctx context.Context, cfg config.Auth, identities storage.IdentityStore, log *slog.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	hash, err := secrets.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin, err := identitymodels.NewAdminIdentity(id.NewIdentityID(), cfg.AdminUsername, hash, time.Now())
	if err != nil {
		return err
	}
	if err := identities.CreateIfUsernameAvailable(ctx, admin); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil
		}
		return err
	}
	log.Info("bootstrap admin account created", "username", cfg.AdminUsername)
	return nil
}

func readiness(db *sql.DB, redisClient *platformredis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
