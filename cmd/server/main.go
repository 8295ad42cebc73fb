package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountrepo "todo-api/internal/account/repository"
	"todo-api/internal/audit"
	auditrepo "todo-api/internal/audit/repository"
	"todo-api/internal/config"
	"todo-api/internal/db"
	identityservice "todo-api/internal/identity/service"
	"todo-api/internal/policy/engine"
	"todo-api/internal/security"
	"todo-api/internal/server"
	"todo-api/internal/server/middleware"
	sessionrepo "todo-api/internal/session/repository"
	sessionservice "todo-api/internal/session/service"
	"todo-api/internal/telemetry"
	telemetryotel "todo-api/internal/telemetry/otel"
	"todo-api/internal/telemetry/producer"
	todorepo "todo-api/internal/todo/repository"
	listrepo "todo-api/internal/todolist/repository"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if err := cfg.RequireSigningKey(); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer conn.Close()

	tokens, err := security.NewTokenCodec([]byte(cfg.JWTSigningKey), cfg.TokenTTL())
	if err != nil {
		return err
	}
	policy, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		return err
	}

	var emitters []telemetry.EventEmitter
	var providers *telemetryotel.Providers
	if cfg.OTelEndpoint != "" {
		providers, err = telemetryotel.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelService, cfg.OTelInsecure)
		if err != nil {
			return err
		}
		providers.SetGlobal()
		emitters = append(emitters, telemetryotel.NewEventEmitter(providers.LoggerProvider))
		log.Info("opentelemetry enabled", slog.String("endpoint", cfg.OTelEndpoint))
	}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Info("telemetry kafka producer enabled", slog.String("topic", cfg.TelemetryKafkaTopic))
	}
	emitter := telemetry.Fanout(emitters...)

	authn := sessionservice.NewAuthenticator(tokens, sessionrepo.NewPostgresRepository(conn), log)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.GetClientIP, log)
	authSvc := identityservice.NewAuthService(
		accountrepo.NewPostgresRepository(conn),
		security.NewHasher(cfg.BcryptCost),
		tokens,
		authn,
		auditLogger,
		log,
	)

	handler := server.NewRouter(server.Deps{
		Authenticator: authn,
		Auth:          authSvc,
		Lists:         listrepo.NewPostgresRepository(conn),
		Items:         todorepo.NewPostgresRepository(conn),
		Policy:        policy,
		Pinger:        conn,
		AuditLogger:   auditLogger,
		Emitter:       emitter,
		Log:           log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", slog.Any("error", err))
	}

	// Let in-flight async emits finish before closing their sinks.
	if d := telemetry.DrainDuration(emitter); d > 0 {
		time.Sleep(d)
	}
	if err := kafkaProducer.Close(); err != nil {
		log.Warn("kafka producer close", slog.Any("error", err))
	}
	if providers != nil {
		otelCtx, otelCancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout())
		defer otelCancel()
		if err := providers.Shutdown(otelCtx); err != nil {
			log.Warn("otel shutdown", slog.Any("error", err))
		}
	}
	log.Info("http server stopped")
	return nil
}
