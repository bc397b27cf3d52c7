package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/config"
	"storefront-service/internal/logging"
	"storefront-service/internal/mail"
	"storefront-service/internal/session"
	"storefront-service/internal/store"
)

// closer releases a resource during shutdown.
type closer struct {
	name  string
	close func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("starting service", zap.String("app_env", cfg.AppEnv), zap.String("log_level", cfg.LogLevel))

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Fatal("failed to initialize database connection", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLife)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("database connection established")
	dbStore := store.NewPostgresStore(db)
	closers := []closer{{name: "database", close: dbStore.Close}}

	// --- Sessions ---
	sessionStore, sessionClosers, err := setupSessionStore(cfg.Session, logger)
	if err != nil {
		logger.Fatal("failed to set up session store", zap.Error(err))
	}
	closers = append(closers, sessionClosers...)

	// --- Outbound mail ---
	mailer, mailClosers, err := setupMailer(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to set up mail transport", zap.Error(err))
	}
	closers = append(closers, mailClosers...)

	// --- Initialize API Handlers ---
	catalogService := catalog.NewService(dbStore, dbStore, dbStore, catalog.Limits{
		Default:       cfg.Catalog.DefaultLimit,
		Max:           cfg.Catalog.MaxLimit,
		PrivilegedMax: cfg.Catalog.PrivilegedMax,
	})
	httpAPIHandler := api.NewHTTPHandler(api.Deps{
		Catalog: catalogService,
		Sessions: session.NewManager(sessionStore, session.Options{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		}, logger),
		Checkout: checkout.NewDispatcher(mailer, checkout.Config{
			EmailSubject: cfg.Checkout.EmailSubject,
			LinkBaseURL:  cfg.Checkout.LinkBaseURL,
		}),
		Tokens:       auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Logger:       logger,
		ExposeErrors: cfg.IsDevelopment(),
	})

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, cfg, logger)
	api.RegisterHealthCheck(httpRouter, dbStore, logger)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		logger.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer, healthServer := api.NewGRPCServer(logger)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal("gRPC server Serve error", zap.Error(err))
		}
		logger.Info("gRPC server has stopped")
	}()
	api.SetServing(healthServer, true)

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, healthServer, closers, shutdownComplete)

	<-shutdownComplete
	logger.Info("service shutdown sequence finished")
}

func setupBaseMiddleware(router *chi.Mux, cfg *config.Config, logger *zap.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(api.CORS(cfg.CORS.AllowedOrigins))
	logger.Info("base HTTP middleware registered")
}

func setupSessionStore(cfg config.SessionConfig, logger *zap.Logger) (session.Store, []closer, error) {
	if cfg.Backend == "memory" {
		logger.Warn("using in-process session store; carts are lost on restart")
		return session.NewMemoryStore(), nil, nil
	}
	pool, err := radix.NewPool("tcp", cfg.RedisAddr, cfg.RedisPoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("redis session store ready", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(pool), []closer{{name: "redis pool", close: pool.Close}}, nil
}

func setupMailer(cfg config.MailConfig, logger *zap.Logger) (mail.Sender, []closer, error) {
	switch cfg.Transport {
	case "smtp":
		logger.Info("sending checkout mail over SMTP", zap.String("host", cfg.SMTPHost))
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		}), nil, nil
	case "log":
		logger.Warn("checkout mail is only logged")
		return mail.NewLogSender(logger), nil, nil
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}
	sender, ch, err := mail.NewQueueSender(conn, cfg.Queue)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info("publishing checkout mail to queue", zap.String("queue", cfg.Queue))
	return sender, []closer{
		{name: "amqp channel", close: ch.Close},
		{name: "amqp connection", close: conn.Close},
	}, nil
}

func waitForShutdown(
	logger *zap.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	healthServer *health.Server,
	closers []closer,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info("received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	api.SetServing(healthServer, false)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	logger.Info("attempting to gracefully shut down gRPC server")
	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	logger.Info("attempting to gracefully shut down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logger.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		grpcServer.Stop()
	}

	// Outbound mail and sessions go before the database.
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			logger.Warn("error closing resource", zap.String("resource", closers[i].name), zap.Error(err))
		}
	}

	logger.Info("graceful shutdown sequence completed")
}
