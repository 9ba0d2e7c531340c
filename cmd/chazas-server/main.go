package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"chazas/backend/internal/config"
	"chazas/backend/internal/service/availability"
	"chazas/backend/internal/store/postgres"
	"chazas/backend/internal/store/redis"
	grpcTransport "chazas/backend/internal/transport/grpc"
)

const (
	serviceName    = "chazas-server"
	connectTimeout = 15 * time.Second
)

func main() {
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = newLogger(parseLogLevel(cfg.LogLevel))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Error("server exited", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(slog.String("service", serviceName))
}

// stores holds the connections the service runs on; close releases them in
// reverse order of opening.
type stores struct {
	db  *bun.DB
	rdb *goredis.Client
}

func openStores(ctx context.Context, log *slog.Logger, cfg config.Config) (*stores, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	dbArgs := databaseLogArgs(cfg.DatabaseURL)
	log.Info("connecting to database", dbArgs...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Error("database connection failed", append([]any{slog.Any("err", err)}, dbArgs...)...)
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Info("connecting to redis", slog.String("redis_addr", cfg.RedisAddr), slog.Int("redis_db", cfg.RedisDB))
	rdb, err := redis.Open(ctx, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		_ = postgres.Close(db)
		return nil, fmt.Errorf("open redis %s: %w", cfg.RedisAddr, err)
	}

	return &stores{db: db, rdb: rdb}, nil
}

func (s *stores) close(log *slog.Logger) {
	if err := s.rdb.Close(); err != nil {
		log.Warn("redis close failed", slog.Any("err", err))
	}
	if err := postgres.Close(s.db); err != nil {
		log.Warn("database close failed", slog.Any("err", err))
	}
}

func run(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	addr := cfg.GRPCAddr()
	log.Info(
		"starting",
		slog.String("grpc_addr", addr),
		slog.String("log_level", cfg.LogLevel),
		slog.Int("grid_open", cfg.GridBounds.MinHour),
		slog.Int("grid_close", cfg.GridBounds.MaxHour),
		slog.Duration("draft_ttl", cfg.DraftTTL),
	)

	st, err := openStores(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer st.close(log)

	svc := availability.NewService(
		postgres.NewScheduleRepo(st.db),
		redis.NewDraftStore(st.rdb),
		availability.Options{
			Bounds:       cfg.GridBounds,
			DraftTTL:     cfg.DraftTTL,
			MatchWorkers: cfg.MatchWorkers,
		},
	)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		withDefaultDeadline(cfg.GRPCRequestTimeout),
		logCalls(log),
	))
	grpcTransport.RegisterAvailabilityServiceServer(srv, grpcTransport.NewAvailabilityServer(svc, log))

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(lis)
	}()
	log.Info("grpc server started", slog.String("grpc_addr", addr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		stopServer(log, srv, cfg.ShutdownTimeout)
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("grpc serve: %w", err)
	}
}

// withDefaultDeadline bounds calls that arrive without a client deadline.
func withDefaultDeadline(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return handler(ctx, req)
	}
}

func logCalls(log *slog.Logger) grpc.UnaryServerInterceptor {
	log = log.With(slog.String("component", "grpc.server"))
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug(
			"rpc finished",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return resp, err
	}
}

func stopServer(log *slog.Logger, srv *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		srv.GracefulStop()
	}()

	select {
	case <-stopped:
		log.Info("grpc server stopped")
	case <-time.After(timeout):
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		srv.Stop()
		<-stopped
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// databaseLogArgs describes the database target without credentials.
func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	orDefault := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return []any{
		slog.String("db_host", orDefault(u.Hostname(), "unknown")),
		slog.String("db_port", orDefault(u.Port(), "default")),
		slog.String("db_name", orDefault(strings.TrimPrefix(u.Path, "/"), "unknown")),
	}
}
