package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	grpcctx "github.com/dtroode/userkeeper-server/internal/api/grpc/context"
	grpcrouter "github.com/dtroode/userkeeper-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/userkeeper-server/internal/api/grpc/server"
	httprouter "github.com/dtroode/userkeeper-server/internal/api/http/router"
	httpserver "github.com/dtroode/userkeeper-server/internal/api/http/server"
	"github.com/dtroode/userkeeper-server/internal/config"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
	"github.com/dtroode/userkeeper-server/internal/repository/postgres"
	"github.com/dtroode/userkeeper-server/internal/repository/sqlite"
	"github.com/dtroode/userkeeper-server/internal/server"
	"github.com/dtroode/userkeeper-server/internal/service"
	storage "github.com/dtroode/userkeeper-server/internal/storage/minio"
	"github.com/dtroode/userkeeper-server/internal/telemetry"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	logAppVersion()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName, buildVersion)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	userStore, healthChecker, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err, "driver", cfg.Database.Driver)
	}
	defer closeStore()

	var archive model.Storage
	if cfg.Storage.Enabled {
		archiveClient, err := storage.Connect(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize archive storage", "error", err)
		}
		archive = archiveClient
	}

	userService := service.NewUser(userStore, archive, logger)

	grpcSrv := grpcserver.NewGRPCServer(
		grpcrouter.New(userService, grpcctx.NewManager(), logger).Register(),
		fmt.Sprintf(":%s", cfg.GRPC.Port),
	)
	httpSrv := httpserver.NewHTTPServer(
		httprouter.New(userService, healthChecker, logger).Register(),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
		cfg.HTTP.ReadHeaderTimeout,
	)

	if err := run(ctx, logger, []serverWithListener{
		{grpcSrv, server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)},
		{httpSrv, server.NewPlainListener()},
	}); err != nil {
		logger.Error("server exited with error", "error", err)
	}
	logger.Info("shutdown complete")
}

type serverWithListener struct {
	server        model.Server
	securityLayer model.SecurityLayer
}

// run starts every server and stops all of them once ctx is done or any of
// them fails.
func run(ctx context.Context, logger *logger.Logger, servers []serverWithListener) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		s := s
		g.Go(func() error {
			logger.Info("Starting server on", "address", s.server.Address())
			if err := s.server.Start(s.securityLayer); err != nil {
				return fmt.Errorf("server on %s: %w", s.server.Address(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.server.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.server.Address())
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.UserStore, model.HealthChecker, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Database.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() { _ = store.Close() }, nil
	default:
		db, err := postgres.NewConection(ctx, cfg.Database.DSN, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewUserRepository(db), db, func() { _ = db.Close() }, nil
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
