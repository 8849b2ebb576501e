package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ogurasousui/payroll-forensics/internal/adapters/grpc/handler"
	"github.com/ogurasousui/payroll-forensics/internal/platform/bootstrap"
	"github.com/ogurasousui/payroll-forensics/internal/platform/config"
	"github.com/ogurasousui/payroll-forensics/internal/platform/logging"
	"github.com/ogurasousui/payroll-forensics/internal/platform/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.New(ctx, cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("initialize audit service: %w", err)
	}
	defer app.Close()

	params, err := cfg.AuditParams()
	if err != nil {
		return err
	}

	auditHandler := handler.NewAuditHandler(app.Service, params, cfg.KindMappings(), logger)
	grpcServer := server.New(cfg.Server.ListenAddr, auditHandler, logger)

	logger.Info("starting audit server", zap.String("source", cfg.Source.Driver), zap.String("profile", string(params.Profile)))
	return grpcServer.Run(ctx)
}
