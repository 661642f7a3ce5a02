package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/config"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "Config file (.yaml, .yml or .toml)")
	port := flag.String("port", "", "gRPC port (overrides GRPC_PORT)")
	httpPort := flag.String("http-port", "", "HTTP gateway port (overrides HTTP_PORT)")
	logLevel := flag.String("log-level", "", "Log level (overrides LOG_LEVEL)")
	policy := flag.String("reply-policy", "", "sentinel or status (overrides ENGINE_REPLY_POLICY)")
	noHTTP := flag.Bool("no-http", false, "Disable the HTTP gateway")
	flag.Parse()

	// Used until the configured logger exists.
	boot := logging.NewDefault()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		boot.Fatal("Failed to load config", zap.String("path", *configPath), zap.Error(err))
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *httpPort != "" {
		cfg.Server.HTTPPort = *httpPort
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *policy != "" {
		cfg.Engine.ReplyPolicy = *policy
	}
	if *noHTTP {
		cfg.Server.HTTPEnabled = false
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		boot.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	_ = srv.Close()
	if runErr != nil {
		boot.Error("Server error", zap.Error(runErr))
		boot.Sync()
		os.Exit(1)
	}
}
