package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lemonberrylabs/miro/pkg/api"
	grpcapi "github.com/lemonberrylabs/miro/pkg/api/grpc"
	"github.com/lemonberrylabs/miro/web"
)

// defaultScope holds the variables of the configuration file.
const defaultScope = "default"

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and gRPC evaluation APIs and the web UI",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env MIRO_PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env MIRO_GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env MIRO_HOST)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, engine, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Server.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.Server.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort)

	if len(cfg.Variables) > 0 {
		if _, err := engine.CreateScope(cmd.Context(), defaultScope, cfg.Variables); err != nil {
			return fmt.Errorf("config variables: %w", err)
		}
	}

	server := api.New(engine, log)
	web.New(engine).Register(server.App())

	grpcServer := grpcapi.New(engine, log)
	go func() {
		log.Info("gRPC server listening", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(grpcAddr); err != nil {
			log.Fatal("gRPC server error", zap.Error(err))
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Error("error during shutdown", zap.Error(err))
		}
	}()

	log.Info("miro listening", zap.String("addr", addr), zap.Int("variables", len(cfg.Variables)))
	return server.Listen(addr)
}
