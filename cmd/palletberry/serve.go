package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockberries/palletberry/config"
	palletgrpc "github.com/blockberries/palletberry/grpc"
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/metrics"
	"github.com/blockberries/palletberry/runtime"
	"github.com/blockberries/palletberry/server"
	"github.com/blockberries/palletberry/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the runtime over gRPC",
	Long: `Load the configuration, apply genesis and serve the runtime over gRPC.

The server runs until interrupted (Ctrl+C) or it receives a termination signal.

Example:
  palletberry serve --config config.toml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer closeLog()

	logger.Info("Starting Palletberry runtime",
		logging.ChainID(cfg.Chain.ChainID),
		"version", Version,
	)

	var m metrics.Metrics = metrics.NewNopMetrics()
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		pm := metrics.NewPrometheusMetrics(cfg.Metrics.Namespace)
		m = pm
		mux := http.NewServeMux()
		mux.Handle("/metrics", pm.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logging.Error(err))
			}
		}()
		logger.Info("Serving metrics", logging.Address(cfg.Metrics.ListenAddr))
	}

	app := runtime.NewApp(runtime.WithLogger(logger))
	srv := server.New(app,
		server.WithLogger(logger),
		server.WithMetrics(m),
	)

	genesis := cfg.GenesisDoc()
	resp, err := srv.Handshake(cmd.Context(), types.HandshakeRequest{Genesis: &genesis})
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	logger.Info("Genesis applied",
		logging.BlockNumber(uint64(resp.BlockNumber)),
		logging.Hash(resp.StateHash[:]),
	)

	lis, err := net.Listen("tcp", cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.ListenAddr, err)
	}

	gs := palletgrpc.NewGRPCServerFrom(srv, logger).NewServer()
	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.Serve(lis)
	}()

	logger.Info("Runtime serving", logging.Address(lis.Addr().String()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		logger.Error("gRPC server stopped", logging.Error(serveErr))
	}

	timeout := cfg.Server.ShutdownTimeout.Duration()
	stopped := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		logger.Warn("Graceful stop timed out, forcing", logging.Duration(timeout))
		gs.Stop()
	}

	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Error stopping metrics server", logging.Error(err))
		}
	}

	if err := srv.Close(); err != nil {
		return fmt.Errorf("closing server: %w", err)
	}

	logger.Info("Runtime stopped")
	return serveErr
}

// createLogger builds the process logger from the logging section.
// Any output other than stdout or stderr names a file that is opened
// for appending; the returned func closes it.
func createLogger(cfg config.LoggingConfig) (*logging.Logger, func() error, error) {
	level := logging.ParseLevel(strings.ToLower(cfg.Level))

	var w io.Writer
	closer := func() error { return nil }
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closer = f.Close
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return logging.NewJSONLogger(w, level), closer, nil
	default:
		return logging.NewTextLogger(w, level), closer, nil
	}
}
