package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bububa/uxcrew/server"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file, $UXCREW_CONFIG when empty")
	envFile := fs.String("env", "", ".env file, ./.env when empty")
	addr := fs.String("addr", "", "listen address, overrides the config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, *configPath, *envFile)
	if err != nil {
		return err
	}
	defer a.Close()
	if *addr != "" {
		a.cfg.Addr = *addr
	}

	runCtx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()
	handler := server.New(a.pipeline,
		server.WithRegistry(server.NewRegistry(a.cfg.MaxRuns)),
		server.WithExtractor(a.extractor),
		server.WithMetrics(a.collector.Handler()),
		server.WithStatus(server.Status{
			Provider:   a.cfg.Provider.Name,
			Model:      a.cfg.Provider.Model,
			Credential: a.cfg.HasCredential(),
		}),
		server.WithLogger(a.logger),
		server.WithLimits(a.cfg.MaxUploadBytes, a.cfg.MaxImageDimension),
		server.WithRunContext(runCtx),
	)
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("dashboard listening", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("server stopped", "runs", handler.Registry().Len())
	return nil
}
