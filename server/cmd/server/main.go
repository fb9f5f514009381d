package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/obsidianstack/pokedex/server/internal/api"
	"github.com/obsidianstack/pokedex/server/internal/config"
	"github.com/obsidianstack/pokedex/server/internal/metrics"
	"github.com/obsidianstack/pokedex/server/internal/rpc"
	"github.com/obsidianstack/pokedex/server/internal/store"
	"github.com/obsidianstack/pokedex/server/internal/telemetry"
	"github.com/obsidianstack/pokedex/server/internal/ws"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}

// run starts the HTTP server and its background loops and blocks until ctx
// is cancelled or one of them fails.
func run(ctx context.Context, configPath string) error {
	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		return err
	}
	srv := cfg.Server
	level.Set(srv.Level())

	slog.Info("pokedex-server starting",
		"config", configPath,
		"addr", srv.Addr(),
		"seed", srv.Seed,
		"grpc", srv.GRPC.Enabled,
		"stream", srv.Stream.Enabled,
		"metrics", srv.Metrics.Enabled,
		"tracing", srv.Tracing.Endpoint != "",
	)

	shutdownTracing, err := telemetry.Setup(ctx, srv.Tracing)
	if err != nil {
		slog.Error("failed to set up tracing", "err", err)
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing shutdown", "err", err)
		}
	}()

	st := store.New()
	if srv.Seed {
		st.Seed(store.DefaultSeed()...)
		slog.Info("store seeded", "records", st.Count())
	}

	pages := config.NewLivePagination(srv.Pagination)
	opts := []api.Option{api.WithLivePagination(pages)}
	var m *metrics.Metrics
	if srv.Metrics.Enabled {
		m = metrics.New(st)
		opts = append(opts, api.WithMetrics(m))
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.New(st, opts...))
	if m != nil {
		mux.Handle("GET "+srv.Metrics.Path, m.Handler())
	}

	// Bind before any goroutine starts.
	var grpcLis net.Listener
	if srv.GRPC.Enabled {
		grpcLis, err = net.Listen("tcp", srv.GRPCAddr())
		if err != nil {
			slog.Error("failed to listen on gRPC port", "addr", srv.GRPCAddr(), "err", err)
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if srv.Stream.Enabled {
		hub := ws.New(st, srv.Stream.Interval, pages)
		m.TrackStreamClients(hub)
		mux.Handle("GET /ws/stream", hub)
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
	}

	if configPath != "" {
		w := config.NewWatcher(configPath, cfg, func(prev, next *config.Config) {
			applyReload(&level, pages, prev, next)
		})
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	if grpcLis != nil {
		grpcSrv := rpc.New(st, pages, m)
		g.Go(func() error {
			slog.Info("gRPC server listening", "addr", srv.GRPCAddr())
			if err := grpcSrv.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	httpSrv := &http.Server{
		Addr:    srv.Addr(),
		Handler: mux,
	}
	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", srv.Addr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("pokedex-server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("pokedex-server stopped", "err", err)
		return err
	}
	return nil
}

// applyReload applies the live-reloadable parts of next.
func applyReload(level *slog.LevelVar, pages *config.LivePagination, prev, next *config.Config) {
	if l := next.Server.Level(); l != level.Level() {
		level.Set(l)
		slog.Info("log level changed", "level", l.String())
	}
	if p := next.Server.Pagination; p != prev.Server.Pagination {
		pages.Store(p)
		slog.Info("pagination changed", "default_limit", p.DefaultLimit, "max_limit", p.MaxLimit)
	}
}
