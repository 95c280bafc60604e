package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/dispatch-board/internal/board"
	"github.com/example/dispatch-board/internal/config"
	"github.com/example/dispatch-board/internal/grid"
	boardhttp "github.com/example/dispatch-board/internal/http"
	"github.com/example/dispatch-board/internal/logging"
	"github.com/example/dispatch-board/internal/metrics"
	"github.com/example/dispatch-board/internal/persistence/sqlite"
)

const shutdownTimeout = 10 * time.Second

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dispatchd",
	Short: "Dispatch board service",
	Long:  "dispatchd serves the multi-technician dispatch board: day views, drag and drop scheduling, and debounced persistence.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func run(ctx context.Context) error {
	logger := logging.New("dispatchd")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Errorf("configuration load failed: %v", err)
		return err
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Errorf("database open failed: %v", err)
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Errorf("database migration failed: %v", err)
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	sink, err := metrics.NewPromSink(registry)
	if err != nil {
		logger.Errorf("metrics registration failed: %v", err)
		return err
	}

	geometry, err := grid.New(cfg.Grid.StartHour, cfg.Grid.EndHour)
	if err != nil {
		logger.Errorf("grid configuration invalid: %v", err)
		return err
	}

	b, err := board.New(board.Options{
		Store:           newScheduleStore(sqlite.NewEntryRepository(store)),
		Technicians:     &technicianDirectory{directory: sqlite.NewTechnicianRepository(store)},
		WorkItems:       &workItemCatalog{catalog: sqlite.NewWorkItemRepository(store)},
		Geometry:        geometry,
		Quantum:         cfg.Grid.Quantum,
		DefaultDuration: cfg.Grid.DefaultDuration,
		DebounceWindow:  cfg.DebounceWindow,
		Metrics:         sink,
		Logger:          logging.New("board"),
	})
	if err != nil {
		logger.Errorf("board setup failed: %v", err)
		return err
	}
	defer b.Close()

	if err := b.SelectDay(ctx, time.Now()); err != nil {
		// The board serves an empty day until a reload succeeds.
		logger.Warnf("initial day load failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", boardhttp.NewRouter(boardhttp.RouterConfig{
		Board:      boardhttp.NewBoardHandler(b, logging.New("http")),
		Middleware: []func(http.Handler) http.Handler{boardhttp.RequestLogger(logging.New("http"))},
	}))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server stopped: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown failed: %v", err)
		return err
	}
	return nil
}
