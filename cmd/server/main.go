// Package main provides the long-running service: scheduled re-analysis
// over the inventory store, websocket run notifications and an HTTP
// surface for health, status, metrics and the latest report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"retail-inventory-lab/internal/notify"
	"retail-inventory-lab/internal/observability"
	"retail-inventory-lab/internal/pipeline"
	"retail-inventory-lab/internal/storage"
	chstore "retail-inventory-lab/internal/storage/clickhouse"
	"retail-inventory-lab/internal/storage/memory"
	"retail-inventory-lab/internal/storage/migrations"
	pgstore "retail-inventory-lab/internal/storage/postgres"
)

// Server holds the components of the service.
type Server struct {
	inventoryStore storage.InventoryStore
	snapshotStore  storage.MetricSnapshotStore
	hub            *notify.Hub
	log            *logrus.Logger

	outputDir        string
	analysisInterval time.Duration

	mu              sync.Mutex
	started         time.Time
	lastRun         time.Time
	lastRunID       string
	analysisRuns    int
	analysisRunning bool
}

func main() {
	loadEnvFile()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage loaded with fixtures")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	analysisInterval := flag.Duration("analysis-interval", 1*time.Hour, "Re-analysis interval")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if !*useMemory && *postgresDSN == "" {
		log.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inventoryStore, snapshotStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		log.WithError(err).Fatal("create stores")
	}
	defer cleanup()

	server := &Server{
		inventoryStore:   inventoryStore,
		snapshotStore:    snapshotStore,
		hub:              notify.NewHub(log),
		log:              log,
		outputDir:        *outputDir,
		analysisInterval: *analysisInterval,
		started:          time.Now().UTC(),
	}

	go server.hub.Run()
	defer server.hub.Stop()

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("shutting down")
		cancel()
		select {
		case <-sigCh:
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("graceful shutdown timed out")
			os.Exit(1)
		case <-done:
		}
	}()

	go server.startHTTPServer(*addr)

	server.runScheduler(ctx)
	close(done)
	log.Info("shutdown complete")
}

// createStores picks the storage backends. Memory mode preloads the
// demonstration fixtures; database mode applies migrations on startup.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.InventoryStore, storage.MetricSnapshotStore, func(), error) {
	noop := func() {}

	if useMemory {
		inv := memory.NewInventoryStore()
		if err := pipeline.LoadFixtures(ctx, inv); err != nil {
			return nil, nil, noop, fmt.Errorf("load fixtures: %w", err)
		}
		return inv, memory.NewMetricSnapshotStore(), noop, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, noop, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, noop, fmt.Errorf("apply postgres migrations: %w", err)
	}
	inv := pgstore.NewInventoryStore(pool)

	if clickhouseDSN == "" {
		return inv, nil, func() { pool.Close() }, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, noop, fmt.Errorf("apply clickhouse migrations: %w", err)
	}
	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return inv, chstore.NewMetricSnapshotStore(conn), cleanup, nil
}

// runScheduler runs an analysis immediately and then on the interval
// until the context is cancelled.
func (s *Server) runScheduler(ctx context.Context) {
	s.log.WithField("interval", s.analysisInterval.String()).Info("starting analysis scheduler")

	s.runAnalysis(ctx)

	ticker := time.NewTicker(s.analysisInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAnalysis(ctx)
		}
	}
}

// runAnalysis executes one pass and broadcasts the result. Overlapping
// runs are skipped rather than queued.
func (s *Server) runAnalysis(ctx context.Context) {
	s.mu.Lock()
	if s.analysisRunning {
		s.mu.Unlock()
		s.log.Info("analysis already running, skipping")
		return
	}
	s.analysisRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.analysisRunning = false
		s.lastRun = time.Now().UTC()
		s.analysisRuns++
		s.mu.Unlock()
	}()

	runner := pipeline.NewRunner(s.inventoryStore, s.snapshotStore, s.outputDir).WithLogger(s.log)
	result, err := runner.Run(ctx)
	if err != nil {
		s.log.WithError(err).Error("analysis run failed")
		return
	}

	s.mu.Lock()
	s.lastRunID = result.RunID
	s.mu.Unlock()

	s.hub.Broadcast(notify.RunEvent{
		RunID:           result.RunID,
		GeneratedAt:     result.Report.GeneratedAt,
		TotalRecords:    result.TotalRecords,
		AnalyzedRecords: result.AnalyzedRecords,
		SlowMoving:      result.Report.SlowMovingCount,
		Overstocked:     result.Report.OverstockedCount,
		DeadStock:       result.Report.DeadStockCount,
		ErrorCount:      len(result.Errors) + len(result.Report.Errors),
	})
}

// startHTTPServer serves health, metrics, status, the websocket feed and
// the latest report.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/report", s.handleReport)

	s.log.WithField("addr", addr).Info("starting http server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.log.WithError(err).Error("http server")
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	LastRun         time.Time `json:"last_run,omitempty"`
	LastRunID       string    `json:"last_run_id,omitempty"`
	AnalysisRuns    int       `json:"analysis_runs"`
	AnalysisRunning bool      `json:"analysis_running"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.started).String(),
		LastRun:         s.lastRun,
		LastRunID:       s.lastRunID,
		AnalysisRuns:    s.analysisRuns,
		AnalysisRunning: s.analysisRunning,
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleReport serves the most recent markdown report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(s.outputDir, pipeline.ReportFileName))
	if err != nil {
		http.Error(w, "no report generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(data)
}

// loadEnvFile loads environment variables from .env if present. Existing
// variables win.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
