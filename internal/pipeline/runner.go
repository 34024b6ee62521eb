// Package pipeline runs the end-to-end analysis: load analyzable records,
// derive metrics, persist snapshots, render and write the report files.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"retail-inventory-lab/internal/analytics"
	"retail-inventory-lab/internal/observability"
	"retail-inventory-lab/internal/reporting"
	"retail-inventory-lab/internal/storage"
)

// Output file names written into the output directory. The strategic
// recommendations file name is timestamped per run.
const (
	ReportFileName              = "REPORT.md"
	CategoryPerformanceFileName = "category_performance.csv"
	RegionalPerformanceFileName = "regional_performance.csv"
	SeasonalPerformanceFileName = "seasonal_performance.csv"
)

// Runner orchestrates one analysis pass over the inventory store.
type Runner struct {
	inventoryStore storage.InventoryStore
	snapshotStore  storage.MetricSnapshotStore // optional, nil skips persistence
	reportGen      *reporting.Generator
	outputDir      string
	clock          func() time.Time
	runID          string // empty means derive from clock
	log            logrus.FieldLogger
}

// NewRunner creates a runner writing report files into outputDir.
func NewRunner(inventoryStore storage.InventoryStore, snapshotStore storage.MetricSnapshotStore, outputDir string) *Runner {
	return &Runner{
		inventoryStore: inventoryStore,
		snapshotStore:  snapshotStore,
		reportGen:      reporting.NewGenerator(),
		outputDir:      outputDir,
		clock:          func() time.Time { return time.Now().UTC() },
		log:            logrus.StandardLogger(),
	}
}

// WithClock sets a custom clock function for deterministic output.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	r.reportGen = r.reportGen.WithClock(clock)
	return r
}

// WithRunID overrides the clock-derived run identifier.
func (r *Runner) WithRunID(runID string) *Runner {
	r.runID = runID
	return r
}

// WithLogger sets the logger.
func (r *Runner) WithLogger(log logrus.FieldLogger) *Runner {
	r.log = log
	return r
}

// RunResult summarizes one completed analysis pass.
type RunResult struct {
	RunID           string
	TotalRecords    int
	AnalyzedRecords int
	SnapshotsStored int
	Report          *reporting.Report
	FilesWritten    []string

	// Non-fatal step errors: snapshot persistence and per-file write
	// failures land here instead of aborting the run.
	Errors []string
}

// Run executes the full pass. It fails only when the inventory store is
// unreadable or the table has no analyzable rows; downstream steps are
// isolated and collect their errors into the result and the report.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	started := r.clock()
	runID := r.runID
	if runID == "" {
		runID = "run_" + started.Format("20060102_150405")
	}
	log := r.log.WithField("run_id", runID)

	total, err := r.inventoryStore.Count(ctx)
	if err != nil {
		observability.RecordAnalysisRun("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("count records: %w", err)
	}

	records, err := r.inventoryStore.GetAnalyzable(ctx)
	if err != nil {
		observability.RecordAnalysisRun("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("load analyzable records: %w", err)
	}
	if len(records) == 0 {
		observability.RecordAnalysisRun("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("no analyzable records (total stored: %d)", total)
	}
	log.WithFields(logrus.Fields{
		"total":      total,
		"analyzable": len(records),
	}).Info("loaded inventory records")

	res := analytics.Analyze(records)
	for _, stepErr := range res.Errors {
		log.WithField("step_error", stepErr).Warn("analysis step failed")
		observability.DefaultMetrics.StepErrors.Inc()
	}

	result := &RunResult{
		RunID:           runID,
		TotalRecords:    total,
		AnalyzedRecords: len(res.Rows),
	}

	if r.snapshotStore != nil {
		snapshots := BuildSnapshots(res, runID, started)
		if err := r.snapshotStore.InsertBulk(ctx, snapshots); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist snapshots: %v", err))
			log.WithError(err).Warn("snapshot persistence failed")
		} else {
			result.SnapshotsStored = len(snapshots)
			observability.DefaultMetrics.SnapshotsStored.Add(float64(len(snapshots)))
		}
	}

	report := r.reportGen.Generate(res, runID, total)
	report.Errors = append(report.Errors, result.Errors...)
	result.Report = report

	if res.Segments != nil {
		observability.RecordSegmentCounts(
			len(res.Segments.SlowMoving),
			len(res.Segments.Overstocked),
			len(res.Segments.DeadStock))
	}

	files, writeErrs := r.writeOutputs(report, res)
	result.FilesWritten = files
	result.Errors = append(result.Errors, writeErrs...)

	observability.DefaultMetrics.AnalyzedRecords.Set(float64(len(res.Rows)))
	observability.DefaultMetrics.ReportsGenerated.Inc()
	observability.DefaultMetrics.LastSuccessfulAnalysis.Set(float64(r.clock().Unix()))
	observability.RecordAnalysisRun("success", time.Since(started).Seconds())

	log.WithFields(logrus.Fields{
		"analyzed":  result.AnalyzedRecords,
		"snapshots": result.SnapshotsStored,
		"files":     len(result.FilesWritten),
		"errors":    len(result.Errors),
	}).Info("analysis run completed")

	return result, nil
}

// writeOutputs writes the markdown report, the strategic recommendations
// text file and the summary CSV exports. Each file is independent; a
// failed write is recorded and the rest still go out.
func (r *Runner) writeOutputs(report *reporting.Report, res *analytics.Result) (files, errs []string) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, []string{fmt.Sprintf("create output dir: %v", err)}
	}

	write := func(name, content string) {
		path := filepath.Join(r.outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			errs = append(errs, fmt.Sprintf("write %s: %v", name, err))
			return
		}
		files = append(files, path)
	}

	write(ReportFileName, reporting.RenderMarkdown(report))
	write(reporting.RecommendationsFileName(report.GeneratedAt), reporting.RenderRecommendations(report))

	if res.CategoryPerformance != nil {
		write(CategoryPerformanceFileName, reporting.RenderTableCSV(res.CategoryPerformance))
	}
	if res.RegionalPerformance != nil {
		write(RegionalPerformanceFileName, reporting.RenderTableCSV(res.RegionalPerformance))
	}
	if res.SeasonalByCategory != nil {
		write(SeasonalPerformanceFileName, reporting.RenderTableCSV(res.SeasonalByCategory))
	}

	return files, errs
}
