package usecase

import (
	"context"
	"sync"
	"time"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
	"ecotrack/pkg/metrics"
)

var scannerLog = logger.WithComponent("overdue_scanner")

// ScannerStatus is the last known state of the overdue scanner.
type ScannerStatus struct {
	Running       bool       `json:"running"`
	Interval      string     `json:"interval"`
	LastRunAt     *time.Time `json:"lastRunAt,omitempty"`
	LastReverted  int        `json:"lastReverted"`
	LastFailed    int        `json:"lastFailed"`
	TotalRuns     int64      `json:"totalRuns"`
	TotalReverted int64      `json:"totalReverted"`
	TotalFailed   int64      `json:"totalFailed"`
	LastError     string     `json:"lastError,omitempty"`
}

// ScanResult summarizes a single sweep.
type ScanResult struct {
	Reverted []string
	Failed   []string
}

// OverdueScannerUseCase periodically returns taken reports whose deadline has
// passed to the pending pool.
type OverdueScannerUseCase struct {
	reportRepo repository.ReportRepository
	lifecycle  *ReportLifecycleUseCase
	events     EventPublisher
	interval   time.Duration
	batchSize  int
	now        func() time.Time

	mu     sync.Mutex
	status ScannerStatus
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOverdueScannerUseCase(
	reportRepo repository.ReportRepository,
	lifecycle *ReportLifecycleUseCase,
	events EventPublisher,
	interval time.Duration,
	batchSize int,
) *OverdueScannerUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &OverdueScannerUseCase{
		reportRepo: reportRepo,
		lifecycle:  lifecycle,
		events:     events,
		interval:   interval,
		batchSize:  batchSize,
		now:        time.Now,
		status:     ScannerStatus{Interval: interval.String()},
	}
}

// ProcessOverdue runs one sweep. Each report is reverted independently; a
// failure is logged and the sweep moves on.
func (uc *OverdueScannerUseCase) ProcessOverdue(ctx context.Context) (*ScanResult, error) {
	started := time.Now()
	now := uc.now()
	result := &ScanResult{}
	skipped := make(map[string]bool)

	for {
		limit := uc.batchSize + len(skipped)
		reports, err := uc.reportRepo.ListOverdue(ctx, now, limit)
		if err != nil {
			uc.finish(started, now, result, err)
			return result, err
		}

		for _, report := range reports {
			if skipped[report.ID] {
				continue
			}
			if ctx.Err() != nil {
				uc.finish(started, now, result, ctx.Err())
				return result, ctx.Err()
			}

			if err := uc.revertOne(ctx, report.ID, now); err != nil {
				scannerLog.WithFields(logger.Fields{
					"report_id": report.ID,
					"code":      errors.CodeOf(err),
				}).Errorf("Failed to revert overdue report: %v", err)
				result.Failed = append(result.Failed, report.ID)
				skipped[report.ID] = true
				continue
			}
			result.Reverted = append(result.Reverted, report.ID)
		}

		// Failed reports stay overdue, so the page grows by one per failure.
		// A short page means everything overdue at now has been seen.
		if len(reports) < limit {
			break
		}
	}

	uc.finish(started, now, result, nil)
	logger.Info("Overdue scan finished: %d reverted, %d failed", len(result.Reverted), len(result.Failed))
	return result, nil
}

func (uc *OverdueScannerUseCase) revertOne(ctx context.Context, reportID string, now time.Time) error {
	report, previous, dueDate, err := uc.lifecycle.revert(ctx, reportID, now)
	if err != nil {
		return err
	}

	scannerLog.WithFields(logger.Fields{
		"report_id":         report.ID,
		"previous_assignee": previous,
	}).Info("Report reverted to pending after missed deadline")

	uc.events.Publish(ctx, entity.DomainEvent{
		Type:             entity.EventReportOverdue,
		Report:           report.Clone(),
		PreviousAssignee: previous,
		PreviousDueDate:  dueDate,
		OccurredAt:       now,
	})
	return nil
}

// finish records a sweep, including one cut short by an error.
func (uc *OverdueScannerUseCase) finish(started, now time.Time, result *ScanResult, err error) {
	metrics.RecordScannerRun(len(result.Reverted), len(result.Failed), time.Since(started))
	uc.recordRun(now, result, err)
}

func (uc *OverdueScannerUseCase) recordRun(at time.Time, result *ScanResult, err error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	runAt := at
	uc.status.LastRunAt = &runAt
	uc.status.LastReverted = len(result.Reverted)
	uc.status.LastFailed = len(result.Failed)
	uc.status.TotalRuns++
	uc.status.TotalReverted += int64(len(result.Reverted))
	uc.status.TotalFailed += int64(len(result.Failed))
	uc.status.LastError = ""
	if err != nil {
		uc.status.LastError = err.Error()
	}
}

// StartOverdueJob sweeps once immediately and then on every interval until
// ctx is cancelled or Stop is called.
func (uc *OverdueScannerUseCase) StartOverdueJob(ctx context.Context) {
	uc.mu.Lock()
	if uc.cancel != nil {
		uc.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	uc.cancel = cancel
	uc.done = make(chan struct{})
	uc.status.Running = true
	done := uc.done
	uc.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(uc.interval)
		defer ticker.Stop()

		if _, err := uc.ProcessOverdue(ctx); err != nil {
			logger.Error("Overdue scan error: %v", err)
		}

		for {
			select {
			case <-ticker.C:
				if _, err := uc.ProcessOverdue(ctx); err != nil {
					logger.Error("Overdue scan error: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Overdue scanner started (checking every %s)", uc.interval)
}

// Stop ends the background job and waits for an in-flight sweep to return.
func (uc *OverdueScannerUseCase) Stop() {
	uc.mu.Lock()
	cancel, done := uc.cancel, uc.done
	uc.cancel = nil
	uc.status.Running = false
	uc.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info("Overdue scanner stopped")
}

func (uc *OverdueScannerUseCase) GetStatus() ScannerStatus {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	status := uc.status
	if status.LastRunAt != nil {
		t := *status.LastRunAt
		status.LastRunAt = &t
	}
	return status
}
