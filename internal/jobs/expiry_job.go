package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiryJobName is the name of the quotation expiry job
const ExpiryJobName = "quotation_expiry"

// QuotationExpiryService defines the interface for expiring overdue quotations.
// This interface allows the job to call the service without importing the service package directly.
type QuotationExpiryService interface {
	// ExpireOverdue moves sent quotations whose validity window ended before
	// the cutoff into the expired status. Returns the number of quotations expired.
	ExpireOverdue(ctx context.Context, cutoff time.Time) (int, error)
}

// ExpiryJob sweeps sent quotations past their validity window and expires them.
type ExpiryJob struct {
	quotationService QuotationExpiryService
	logger           *zap.Logger
	timeout          time.Duration
}

// NewExpiryJob creates a new quotation expiry job.
// The timeout controls how long the sweep is allowed to run.
func NewExpiryJob(quotationService QuotationExpiryService, logger *zap.Logger, timeout time.Duration) *ExpiryJob {
	return &ExpiryJob{
		quotationService: quotationService,
		logger:           logger,
		timeout:          timeout,
	}
}

// Run executes the expiry sweep. Called by the scheduler according to
// the configured cron expression. The sweep is idempotent: quotations
// already expired are not touched again.
func (j *ExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting quotation expiry job")

	expired, err := j.quotationService.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("quotation expiry job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("quotation expiry job completed",
		zap.Int("expired", expired),
		zap.Duration("duration", time.Since(start)))
}
