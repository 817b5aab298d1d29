package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ERPSyncJobName is the name of the ERP actual cost sync job
const ERPSyncJobName = "erp_cost_sync"

// ShipmentCostSyncService defines the interface for pulling landed costs
// from the ERP system into shipments.
type ShipmentCostSyncService interface {
	// SyncActualCosts fetches landed costs for shipments that carry an ERP
	// reference but have no actual cost yet. Returns the number synced.
	SyncActualCosts(ctx context.Context) (int, error)
}

// ERPSyncJob periodically pulls actual landed costs from the ERP system
// for shipments awaiting cost reconciliation.
type ERPSyncJob struct {
	shipmentService ShipmentCostSyncService
	logger          *zap.Logger
	timeout         time.Duration
}

// NewERPSyncJob creates a new ERP cost sync job.
func NewERPSyncJob(shipmentService ShipmentCostSyncService, logger *zap.Logger, timeout time.Duration) *ERPSyncJob {
	return &ERPSyncJob{
		shipmentService: shipmentService,
		logger:          logger,
		timeout:         timeout,
	}
}

// Run executes the ERP cost sync. Called by the scheduler according to
// the configured cron expression.
func (j *ERPSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting ERP cost sync job")

	synced, err := j.shipmentService.SyncActualCosts(ctx)
	if err != nil {
		j.logger.Error("ERP cost sync job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("ERP cost sync job completed",
		zap.Int("synced", synced),
		zap.Duration("duration", time.Since(start)))
}
