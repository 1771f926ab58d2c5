package reports

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultRetentionCronSpec      = "@hourly"
	defaultLeaderLockTTL          = 5 * time.Minute
	defaultBillOverdueAfterInDays = 30
)

// RetentionWorker periodically deletes expired reports and marks stale unpaid
// bills overdue. Only the instance holding the leader lock runs a pass.
type RetentionWorker struct {
	log            *zap.Logger
	cfg            *config.InternalConfig
	locker         contracts.LockerService
	reportUsecase  contracts.ReportUsecase
	billRepository contracts.BillRepository
	now            func() time.Time
	cron           *cron.Cron
	runCtx         context.Context
	cancel         context.CancelFunc
}

func NewRetentionWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerService contracts.LockerService,
	reportUsecase contracts.ReportUsecase,
	billRepository contracts.BillRepository,
) *RetentionWorker {
	return &RetentionWorker{
		log:            log,
		cfg:            cfg,
		locker:         lockerService,
		reportUsecase:  reportUsecase,
		billRepository: billRepository,
		now:            time.Now,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)

	spec := w.cfg.Report.RetentionWorkerCronSpec
	if spec == "" {
		spec = defaultRetentionCronSpec
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { w.RunOnce(w.runCtx) }); err != nil {
		w.log.Warn("reports.RetentionWorker invalid cron spec; falling back to @hourly",
			zap.String("cron_spec", spec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc(defaultRetentionCronSpec, func() { w.RunOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels an in-flight pass and waits for it to return.
func (w *RetentionWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// RunOnce performs a single pass if the leader lock can be taken.
func (w *RetentionWorker) RunOnce(ctx context.Context) {
	ttl := w.leaderLockTTL()
	acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeyRetentionWorkerLeader, ttl)
	if err != nil {
		w.log.Warn("reports.RetentionWorker leader lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Info("reports.RetentionWorker leader lock held by another instance")
		return
	}
	defer w.locker.Unlock(context.WithoutCancel(ctx), constvars.RedisKeyRetentionWorkerLeader, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go w.refreshLock(refreshCtx, token, ttl)

	purged, err := w.reportUsecase.PurgeExpired(ctx)
	if err != nil {
		w.log.Warn("reports.RetentionWorker purging expired reports failed", zap.Error(err))
	}

	cutoff := w.now().AddDate(0, 0, -w.billOverdueAfterInDays())
	overdue, err := w.billRepository.MarkOverdue(ctx, cutoff)
	if err != nil {
		w.log.Warn("reports.RetentionWorker marking overdue bills failed", zap.Error(err))
	}

	w.log.Info("reports.RetentionWorker pass finished",
		zap.Int64("purged_reports", purged),
		zap.Int64("overdue_bills", overdue),
	)
}

func (w *RetentionWorker) refreshLock(ctx context.Context, token string, ttl time.Duration) {
	tick := time.NewTicker(ttl / 2)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := w.locker.Refresh(ctx, constvars.RedisKeyRetentionWorkerLeader, token, ttl); err != nil {
				w.log.Warn("reports.RetentionWorker failed to refresh leader lock", zap.Error(err))
			}
		}
	}
}

func (w *RetentionWorker) leaderLockTTL() time.Duration {
	if w.cfg.Report.LeaderLockTTLInSeconds <= 0 {
		return defaultLeaderLockTTL
	}
	return time.Duration(w.cfg.Report.LeaderLockTTLInSeconds) * time.Second
}

func (w *RetentionWorker) billOverdueAfterInDays() int {
	if w.cfg.Report.BillOverdueAfterInDays <= 0 {
		return defaultBillOverdueAfterInDays
	}
	return w.cfg.Report.BillOverdueAfterInDays
}
