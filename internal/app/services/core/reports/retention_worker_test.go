package reports

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLocker struct {
	acquired bool
	err      error
	lockedAt []string
	unlocked []string
}

func (l *stubLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	l.lockedAt = append(l.lockedAt, key)
	if l.err != nil {
		return false, "", l.err
	}
	return l.acquired, "token-1", nil
}

func (l *stubLocker) Unlock(ctx context.Context, key, lockValue string) error {
	l.unlocked = append(l.unlocked, lockValue)
	return nil
}

func (l *stubLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return nil
}

type stubPurger struct {
	contracts.ReportUsecase
	calls int
	err   error
}

func (p *stubPurger) PurgeExpired(ctx context.Context) (int64, error) {
	p.calls++
	return 2, p.err
}

type stubOverdueMarker struct {
	contracts.BillRepository
	cutoffs []time.Time
}

func (m *stubOverdueMarker) MarkOverdue(ctx context.Context, createdBefore time.Time) (int64, error) {
	m.cutoffs = append(m.cutoffs, createdBefore)
	return 1, nil
}

func newTestRetentionWorker(locker *stubLocker) (*RetentionWorker, *stubPurger, *stubOverdueMarker) {
	purger := &stubPurger{}
	bills := &stubOverdueMarker{}
	cfg := &config.InternalConfig{Report: config.AppReport{BillOverdueAfterInDays: 14}}
	worker := NewRetentionWorker(zap.NewNop(), cfg, locker, purger, bills)
	worker.now = func() time.Time { return reportNow }
	return worker, purger, bills
}

func TestRetentionWorker_RunOnce(t *testing.T) {
	t.Run("leader runs a full pass", func(t *testing.T) {
		locker := &stubLocker{acquired: true}
		worker, purger, bills := newTestRetentionWorker(locker)

		worker.RunOnce(context.Background())

		assert.Equal(t, []string{constvars.RedisKeyRetentionWorkerLeader}, locker.lockedAt)
		assert.Equal(t, []string{"token-1"}, locker.unlocked)
		assert.Equal(t, 1, purger.calls)
		if assert.Len(t, bills.cutoffs, 1) {
			assert.True(t, reportNow.AddDate(0, 0, -14).Equal(bills.cutoffs[0]))
		}
	})

	t.Run("a purge failure still marks bills", func(t *testing.T) {
		locker := &stubLocker{acquired: true}
		worker, purger, bills := newTestRetentionWorker(locker)
		purger.err = errors.New("mongo unavailable")

		worker.RunOnce(context.Background())

		assert.Len(t, bills.cutoffs, 1)
		assert.Len(t, locker.unlocked, 1)
	})

	t.Run("follower skips the pass", func(t *testing.T) {
		locker := &stubLocker{acquired: false}
		worker, purger, bills := newTestRetentionWorker(locker)

		worker.RunOnce(context.Background())

		assert.Zero(t, purger.calls)
		assert.Empty(t, bills.cutoffs)
		assert.Empty(t, locker.unlocked)
	})

	t.Run("lock errors skip the pass", func(t *testing.T) {
		locker := &stubLocker{err: errors.New("redis down")}
		worker, purger, _ := newTestRetentionWorker(locker)

		worker.RunOnce(context.Background())

		assert.Zero(t, purger.calls)
	})
}

func TestRetentionWorker_StartStop(t *testing.T) {
	worker, _, _ := newTestRetentionWorker(&stubLocker{})
	worker.cfg.Report.RetentionWorkerCronSpec = "not a cron spec"

	worker.Start(context.Background())
	assert.NotNil(t, worker.cron)
	assert.Len(t, worker.cron.Entries(), 1)
	worker.Stop()
}
