package usecase

import (
	"context"
	"log/slog"
	"time"

	"listsync/internal/domain"
)

// Maintenance runs the periodic housekeeping jobs: deactivating expired
// invitations and pruning delivered outbox rows past their retention.
type Maintenance struct {
	sharing  domain.SharingService
	outbox   domain.OutboxService
	logger   *slog.Logger
	interval time.Duration
}

func NewMaintenance(sharing domain.SharingService, outbox domain.OutboxService, logger *slog.Logger, interval time.Duration) *Maintenance {
	return &Maintenance{
		sharing:  sharing,
		outbox:   outbox,
		logger:   logger,
		interval: interval,
	}
}

// Run sweeps until ctx is cancelled.
func (m *Maintenance) Run(ctx context.Context) {
	m.logger.Info("maintenance loop started", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("maintenance loop stopped")
			return
		case <-ticker.C:
			m.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs both jobs once. Each job's failure is logged and does not
// prevent the other from running.
func (m *Maintenance) SweepOnce(ctx context.Context) {
	swept, err := m.sharing.SweepExpired(ctx)
	if err != nil {
		m.logger.Error("invitation sweep failed", "err", err)
	} else if swept > 0 {
		m.logger.Info("deactivated expired invitations", "count", swept)
	}

	pruned, err := m.outbox.Cleanup(ctx)
	if err != nil {
		m.logger.Error("outbox cleanup failed", "err", err)
	} else if pruned > 0 {
		m.logger.Info("pruned processed outbox events", "count", pruned)
	}
}
