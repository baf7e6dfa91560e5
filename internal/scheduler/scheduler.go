package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/internal/clock"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	invoicingdomain "github.com/smallbiznis/faktura/internal/invoicing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependencies")

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config Config `optional:"true"`
}

// Scheduler periodically flips open invoices past their due date to OVERDUE.
// That is the only transition the system performs on its own.
type Scheduler struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   Config
	clock clock.Clock
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:    p.DB,
		log:   p.Log.Named("scheduler"),
		cfg:   p.Config.withDefaults(),
		clock: p.Clock,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.SweepOverdue(ctx); err != nil {
			s.log.Error("scheduler.sweep_failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOverdue marks open invoices whose due date has passed. Batched so a
// large backlog cannot hold a transaction open for long.
func (s *Scheduler) SweepOverdue(ctx context.Context) error {
	now := s.clock.Now()

	for {
		var ids []int64
		err := s.db.WithContext(ctx).
			Model(&invoicedomain.Invoice{}).
			Where("status = ? AND due_date < ?", invoicingdomain.StatusOpen, now).
			Limit(s.cfg.BatchSize).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		result := s.db.WithContext(ctx).
			Model(&invoicedomain.Invoice{}).
			Where("id IN ? AND status = ?", ids, invoicingdomain.StatusOpen).
			Updates(map[string]any{
				"status":     invoicingdomain.StatusOverdue,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}

		s.log.Info("scheduler.marked_overdue", zap.Int64("count", result.RowsAffected))

		if len(ids) < s.cfg.BatchSize {
			return nil
		}
	}
}
