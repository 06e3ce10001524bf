package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	reminderdomain "github.com/smallbiznis/invoicedesk/internal/reminder/domain"
	"github.com/smallbiznis/invoicedesk/internal/scheduler/guard"
	settingsdomain "github.com/smallbiznis/invoicedesk/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const JobAutoReminders = "auto_reminders"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Config    Config `optional:"true"`
	Invoices  invoicedomain.Service
	Settings  settingsdomain.Service
	Reminders reminderdomain.Service
	Limiter   *ratelimit.ReminderLimiter `optional:"true"`
	Metrics   *obsmetrics.Metrics        `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	genID     *snowflake.Node
	clock     clock.Clock
	invoices  invoicedomain.Service
	settings  settingsdomain.Service
	reminders reminderdomain.Service
	limiter   *ratelimit.ReminderLimiter
	metrics   *obsmetrics.Metrics
	ledger    *sentLedger
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Invoices == nil || p.Settings == nil || p.Reminders == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		genID:     p.GenID,
		clock:     p.Clock,
		invoices:  p.Invoices,
		settings:  p.Settings,
		reminders: p.Reminders,
		limiter:   p.Limiter,
		metrics:   p.Metrics,
		ledger:    newSentLedger(),
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.metrics.AddJobProcessed(name, run.processedCount)
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	s.metrics.IncJobError(name, err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce performs a single sweep of every enabled job.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, JobAutoReminders, s.cfg.JobTimeout, s.AutoRemindersJob)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// AutoRemindersJob sends the before/after reminders due today according to
// the current settings. A failure on one invoice never stops the sweep; all
// failures are returned joined.
func (s *Scheduler) AutoRemindersJob(ctx context.Context) error {
	release, acquired, err := s.limiter.AcquireSweep(ctx, JobAutoReminders)
	if err != nil {
		return err
	}
	if !acquired {
		s.logger(ctx).Debug("auto reminder sweep held by another instance")
		return nil
	}
	defer release()

	run := jobRunFromContext(ctx)
	settings := s.settings.Get(ctx)
	today := guard.Day(s.clock.Now())
	s.ledger.Prune(today)

	invoices, err := s.invoices.List(ctx, invoicedomain.ListInvoiceRequest{})
	if err != nil {
		return err
	}

	var errs error
	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}

		kind, due := guard.ReminderKind(inv, today, settings.AutoReminderDaysBefore, settings.AutoReminderDaysAfter)
		if !due {
			continue
		}
		if s.ledger.Sent(inv.ID, kind, today) {
			run.IncSkipped()
			continue
		}

		dispatch, err := s.reminders.Send(ctx, reminderdomain.SendRequest{InvoiceID: inv.ID})
		if err != nil {
			s.logReminderError(ctx, run, inv.ID, kind, err)
			errs = errors.Join(errs, fmt.Errorf("invoice %s (%s): %w", inv.ID, kind, err))
			continue
		}
		s.ledger.Mark(inv.ID, kind, today)
		run.AddProcessed(1)
		s.logReminderSent(ctx, inv.ID, inv.InvoiceNumber, kind, dispatch.Provider)
	}
	return errs
}
