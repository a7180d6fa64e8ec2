// Package schedulersvc runs the periodic maintenance jobs of the API.
package schedulersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/escola/core"
)

// OverdueRefresher persists the overdue transitions of past-due payments.
type OverdueRefresher interface {
	RefreshOverdue(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	logger  core.Logger
	timeout time.Duration
}

// New schedules the overdue refresh according to conf.Payments.OverdueSchedule (standard 5 fields cron spec, UTC).
func New(conf *core.Config, logger core.Logger, payments OverdueRefresher) (*Scheduler, error) {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(payments, "payments"),
	).CheckAndPanic()

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger:  logger,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(conf.Payments.OverdueSchedule, s.refreshOverdue(payments)); err != nil {
		return nil, errors.Wrapf(err, "scheduling overdue refresh %q", conf.Payments.OverdueSchedule)
	}
	return s, nil
}

func (s *Scheduler) refreshOverdue(payments OverdueRefresher) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		n, err := payments.RefreshOverdue(ctx)
		if err != nil {
			s.logger.Error(fmt.Sprintf("refreshing overdue payments: %v", err), err)
			return
		}
		s.logger.Info(fmt.Sprintf("overdue payments refreshed: %d", n))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler; the returned context is done once running jobs complete.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
