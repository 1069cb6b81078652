package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"linkhub/internal/services"
	"linkhub/pkg/logger"
)

// RenewalScheduler runs the renewal batch on a cron spec. Overlapping runs
// are skipped.
type RenewalScheduler struct {
	renewals services.RenewalServiceInterface
	logger   logger.Interface
	cron     *cron.Cron
	spec     string
	timeout  time.Duration

	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewRenewalScheduler(
	renewals services.RenewalServiceInterface,
	spec string,
	loc *time.Location,
	timeout time.Duration,
	log logger.Interface,
) *RenewalScheduler {
	log = log.Named("renewal_scheduler")
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &RenewalScheduler{
		renewals: renewals,
		logger:   log,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:    spec,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the job and starts the cron loop in the background.
func (s *RenewalScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("schedule renewals %q: %w", s.spec, err)
	}
	s.logger.Infow("starting renewal scheduler", "spec", s.spec)
	s.cron.Start()
	return nil
}

// Stop cancels an in-flight run and waits for it to return.
func (s *RenewalScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping renewal scheduler")
		s.cancel()
		<-s.cron.Stop().Done()
		s.logger.Infow("renewal scheduler stopped")
	})
}

func (s *RenewalScheduler) runOnce() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	report, err := s.renewals.RunRenewals(ctx)
	if err != nil {
		s.logger.Errorw("renewal run failed", "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Infow("renewal run completed",
		"processed", report.Processed,
		"duration", time.Since(start),
	)
}

type cronLogger struct {
	log logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
