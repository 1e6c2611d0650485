// Package scheduler runs periodic dashboard jobs on a gocron scheduler.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"roomreports/internal/infrastructure"
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

// RefreshJobName names the periodic dashboard refresh
const RefreshJobName = "dashboard-refresh"

// Refresher reloads the dashboard
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Service wraps a gocron scheduler
type Service struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	stopOnce  sync.Once
	stopErr   error
}

// NewService creates a stopped scheduler. Job panics are logged and the
// job stays scheduled.
func NewService(logger *slog.Logger) (*Service, error) {
	logger = infrastructure.WithComponent(logger, "scheduler")

	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("Scheduler job panicked",
						slog.String("job_id", jobID.String()),
						slog.String("job_name", jobName),
						slog.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Service{scheduler: sched, logger: logger}, nil
}

// Start begins running scheduled jobs
func (s *Service) Start() {
	if s == nil {
		return
	}
	s.logger.Info("Scheduler starting", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts the scheduler down. Later calls return the first result.
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers a five-field cron job. A tick that fires while the
// previous run is still in progress is skipped.
func (s *Service) AddJob(name, cronExpr string, task func(ctx context.Context)) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	jobLogger := s.logger.With(slog.String("job_name", name), slog.String("cron", cronExpr))

	wrappedTask := func() {
		ctx := infrastructure.EnsureTraceID(context.Background())
		start := time.Now()
		jobLogger.DebugContext(ctx, "Scheduler job started")
		task(ctx)
		jobLogger.DebugContext(ctx, "Scheduler job completed", slog.Duration("duration", time.Since(start)))
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrappedTask),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		jobLogger.Error("Failed to register scheduler job", slog.String("error", err.Error()))
		return nil, err
	}
	jobLogger.Info("Scheduler job registered")
	return job, nil
}

// ScheduleRefresh reloads the dashboard on cronExpr. Each run is bounded
// by timeout; failures are logged and left on the dashboard state.
func (s *Service) ScheduleRefresh(cronExpr string, timeout time.Duration, r Refresher) (gocron.Job, error) {
	return s.AddJob(RefreshJobName, cronExpr, func(ctx context.Context) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := r.Refresh(ctx); err != nil {
			s.logger.WarnContext(ctx, "Scheduled refresh failed", slog.String("error", err.Error()))
		}
	})
}
