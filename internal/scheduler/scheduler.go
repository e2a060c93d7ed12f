package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"manu4/internal/domain"
	"manu4/internal/metrics"

	"go.uber.org/zap"
)

// Task is one job invocation. A returned error is logged and counted; the job
// stays registered and the next tick still fires.
type Task func(ctx context.Context) error

type job struct {
	name    string
	cadence time.Duration
	task    Task
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
}

// Scheduler runs named periodic jobs, each on its own ticker, with per-job
// failure isolation and an in-flight guard that skips overlapping ticks.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	stopped bool
	log     *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs: make(map[string]*job),
		log:  log,
	}
}

// ScheduleJob registers a job and begins firing it on its cadence. Registering
// a name again replaces the prior job.
func (s *Scheduler) ScheduleJob(name string, cadence time.Duration, task Task) {
	if cadence <= 0 {
		s.log.Warn("job not scheduled: non-positive cadence", zap.String("job", name))
		return
	}
	s.mu.Lock()
	replaced := false
	// The wait on a prior job's loop happens without the lock, so both the
	// stopped flag and the map entry must be re-checked after reacquiring it:
	// a Stop or a concurrent replace may have won the race in between.
	for {
		if s.stopped {
			s.mu.Unlock()
			s.log.Warn("job not scheduled: scheduler stopped", zap.String("job", name))
			return
		}
		prev, ok := s.jobs[name]
		if !ok {
			break
		}
		delete(s.jobs, name)
		s.mu.Unlock()
		prev.cancel()
		<-prev.done
		replaced = true
		s.mu.Lock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		name:    name,
		cadence: cadence,
		task:    task,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.jobs[name] = j
	s.mu.Unlock()

	if replaced {
		s.log.Info("job replaced", zap.String("job", name))
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.Duration("cadence", cadence))
	go s.runLoop(ctx, j)
}

func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer close(j.done)
	ticker := time.NewTicker(j.cadence)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, j)
		}
	}
}

// runJob invokes the task with the overlap guard and panic isolation.
func (s *Scheduler) runJob(ctx context.Context, j *job) {
	if !j.running.CompareAndSwap(false, true) {
		metrics.JobSkips.WithLabelValues(j.name).Inc()
		s.log.Warn("tick skipped: previous invocation still running", zap.String("job", j.name))
		return
	}
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			metrics.JobErrors.WithLabelValues(j.name).Inc()
			s.log.Error("job panicked", zap.String("job", j.name), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	err := j.task(ctx)
	metrics.JobRuns.WithLabelValues(j.name).Inc()
	if err != nil {
		metrics.JobErrors.WithLabelValues(j.name).Inc()
		s.log.Error("job failed", zap.String("job", j.name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	s.log.Debug("job completed", zap.String("job", j.name), zap.Duration("took", time.Since(start)))
}

// Stop cancels every job and waits for their loops to exit. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.jobs = make(map[string]*job)
	s.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
		<-j.done
	}
	s.log.Info("scheduler stopped")
}

// checkJobs maps a manual check kind to the jobs it triggers.
var checkJobs = map[string][]string{
	domain.CheckEquipment:     {domain.JobEquipmentFailureScan},
	domain.CheckMaintenance:   {domain.JobMaintenanceDueScan},
	domain.CheckServiceOrders: {domain.JobServiceOrderScan},
	domain.CheckAll:           {domain.JobEquipmentFailureScan, domain.JobMaintenanceDueScan, domain.JobServiceOrderScan},
}

// RunManualCheck fires the scanner(s) behind kind outside their schedule. The
// in-flight guard still applies: a scan already running is skipped, not
// doubled. Every job behind kind is resolved up front, so a missing
// registration rejects the whole check instead of surfacing mid-run with some
// scanners already fired.
func (s *Scheduler) RunManualCheck(ctx context.Context, kind string) error {
	names, ok := checkJobs[kind]
	if !ok {
		return fmt.Errorf("unknown check kind %q", kind)
	}
	jobs := make([]*job, 0, len(names))
	s.mu.Lock()
	for _, name := range names {
		j := s.jobs[name]
		if j == nil {
			s.mu.Unlock()
			return fmt.Errorf("job %q is not registered", name)
		}
		jobs = append(jobs, j)
	}
	s.mu.Unlock()
	for _, j := range jobs {
		s.log.Info("manual check triggered", zap.String("job", j.name))
		s.runJob(ctx, j)
	}
	return nil
}
