// Package scheduler runs background jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VAIIYA/DISCHAN/pkg/metrics"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/robfig/cron/v3"
)

// JobFunc is the body of a scheduled job
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	spec     string
	fn       JobFunc
	entryID  cron.EntryID
	lastRun  time.Time
	runCount int64
	lastErr  error
}

// JobInfo 작업 정보 (모니터링용)
type JobInfo struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	LastRun   time.Time `json:"lastRun"`
	NextRun   time.Time `json:"nextRun"`
	RunCount  int64     `json:"runCount"`
	LastError *string   `json:"lastError,omitempty"`
}

// Scheduler wraps a cron runner. Overlapping runs of one job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.RWMutex
	jobs    map[string]*job
	order   []string
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New 스케줄러 생성. timeout bounds a single job run.
func New(timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		jobs:    make(map[string]*job),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Register adds a job. An invalid spec is returned as an error.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	j := &job{name: name, spec: spec, fn: fn}
	id, err := s.cron.AddFunc(spec, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("schedule %q (%s): %w", name, spec, err)
	}
	j.entryID = id
	s.jobs[name] = j
	s.order = append(s.order, name)

	pkglogger.GetLogger().Info().Str("job", name).Str("spec", spec).Msg("scheduled job registered")
	return nil
}

// RunNow executes a registered job synchronously
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.run(j)
}

func (s *Scheduler) run(j *job) error {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := j.fn(ctx)

	s.mu.Lock()
	j.lastRun = start
	j.runCount++
	j.lastErr = err
	s.mu.Unlock()

	log := pkglogger.GetLogger()
	if err != nil {
		metrics.ScheduledJobs.WithLabelValues(j.name, "error").Inc()
		log.Error().Err(err).Str("job", j.name).Dur("elapsed", time.Since(start)).Msg("scheduled job failed")
		return err
	}
	metrics.ScheduledJobs.WithLabelValues(j.name, "ok").Inc()
	log.Debug().Str("job", j.name).Dur("elapsed", time.Since(start)).Msg("scheduled job finished")
	return nil
}

// Start begins firing jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	pkglogger.GetLogger().Info().Int("jobs", len(s.order)).Msg("scheduler started")
}

// Stop cancels running jobs and waits for them, or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		pkglogger.GetLogger().Warn().Msg("scheduler stop timed out")
	}
	pkglogger.GetLogger().Info().Msg("scheduler stopped")
}

// Jobs 등록된 작업 목록
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.order))
	for _, name := range s.order {
		j := s.jobs[name]
		info := JobInfo{
			Name:     j.name,
			Spec:     j.spec,
			LastRun:  j.lastRun,
			NextRun:  s.cron.Entry(j.entryID).Next,
			RunCount: j.runCount,
		}
		if j.lastErr != nil {
			msg := j.lastErr.Error()
			info.LastError = &msg
		}
		result = append(result, info)
	}
	return result
}

// cronLogger routes cron's own messages to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	pkglogger.GetLogger().Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	pkglogger.GetLogger().Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
