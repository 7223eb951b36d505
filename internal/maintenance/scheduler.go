/*
Package maintenance runs periodic upkeep of the learning state on a cron
schedule.
*/
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Task is a unit of maintenance work.
type Task interface {
	// Name identifies the task in logs and status.
	Name() string

	// Execute runs the task once.
	Execute(ctx context.Context) TaskResult
}

// TaskResult describes one run of a task.
type TaskResult struct {
	Success          bool          `json:"success"`
	Message          string        `json:"message"`
	RecordsProcessed int           `json:"recordsProcessed"`
	Duration         time.Duration `json:"duration"`
	Error            error         `json:"-"`
}

// TaskStatus is the last known state of a registered task.
type TaskStatus struct {
	Name       string     `json:"name"`
	Schedule   string     `json:"schedule"`
	LastRun    time.Time  `json:"lastRun"`
	LastResult TaskResult `json:"lastResult"`
	Runs       int        `json:"runs"`
}

// Scheduler manages and executes maintenance tasks on a schedule.
type Scheduler struct {
	spec    string
	cron    *cron.Cron
	tasks   map[string]Task
	status  map[string]TaskStatus
	mu      sync.RWMutex
	running bool
}

// NewScheduler creates a scheduler running every task on spec, a standard
// five-field cron expression or a descriptor such as "@every 1h".
func NewScheduler(spec string) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", spec, err)
	}

	return &Scheduler{
		spec:   spec,
		cron:   cron.New(),
		tasks:  make(map[string]Task),
		status: make(map[string]TaskStatus),
	}, nil
}

// RegisterTask adds task to the schedule. Tasks registered after Start run
// from the next Start only.
func (s *Scheduler) RegisterTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := task.Name()
	s.tasks[name] = task
	s.status[name] = TaskStatus{Name: name, Schedule: s.spec}

	log.Debug().Str("task", name).Str("schedule", s.spec).Msg("maintenance task registered")
}

// Start schedules every registered task and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	for name, task := range s.tasks {
		if _, err := s.cron.AddFunc(s.spec, func() {
			s.executeTask(context.Background(), name, task)
		}); err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", name, err)
		}
	}

	s.cron.Start()
	s.running = true

	log.Info().Int("tasks", len(s.tasks)).Str("schedule", s.spec).Msg("maintenance scheduler started")
	return nil
}

// Stop stops the cron loop and waits up to timeout for running tasks.
func (s *Scheduler) Stop(timeout time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		log.Debug().Msg("maintenance scheduler stopped")
	case <-time.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("maintenance scheduler stop timed out")
	}
}

// RunNow executes every task immediately.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.mu.RLock()
	tasks := make(map[string]Task, len(s.tasks))
	for name, task := range s.tasks {
		tasks[name] = task
	}
	s.mu.RUnlock()

	for name, task := range tasks {
		s.executeTask(ctx, name, task)
	}
}

// Status returns a copy of every task status.
func (s *Scheduler) Status() map[string]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]TaskStatus, len(s.status))
	for name, st := range s.status {
		out[name] = st
	}
	return out
}

// IsRunning reports whether the cron loop is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) executeTask(ctx context.Context, name string, task Task) {
	start := time.Now()
	result := task.Execute(ctx)
	result.Duration = time.Since(start)

	s.mu.Lock()
	st := s.status[name]
	st.LastRun = start
	st.LastResult = result
	st.Runs++
	s.status[name] = st
	s.mu.Unlock()

	if !result.Success {
		log.Warn().Err(result.Error).Str("task", name).Dur("duration", result.Duration).Msg(result.Message)
		return
	}
	log.Info().
		Str("task", name).
		Int("records", result.RecordsProcessed).
		Dur("duration", result.Duration).
		Msg(result.Message)
}
