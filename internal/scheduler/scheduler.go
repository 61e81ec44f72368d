// Package scheduler runs the recurring pipeline jobs on cron timers
// and exposes manual control over them.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/setal/compliance-intel/internal/domain"
)

// JobFunc executes one job run. A nil result means the run was skipped
// (for example when another instance holds the job lock).
type JobFunc func(ctx context.Context) *domain.JobResult

// Job is a named recurring pipeline with its cron schedule.
type Job struct {
	Name     string
	Schedule string
	Run      JobFunc
}

// JobInfo is the externally visible state of one registered job.
type JobInfo struct {
	Name     string            `json:"name"`
	Schedule string            `json:"schedule"`
	Running  bool              `json:"running"`
	NextRun  *time.Time        `json:"next_run,omitempty"`
	LastRun  *domain.JobResult `json:"last_run,omitempty"`
}

type entry struct {
	job     Job
	cronID  cron.EntryID // 0 while the timer is stopped
	lastRun *domain.JobResult
}

// Scheduler owns the cron runtime and the registered jobs. With
// enabled=false no timers fire; manual triggering still works.
type Scheduler struct {
	cron    *cron.Cron
	enabled bool

	mu    sync.Mutex
	jobs  map[string]*entry
	order []string
}

func New(enabled bool) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		enabled: enabled,
		jobs:    map[string]*entry{},
	}
}

// Register adds a job. Registration order is preserved in List.
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	s.jobs[job.Name] = &entry{job: job}
	s.order = append(s.order, job.Name)
	return nil
}

// Start schedules every registered job and starts the cron runtime.
// A job with an invalid cron expression is logged and skipped; the
// rest of the service keeps running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		for _, name := range s.order {
			if err := s.scheduleLocked(name); err != nil {
				log.Printf("[Scheduler] skipping job %s: %v", name, err)
			}
		}
	} else {
		log.Printf("[Scheduler] scheduled jobs disabled; manual trigger only")
	}
	s.cron.Start()
}

// Stop halts the cron runtime and waits for running jobs to finish or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("[Scheduler] shutdown timed out waiting for running jobs")
	}
}

func (s *Scheduler) scheduleLocked(name string) error {
	e := s.jobs[name]
	if e.cronID != 0 {
		return nil // already scheduled
	}
	id, err := s.cron.AddFunc(e.job.Schedule, func() {
		s.execute(name)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", e.job.Schedule, err)
	}
	e.cronID = id
	log.Printf("[Scheduler] job %s scheduled at %q", name, e.job.Schedule)
	return nil
}

func (s *Scheduler) execute(name string) {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	result := e.job.Run(context.Background())
	if result == nil {
		return
	}
	s.mu.Lock()
	e.lastRun = result
	s.mu.Unlock()
}

// Trigger runs a job by name synchronously, outside its schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) (*domain.JobResult, error) {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown job %q", name)
	}
	result := e.job.Run(ctx)
	if result == nil {
		return nil, fmt.Errorf("job %q skipped: already running elsewhere", name)
	}
	s.mu.Lock()
	e.lastRun = result
	s.mu.Unlock()
	return result, nil
}

// StartJob resumes a stopped job's timer. Idempotent.
func (s *Scheduler) StartJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.scheduleLocked(name)
}

// StopJob removes a job's timer without unregistering it. Idempotent.
func (s *Scheduler) StopJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	if e.cronID != 0 {
		s.cron.Remove(e.cronID)
		e.cronID = 0
	}
	return nil
}

// List reports every registered job in registration order.
func (s *Scheduler) List() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]JobInfo, 0, len(s.order))
	for _, name := range s.order {
		e := s.jobs[name]
		info := JobInfo{
			Name:     name,
			Schedule: e.job.Schedule,
			Running:  e.cronID != 0,
			LastRun:  e.lastRun,
		}
		if e.cronID != 0 {
			if next := s.cron.Entry(e.cronID).Next; !next.IsZero() {
				info.NextRun = &next
			}
		}
		infos = append(infos, info)
	}
	return infos
}
