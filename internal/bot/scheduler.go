package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Task is a named periodic job run by the scheduler.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler manages the periodic tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	tasks     []Task
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a new scheduler instance for the given tasks.
func NewScheduler(logger *slog.Logger, tasks []Task) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		tasks:     tasks,
	}, nil
}

// Start schedules all tasks and starts the scheduler's internal ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	for _, task := range s.tasks {
		if task.Interval <= 0 {
			s.logger.Warn("Skipping task with no interval", "task_name", task.Name)
			continue
		}

		_, err := s.scheduler.NewJob(
			gocron.DurationJob(task.Interval),
			gocron.NewTask(
				func(ctx context.Context, t Task) {
					if taskErr := t.Run(ctx); taskErr != nil {
						s.logger.Error("Scheduled task failed", "task_name", t.Name, "error", taskErr)
					}
				},
				context.Background(),
				task,
			),
			gocron.WithName(task.Name),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule task %q: %w", task.Name, err)
		}

		s.logger.Info("Scheduled task", "task_name", task.Name, "interval", task.Interval)
	}

	s.scheduler.Start()
	s.running = true

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully")
	}

	s.running = false
	return err
}
