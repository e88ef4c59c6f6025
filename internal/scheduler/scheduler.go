package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-flatten/internal/export"
	"github.com/i474232898/weather-flatten/internal/weather"
)

// Scheduler periodically runs a weather batch for the configured cities
// and writes each resulting table as CSV.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(cities []string, interval, timeout time.Duration, service *weather.Service, out io.Writer, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
		out:       out,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// It is a no-op without cities or with a non-positive interval.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 || s.interval <= 0 {
		s.logger.Info("scheduler: nothing to schedule",
			slog.Int("cities", len(s.cities)),
			slog.Duration("interval", s.interval))
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("scheduler: weather batch failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce runs one batch and writes its table to the output.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.logger.InfoContext(ctx, "scheduler: running weather batch")

	report, err := s.service.Run(ctx, s.cities)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return export.WriteCSV(s.out, &report.Table)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
