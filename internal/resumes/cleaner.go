package resumes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Cleaner periodically removes stored files that no resume row references.
type Cleaner struct {
	repo      Repository
	files     FileStorage
	interval  time.Duration
	scheduler *gocron.Scheduler
	now       func() time.Time
}

func NewCleaner(repo Repository, files FileStorage, interval time.Duration) *Cleaner {
	return &Cleaner{
		repo:      repo,
		files:     files,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		now:       time.Now,
	}
}

// Start schedules the sweep. A non-positive interval disables it.
func (c *Cleaner) Start() error {
	if c.interval <= 0 {
		slog.Info("orphan upload sweep disabled")
		return nil
	}
	_, err := c.scheduler.Every(c.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := c.Sweep(ctx); err != nil {
			slog.Warn("orphan upload sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule orphan sweep: %w", err)
	}
	c.scheduler.StartAsync()
	return nil
}

func (c *Cleaner) Stop() {
	c.scheduler.Stop()
}

// Sweep removes unreferenced files older than one interval, so uploads that
// are still being recorded survive. It returns how many files were removed.
func (c *Cleaner) Sweep(ctx context.Context) (int, error) {
	objects, err := c.files.List(ctx)
	if err != nil {
		return 0, err
	}
	known, err := c.repo.Filenames(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := c.now().Add(-c.interval)
	removed := 0
	for _, obj := range objects {
		if known[obj.Name] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := c.files.Remove(ctx, obj.Name); err != nil {
			slog.Warn("remove orphan upload", "file", obj.Name, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		orphansRemoved.Add(float64(removed))
		slog.Info("orphan uploads removed", "count", removed)
	}
	return removed, nil
}
