package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eventhub-backend/internal/config"
	"eventhub-backend/internal/logger"
)

// InviteSweeper expires PENDING invites whose deadline has passed.
type InviteSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// OccupancyReconciler recomputes cached event occupancy from registration rows.
type OccupancyReconciler interface {
	ReconcileOccupancy(ctx context.Context) (int, error)
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Invites       InviteSweeper
	Registrations OccupancyReconciler
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	timeout  time.Duration
}

const defaultJobTimeout = 10 * time.Minute

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		timeout:  defaultJobTimeout,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Jobs returns the runnable jobs keyed by their command-line name.
func (jr *JobRunner) Jobs() map[string]func() error {
	return map[string]func() error{
		"expire-stale-invites":      jr.ExpireStaleInvites,
		"reconcile-event-occupancy": jr.ReconcileEventOccupancy,
	}
}

// JobNames lists the accepted -run-once values, including "all".
func (jr *JobRunner) JobNames() []string {
	names := []string{"all"}
	for name := range jr.Jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunOnce runs the named job, or every job for "all".
func (jr *JobRunner) RunOnce(name string) error {
	if name == "all" {
		return jr.RunAll()
	}
	job, ok := jr.Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q (available: %v)", name, jr.JobNames())
	}
	return job()
}

// RunAll runs every job in a fixed order and returns the first failure.
func (jr *JobRunner) RunAll() error {
	var first error
	for _, job := range []func() error{jr.ExpireStaleInvites, jr.ReconcileEventOccupancy} {
		if err := job(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// runWithRecovery wraps job execution with a deadline and panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	log := logger.WithComponent("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	log.Info("Starting job")
	if err := jobFunc(ctx); err != nil {
		log.Error("Job failed", "error", err, "elapsed", time.Since(start))
		return fmt.Errorf("job %s: %w", jobName, err)
	}
	log.Info("Job completed", "elapsed", time.Since(start))
	return nil
}
