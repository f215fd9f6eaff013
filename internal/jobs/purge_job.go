package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PurgeJobName is the scheduler name of the recycle-bin purge
const PurgeJobName = "recycle_bin_purge"

const (
	defaultPurgeBatchSize = 100
	defaultPurgeTimeout   = 10 * time.Minute
)

// Purger permanently removes quotations soft-deleted before cutoff, archiving each first
type Purger interface {
	PurgeDeleted(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// RunRecorder receives the outcome of every run
type RunRecorder interface {
	JobRun(job, outcome string)
}

// PurgeJob empties the recycle bin of quotations older than the retention period
type PurgeJob struct {
	purger    Purger
	recorder  RunRecorder
	logger    *zap.Logger
	retention time.Duration
	batchSize int
	timeout   time.Duration
	now       func() time.Time
}

// NewPurgeJob creates a purge job. recorder may be nil.
func NewPurgeJob(purger Purger, recorder RunRecorder, logger *zap.Logger, retentionDays int) *PurgeJob {
	return &PurgeJob{
		purger:    purger,
		recorder:  recorder,
		logger:    logger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		batchSize: defaultPurgeBatchSize,
		timeout:   defaultPurgeTimeout,
		now:       time.Now,
	}
}

func (j *PurgeJob) Name() string {
	return PurgeJobName
}

// Run purges in batches until a batch comes back short or fails
func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	cutoff := j.now().UTC().Add(-j.retention)
	total := 0

	for {
		purged, err := j.purger.PurgeDeleted(ctx, cutoff, j.batchSize)
		total += purged
		if err != nil {
			j.logger.Error("recycle bin purge failed",
				zap.Error(err),
				zap.Int("purged", total),
				zap.Time("cutoff", cutoff),
				zap.Duration("duration", time.Since(start)))
			j.record("failure")
			return
		}
		if purged < j.batchSize {
			break
		}
	}

	j.logger.Info("recycle bin purge completed",
		zap.Int("purged", total),
		zap.Time("cutoff", cutoff),
		zap.Duration("duration", time.Since(start)))
	j.record("success")
}

func (j *PurgeJob) record(outcome string) {
	if j.recorder != nil {
		j.recorder.JobRun(PurgeJobName, outcome)
	}
}

// RegisterPurgeJob adds the purge job to the scheduler
func RegisterPurgeJob(scheduler *Scheduler, job *PurgeJob, cronExpr string) error {
	return scheduler.Schedule(job, cronExpr)
}
