package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	batches []int
	err     error
	cutoffs []time.Time
	limits  []int
}

func (f *fakePurger) PurgeDeleted(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	f.limits = append(f.limits, limit)
	if len(f.batches) == 0 {
		return 0, f.err
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

type fakeRecorder struct {
	runs []string
}

func (f *fakeRecorder) JobRun(job, outcome string) {
	f.runs = append(f.runs, job+":"+outcome)
}

func newTestPurgeJob(purger Purger, recorder RunRecorder) *PurgeJob {
	job := NewPurgeJob(purger, recorder, zap.NewNop(), 30)
	job.batchSize = 2
	job.now = func() time.Time { return time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC) }
	return job
}

func TestPurgeJob_RunsUntilShortBatch(t *testing.T) {
	purger := &fakePurger{batches: []int{2, 2, 1}}
	recorder := &fakeRecorder{}

	newTestPurgeJob(purger, recorder).Run()

	require.Len(t, purger.cutoffs, 3)
	assert.Equal(t, time.Date(2026, 9, 16, 2, 30, 0, 0, time.UTC), purger.cutoffs[0])
	assert.Equal(t, []int{2, 2, 2}, purger.limits)
	assert.Equal(t, []string{"recycle_bin_purge:success"}, recorder.runs)
}

func TestPurgeJob_EmptyRecycleBin(t *testing.T) {
	purger := &fakePurger{}
	recorder := &fakeRecorder{}

	newTestPurgeJob(purger, recorder).Run()

	assert.Len(t, purger.cutoffs, 1)
	assert.Equal(t, []string{"recycle_bin_purge:success"}, recorder.runs)
}

func TestPurgeJob_StopsOnError(t *testing.T) {
	purger := &fakePurger{batches: []int{2}, err: errors.New("archive unavailable")}
	recorder := &fakeRecorder{}

	newTestPurgeJob(purger, recorder).Run()

	assert.Len(t, purger.cutoffs, 2)
	assert.Equal(t, []string{"recycle_bin_purge:failure"}, recorder.runs)
}

func TestPurgeJob_NilRecorder(t *testing.T) {
	assert.NotPanics(t, func() {
		newTestPurgeJob(&fakePurger{}, nil).Run()
	})
}

func TestRegisterPurgeJob(t *testing.T) {
	scheduler := NewScheduler(zap.NewNop())
	job := newTestPurgeJob(&fakePurger{}, nil)

	require.NoError(t, RegisterPurgeJob(scheduler, job, "0 30 2 * * *"))
	assert.Equal(t, []string{PurgeJobName}, scheduler.Jobs())

	err := RegisterPurgeJob(scheduler, job, "0 30 2 * * *")
	assert.Error(t, err, "duplicate names are rejected")

	require.NoError(t, scheduler.Unschedule(PurgeJobName))
	assert.Error(t, scheduler.Unschedule(PurgeJobName))
	assert.Error(t, RegisterPurgeJob(scheduler, job, "not a cron expression"))
	assert.Empty(t, scheduler.Jobs())
}

func TestScheduler_AcceptsFiveAndSixFieldSpecs(t *testing.T) {
	scheduler := NewScheduler(zap.NewNop())

	for i, spec := range []string{"30 2 * * *", "0 30 2 * * *", "@daily", "@every 1h"} {
		job := &namedJob{name: fmt.Sprintf("job-%d", i)}
		assert.NoError(t, scheduler.Schedule(job, spec), spec)
	}
	assert.Len(t, scheduler.Jobs(), 4)

	_, ok := scheduler.NextRun("job-0")
	assert.True(t, ok)
	_, ok = scheduler.NextRun("missing")
	assert.False(t, ok)
}

func TestScheduler_RunsJobs(t *testing.T) {
	scheduler := NewScheduler(zap.NewNop())
	job := &namedJob{name: "tick", ran: make(chan struct{}, 1)}
	require.NoError(t, scheduler.Schedule(job, "@every 1s"))

	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	select {
	case <-job.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

type namedJob struct {
	name string
	ran  chan struct{}
}

func (j *namedJob) Name() string { return j.name }

func (j *namedJob) Run() {
	if j.ran != nil {
		select {
		case j.ran <- struct{}{}:
		default:
		}
	}
}
