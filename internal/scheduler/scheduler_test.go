package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/leadscan/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 0 * * * *"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	err := s.AddJob(&fakeJob{name: "a", schedule: "@daily"})
	assert.Error(t, err)

	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a schedule"})
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@hourly"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.GetJobHistory("a")
	assert.Error(t, err)
}

func TestScheduler_RunJobWithRetry(t *testing.T) {
	s := New(logger.Nop(), WithRetry(2, time.Millisecond))
	job := &fakeJob{name: "flaky", schedule: "@hourly", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(3), job.calls.Load())

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestScheduler_RunJobFails(t *testing.T) {
	s := New(logger.Nop(), WithRetry(1, time.Millisecond))
	job := &fakeJob{name: "broken", schedule: "@hourly", failures: 10}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "transient", result.Error)
	assert.Equal(t, int32(2), job.calls.Load())

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Len(t, history.GetFailedResults(), 1)
	assert.Zero(t, history.GetSuccessRate())
}

func TestScheduler_RunJobCancelled(t *testing.T) {
	s := New(logger.Nop(), WithRetry(5, time.Hour))
	job := &fakeJob{name: "slow", schedule: "@hourly", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJob(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, context.Canceled.Error(), result.Error)
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestScheduler_RunUnknownJob(t *testing.T) {
	s := New(logger.Nop())
	_, err := s.RunJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestScheduler_NextRun(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), next, time.Minute)
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
}
