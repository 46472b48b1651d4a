package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optrisk/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // 앞의 N 번 실패
	calls    int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(opts ...Option) *Scheduler {
	return New(logger.Nop(), append([]Option{WithRetry(2, time.Millisecond)}, opts...)...)
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@every 1m"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 */5 * * * *"}))
	assert.Equal(t, []string{"a", "b"}, jobNames(s))

	err := s.AddJob(&fakeJob{name: "a", schedule: "@every 1m"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1m"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.Jobs())
	assert.Empty(t, s.cron.Entries())
	assert.Error(t, s.RemoveJob("a"))
}

func TestScheduler_RunJobRetries(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "flaky", schedule: "@every 1h", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "flaky", jobs[0].Name)
	assert.Equal(t, "@every 1h", jobs[0].Schedule)
	assert.Equal(t, 1, jobs[0].TotalRuns)
	assert.Equal(t, 1.0, jobs[0].SuccessRate)
	assert.NotNil(t, jobs[0].LastSuccess)
	assert.False(t, jobs[0].Running)
	assert.Nil(t, jobs[0].NextRun) // 시작 전
}

func TestScheduler_RunJobGivesUp(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "broken", schedule: "@every 1h", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "transient", result.Error)
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))

	st := s.Jobs()[0]
	assert.Equal(t, 1, st.TotalRuns)
	assert.Equal(t, 1, st.Failures)
	assert.Equal(t, 0.0, st.SuccessRate)
	require.NotNil(t, st.LastRun)
	assert.False(t, st.LastRun.Success)
	assert.Nil(t, st.LastSuccess)
}

func TestScheduler_RunJobSkipsWhileRunning(t *testing.T) {
	s := newTestScheduler()
	job := &blockingJob{name: "slow", started: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan JobResult, 1)
	go func() {
		result, _ := s.RunJob(context.Background(), "slow")
		done <- result
	}()
	<-job.started

	assert.True(t, s.Jobs()[0].Running)
	_, err := s.RunJob(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(job.release)
	result := <-done
	assert.True(t, result.Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))

	st := s.Jobs()[0]
	assert.False(t, st.Running)
	assert.Equal(t, 1, st.TotalRuns)
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	_, err := newTestScheduler().RunJob(context.Background(), "nope")
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	assert.NotNil(t, s.Jobs()[0].NextRun)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&job.calls) > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestRunLog_KeepsLast100(t *testing.T) {
	l := &runLog{}
	for i := 0; i < 150; i++ {
		l.add(JobResult{Success: i%2 == 0, StartTime: time.Unix(int64(i), 0)})
	}
	assert.Len(t, l.results, historyLimit)

	st := l.status()
	assert.Equal(t, 100, st.TotalRuns)
	assert.Equal(t, 50, st.Failures)
	assert.InDelta(t, 0.5, st.SuccessRate, 1e-12)
	require.NotNil(t, st.LastSuccess)
	assert.Equal(t, time.Unix(148, 0), *st.LastSuccess)
	assert.Equal(t, time.Unix(149, 0), st.LastRun.StartTime)
}

func TestRunLog_Empty(t *testing.T) {
	st := (&runLog{}).status()
	assert.Zero(t, st.TotalRuns)
	assert.Nil(t, st.LastRun)
	assert.Zero(t, st.SuccessRate)
}

type blockingJob struct {
	name    string
	started chan struct{}
	release chan struct{}
	calls   int32
}

func (j *blockingJob) Name() string     { return j.name }
func (j *blockingJob) Schedule() string { return "@every 1h" }
func (j *blockingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.calls, 1)
	close(j.started)
	<-j.release
	return nil
}

func jobNames(s *Scheduler) []string {
	jobs := s.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name)
	}
	return names
}
