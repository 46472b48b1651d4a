package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrJobRunning is returned when a job is triggered while a previous run is in flight
var ErrJobRunning = errors.New("job is already running")

// historyLimit caps the retained runs per job
const historyLimit = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression (seconds field enabled)
	// Examples: "0 */5 * * * *" (every 5 minutes)
	//           "@every 1m", "@hourly"
	Schedule() string
}

// JobResult is the outcome of one run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobStatus is the externally visible state of one job
// GET /api/scheduler/jobs 응답 단위
type JobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Running     bool       `json:"running"`
	NextRun     *time.Time `json:"next_run,omitempty"` // 스케줄러 시작 전에는 없음
	TotalRuns   int        `json:"total_runs"`
	Failures    int        `json:"failures"`
	SuccessRate float64    `json:"success_rate"`
	LastRun     *JobResult `json:"last_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

// runLog keeps the most recent results of one job, oldest first
type runLog struct {
	results []JobResult
	running bool
}

func (l *runLog) add(result JobResult) {
	l.results = append(l.results, result)
	if len(l.results) > historyLimit {
		l.results = l.results[len(l.results)-historyLimit:]
	}
}

// status summarises the log; scheduling fields are filled by the scheduler
func (l *runLog) status() JobStatus {
	st := JobStatus{
		Running:   l.running,
		TotalRuns: len(l.results),
	}
	if len(l.results) == 0 {
		return st
	}

	for i := len(l.results) - 1; i >= 0; i-- {
		r := l.results[i]
		if !r.Success {
			st.Failures++
			continue
		}
		if st.LastSuccess == nil {
			at := r.StartTime
			st.LastSuccess = &at
		}
	}
	st.SuccessRate = float64(st.TotalRuns-st.Failures) / float64(st.TotalRuns)

	last := l.results[len(l.results)-1]
	st.LastRun = &last
	return st
}
