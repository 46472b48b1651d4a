package handlers

import (
	"net/http"

	"github.com/wonny/optrisk/internal/scheduler"
)

// JobLister reports scheduled job state (scheduler.Scheduler 구현)
type JobLister interface {
	Jobs() []scheduler.JobStatus
}

// SchedulerHandler exposes background job state
type SchedulerHandler struct {
	jobs JobLister
}

// NewSchedulerHandler creates a new scheduler handler; jobs may be nil
func NewSchedulerHandler(jobs JobLister) *SchedulerHandler {
	return &SchedulerHandler{jobs: jobs}
}

// JobsResponse lists the scheduled jobs
type JobsResponse struct {
	Count int                   `json:"count"`
	Jobs  []scheduler.JobStatus `json:"jobs"`
}

// ListJobs returns every job with its recent run summary
// GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	// 스냅샷 모드가 아니면 스케줄러 없음 → 빈 목록
	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Jobs()
	}
	respondJSON(w, http.StatusOK, JobsResponse{Count: len(jobs), Jobs: jobs})
}
