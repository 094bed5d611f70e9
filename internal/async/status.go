// Package async provides background job infrastructure for long-running
// index work: progress tracking polled by status callers and an event
// relay consumed by UIs.
package async

import (
	"sync"
	"time"
)

// JobStatus represents the overall job state.
type JobStatus string

const (
	// StatusRunning indicates the job is in progress.
	StatusRunning JobStatus = "running"
	// StatusReady indicates the job completed and search is available.
	StatusReady JobStatus = "ready"
	// StatusError indicates the job failed with an error.
	StatusError JobStatus = "error"
)

// JobStage represents the current stage of an indexing job.
type JobStage string

const (
	// StageLoading indicates the scene batch is being loaded.
	StageLoading JobStage = "loading"
	// StageExtracting indicates character name extraction.
	StageExtracting JobStage = "extracting"
	// StageIndexing indicates the index commit phase.
	StageIndexing JobStage = "indexing"
)

// ProgressSnapshot is an immutable snapshot of job progress.
type ProgressSnapshot struct {
	JobID           string  `json:"jobId"`
	Status          string  `json:"status"`
	Stage           string  `json:"stage"`
	ScenesTotal     int     `json:"scenesTotal"`
	ScenesProcessed int     `json:"scenesProcessed"`
	ProgressPct     float64 `json:"progressPct"`
	ElapsedSeconds  int     `json:"elapsedSeconds"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
}

// Progress provides thread-safe tracking of one job's progress.
type Progress struct {
	mu sync.RWMutex

	jobID           string
	status          JobStatus
	stage           JobStage
	scenesTotal     int
	scenesProcessed int
	startTime       time.Time
	errorMessage    string
}

// NewProgress creates a progress tracker for a running job.
func NewProgress(jobID string) *Progress {
	return &Progress{
		jobID:     jobID,
		status:    StatusRunning,
		stage:     StageLoading,
		startTime: time.Now(),
	}
}

// SetStage updates the current stage and the scene total.
func (p *Progress) SetStage(stage JobStage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage = stage
	p.scenesTotal = total
}

// UpdateScenes updates the number of processed scenes.
func (p *Progress) UpdateScenes(processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scenesProcessed = processed
}

// SetError marks the job as failed with an error message.
func (p *Progress) SetError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusError
	p.errorMessage = message
}

// SetReady marks the job as complete.
func (p *Progress) SetReady() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusReady
}

// IsRunning returns true if the job is still in progress.
func (p *Progress) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status == StatusRunning
}

// Snapshot returns an immutable copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var pct float64
	if p.scenesTotal > 0 {
		pct = float64(p.scenesProcessed) / float64(p.scenesTotal) * 100.0
	}
	if p.status == StatusReady {
		pct = 100.0
	}

	return ProgressSnapshot{
		JobID:           p.jobID,
		Status:          string(p.status),
		Stage:           string(p.stage),
		ScenesTotal:     p.scenesTotal,
		ScenesProcessed: p.scenesProcessed,
		ProgressPct:     pct,
		ElapsedSeconds:  int(time.Since(p.startTime).Seconds()),
		ErrorMessage:    p.errorMessage,
	}
}
