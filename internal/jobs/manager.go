package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// Func is the body of a job. It should return promptly once ctx is done.
type Func func(ctx context.Context, job *model.Job) error

// Manager runs background jobs on a bounded number of workers and keeps
// their status for later inspection.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	workers  chan struct{} // Limits concurrent jobs
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	metrics  *JobMetrics
	logger   *slog.Logger
	maxAge   time.Duration
	interval time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// WithRetention sets how long finished jobs are kept and how often they are swept.
func WithRetention(maxAge, interval time.Duration) Option {
	return func(m *Manager) {
		m.maxAge = maxAge
		m.interval = interval
	}
}

// NewManager creates a job manager running at most maxWorkers jobs at once.
func NewManager(maxWorkers int, opts ...Option) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		jobs:     make(map[string]*model.Job),
		workers:  make(chan struct{}, maxWorkers),
		ctx:      ctx,
		cancel:   cancel,
		metrics:  NewJobMetrics(),
		logger:   slog.Default(),
		maxAge:   24 * time.Hour,
		interval: time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins periodic cleanup of finished jobs.
func (m *Manager) Start() {
	m.logger.Info("job manager started", "max_workers", cap(m.workers))
	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.logger.Info("job manager stopped")
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, corpusName string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     model.JobStatusPending,
		CorpusName: corpusName,
		CreatedAt:  time.Now(),
		Metadata:   metadata,
	}
	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("job created", "job_id", job.ID, "type", job.Type, "corpus", corpusName)
	return job.ID
}

// Submit creates a job and starts it.
func (m *Manager) Submit(jobType model.JobType, corpusName string, metadata map[string]string, fn Func) (string, error) {
	jobID := m.CreateJob(jobType, corpusName, metadata)
	if err := m.ExecuteJob(jobID, fn); err != nil {
		return jobID, err
	}
	return jobID, nil
}

// GetJob returns a copy of the job with the given ID.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of the jobs of a corpus, newest first,
// optionally filtered by status.
func (m *Manager) ListJobs(corpusName string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if job.CorpusName != corpusName {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	return &jobCopy
}

// ExecuteJob runs a pending job in a goroutine once a worker slot is free.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	jobSnapshot := copyJob(job)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		// Acquire worker slot
		select {
		case m.workers <- struct{}{}:
		case <-m.ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "job manager shutting down")
			return
		}
		defer func() { <-m.workers }()

		m.markRunning(jobID)
		startTime := time.Now()
		err := fn(m.ctx, jobSnapshot)
		executionTime := time.Since(startTime)

		if err != nil {
			m.metrics.RecordJobFailed(jobSnapshot.Type)
			m.finish(jobID, model.JobStatusFailed, err.Error())
			m.logger.Warn("job failed", "job_id", jobID, "type", jobSnapshot.Type, "took", executionTime, "error", err)
			return
		}
		// Counters are updated before the final status becomes visible.
		m.metrics.RecordJobCompleted(jobSnapshot.Type, executionTime)
		m.finish(jobID, model.JobStatusCompleted, "")
		m.logger.Info("job completed", "job_id", jobID, "type", jobSnapshot.Type, "took", executionTime)
	}()

	return nil
}

// UpdateJobProgress records the progress of a running job.
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) markRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	oldStatus := job.Status
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(oldStatus, job.Status)
}

func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	now := time.Now()
	job.CompletedAt = &now
	m.metrics.RecordJobStatusChange(oldStatus, status)
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.maxAge)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}
	if cleaned > 0 {
		m.logger.Info("cleaned up old jobs", "count", cleaned)
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}
