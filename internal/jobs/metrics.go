package jobs

import (
	"sync"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/model"
)

// maxSamplesPerType bounds the execution times kept per job type.
const maxSamplesPerType = 100

// JobMetricsData is a point-in-time copy of JobMetrics, safe to serialize.
type JobMetricsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	SuccessRate          float64                   `json:"success_rate"`
	CurrentWorkload      int64                     `json:"current_workload"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]int64   `json:"average_execution_time_by_type_ns"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// JobMetrics tracks counters and execution times of jobs.
type JobMetrics struct {
	mu                 sync.RWMutex
	jobsCreated        int64
	jobsCompleted      int64
	jobsFailed         int64
	totalExecutionTime time.Duration
	jobsByType         map[model.JobType]int64
	jobsByStatus       map[model.JobStatus]int64
	samplesByType      map[model.JobType][]time.Duration
	lastUpdated        time.Time
}

// NewJobMetrics creates a new metrics collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		jobsByType:    make(map[model.JobType]int64),
		jobsByStatus:  make(map[model.JobStatus]int64),
		samplesByType: make(map[model.JobType][]time.Duration),
		lastUpdated:   time.Now(),
	}
}

// RecordJobCreated counts a new pending job.
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsCreated++
	m.jobsByType[jobType]++
	m.jobsByStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status counters.
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.jobsByStatus[oldStatus] > 0 {
		m.jobsByStatus[oldStatus]--
	}
	m.jobsByStatus[newStatus]++
	m.lastUpdated = time.Now()
}

// RecordJobCompleted records a successful run.
func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, executionTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsCompleted++
	m.totalExecutionTime += executionTime

	samples := append(m.samplesByType[jobType], executionTime)
	if len(samples) > maxSamplesPerType {
		samples = samples[1:]
	}
	m.samplesByType[jobType] = samples
	m.lastUpdated = time.Now()
}

// RecordJobFailed records a failed run.
func (m *JobMetrics) RecordJobFailed(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsFailed++
	m.lastUpdated = time.Now()
}

// GetMetrics returns a deep copy of the current metrics.
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := JobMetricsData{
		JobsCreated:     m.jobsCreated,
		JobsCompleted:   m.jobsCompleted,
		JobsFailed:      m.jobsFailed,
		SuccessRate:     1.0, // No finished jobs yet
		CurrentWorkload: m.jobsByStatus[model.JobStatusPending] + m.jobsByStatus[model.JobStatusRunning],
		AverageByType:   make(map[model.JobType]int64, len(m.samplesByType)),
		JobsByType:      make(map[model.JobType]int64, len(m.jobsByType)),
		JobsByStatus:    make(map[model.JobStatus]int64, len(m.jobsByStatus)),
		LastUpdated:     m.lastUpdated,
	}
	if finished := m.jobsCompleted + m.jobsFailed; finished > 0 {
		data.SuccessRate = float64(m.jobsCompleted) / float64(finished)
	}
	if m.jobsCompleted > 0 {
		data.AverageExecutionTime = m.totalExecutionTime / time.Duration(m.jobsCompleted)
	}
	for jobType, samples := range m.samplesByType {
		var total time.Duration
		for _, d := range samples {
			total += d
		}
		if len(samples) > 0 {
			data.AverageByType[jobType] = int64(total / time.Duration(len(samples)))
		}
	}
	for k, v := range m.jobsByType {
		data.JobsByType[k] = v
	}
	for k, v := range m.jobsByStatus {
		data.JobsByStatus[k] = v
	}
	return data
}
