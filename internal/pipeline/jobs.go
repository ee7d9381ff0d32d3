package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single asynchronous conversion.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`

	Progress Progress `json:"progress"`

	FileName  string    `json:"file_name,omitempty"`
	FileURL   string    `json:"file_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	markdown []byte
	errors   []string
}

// Progress reports what the conversion did.
type Progress struct {
	Replaced   int      `json:"replaced"`
	Unresolved []string `json:"unresolved"`
	Images     int      `json:"images"`
	Tables     int      `json:"tables"`
	Charts     int      `json:"charts"`
	Errors     []string `json:"errors"`
}

// NewJob creates a queued job for markdown.
func NewJob(markdown []byte, title string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		markdown:  markdown,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updated()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Complete records the generated file and conversion counts.
func (j *Job) Complete(fileName, fileURL string, p Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.FileName = fileName
	j.FileURL = fileURL
	p.Errors = j.errors
	j.Progress = p
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Markdown returns the source to convert.
func (j *Job) Markdown() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.markdown
}

// release drops the source once the job has finished.
func (j *Job) release() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.markdown = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Title     string    `json:"title,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Title:    j.Title,
		FileName: j.FileName,
		FileURL:  j.FileURL,
		Progress: Progress{
			Replaced:   j.Progress.Replaced,
			Unresolved: append([]string{}, j.Progress.Unresolved...),
			Images:     j.Progress.Images,
			Tables:     j.Progress.Tables,
			Charts:     j.Progress.Charts,
			Errors:     append([]string{}, j.Progress.Errors...),
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
