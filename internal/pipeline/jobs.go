package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/extract"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Candidate is one generated question/answer pair awaiting confirmation.
// Error is set instead of Question/Answer when generation failed.
type Candidate struct {
	ChunkIndices []int  `json:"chunk_indices"`
	Question     string `json:"question,omitempty"`
	Answer       string `json:"answer,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Job generates candidates for one article: one per chunk selection.
type Job struct {
	mu sync.Mutex

	ID           string `json:"job_id"`
	SessionID    string `json:"session_id"`
	ArticleIndex int    `json:"article"`

	Type       extract.QuestionType     `json:"type"`
	Params     extract.GenerationParams `json:"params"`
	Selections [][]int                  `json:"selections"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	article    dataset.Article
	candidates []Candidate
	errors     []string
}

// Progress tracks generation progress.
type Progress struct {
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	Generated int      `json:"generated"`
	Errors    []string `json:"errors"`
}

// NewJob creates a queued job. Selections are copied.
func NewJob(sessionID string, articleIndex int, article dataset.Article, qaType extract.QuestionType, params extract.GenerationParams, selections [][]int) *Job {
	now := time.Now()
	sel := make([][]int, len(selections))
	for i, s := range selections {
		sel[i] = append([]int(nil), s...)
	}
	return &Job{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		ArticleIndex: articleIndex,
		Type:         qaType,
		Params:       params,
		Selections:   sel,
		Status:       StatusQueued,
		Phase:        "queued",
		Progress:     Progress{Total: len(sel)},
		CreatedAt:    now,
		UpdatedAt:    now,
		article:      article,
		candidates:   make([]Candidate, len(sel)),
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) lastUpdate() time.Time {
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

// SetCandidate stores the result for selection i and advances progress.
func (j *Job) SetCandidate(i int, c Candidate) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if i < 0 || i >= len(j.candidates) {
		return
	}
	j.candidates[i] = c
	j.Progress.Processed++
	if c.Error == "" {
		j.Progress.Generated++
	}
	j.UpdatedAt = time.Now()
}

// Article returns the article the job generates for.
func (j *Job) Article() dataset.Article {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.article
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string               `json:"job_id"`
	SessionID  string               `json:"session_id"`
	Article    int                  `json:"article"`
	Type       extract.QuestionType `json:"type"`
	Status     JobStatus            `json:"status"`
	Phase      string               `json:"phase"`
	Progress   Progress             `json:"progress"`
	Candidates []Candidate          `json:"candidates"`
}

// Snapshot returns a JSON-safe copy of the job state. Candidates are listed
// once generation has finished.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	candidates := []Candidate{}
	if j.Status == StatusCompleted || j.Status == StatusPartial || j.Status == StatusFailed {
		for _, c := range j.candidates {
			c.ChunkIndices = append([]int(nil), c.ChunkIndices...)
			candidates = append(candidates, c)
		}
	}
	return JobSnapshot{
		ID:        j.ID,
		SessionID: j.SessionID,
		Article:   j.ArticleIndex,
		Type:      j.Type,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress: Progress{
			Total:     j.Progress.Total,
			Processed: j.Progress.Processed,
			Generated: j.Progress.Generated,
			Errors:    errs,
		},
		Candidates: candidates,
	}
}
