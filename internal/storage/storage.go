package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// JobStore keeps split jobs in memory for the lifetime of the server
type JobStore struct {
	jobs map[string]*models.Job
	mu   sync.RWMutex
}

func New() *JobStore {
	return &JobStore{
		jobs: make(map[string]*models.Job),
	}
}

func (s *JobStore) Get(jobID string) (*models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

func (s *JobStore) Set(jobID string, job *models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = job
}

// List returns all jobs, newest first
func (s *JobStore) List() []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// RemoveCreatedBefore drops every job created before cutoff and returns them
func (s *JobStore) RemoveCreatedBefore(cutoff time.Time) []*models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*models.Job
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			removed = append(removed, job)
			delete(s.jobs, id)
		}
	}
	return removed
}

// Delete removes a job and returns it, if present
func (s *JobStore) Delete(jobID string) (*models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	delete(s.jobs, jobID)
	return job, exists
}
