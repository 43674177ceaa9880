// Package job holds the in-process registry of analysis jobs. The store is
// the only state shared between the polling surface and the background
// pipeline runs: one orchestrator run is the single writer for its job,
// polling reads are concurrent snapshots.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/credence/internal/model"
)

// ErrNotFound is returned when a job ID is unknown or already evicted.
var ErrNotFound = errors.New("job not found")

// Store is a concurrency-safe job registry. Terminal jobs are retained for a
// bounded window and then evicted; in-flight jobs never expire.
type Store struct {
	jobs      *gocache.Cache
	mu        sync.Mutex // serializes read-modify-write in Update
	retention time.Duration
}

// NewStore creates a store that evicts terminal jobs retention after
// completion.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = 15 * time.Minute
	}
	return &Store{
		jobs:      gocache.New(retention, retention/2),
		retention: retention,
	}
}

// Create registers a new pending job for the given input and returns a
// snapshot of it. Job creation is the only synchronization point for
// request-ID issuance.
func (s *Store) Create(input model.AnalysisInput) model.AnalysisJob {
	j := model.AnalysisJob{
		ID:        uuid.NewString(),
		Status:    model.StatusPending,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
	s.jobs.Set(j.ID, j, gocache.NoExpiration)
	return j
}

// Get returns a snapshot of the job, or ErrNotFound.
func (s *Store) Get(id string) (model.AnalysisJob, error) {
	val, found := s.jobs.Get(id)
	if !found {
		return model.AnalysisJob{}, ErrNotFound
	}
	return val.(model.AnalysisJob), nil
}

// Update applies mutate atomically to the job. The stored value is replaced
// wholesale, so readers holding earlier snapshots are unaffected. When the
// mutation moves the job into a terminal state the retention clock starts.
func (s *Store) Update(id string, mutate func(*model.AnalysisJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, found := s.jobs.Get(id)
	if !found {
		return ErrNotFound
	}

	j := val.(model.AnalysisJob)
	mutate(&j)

	if j.Status.Terminal() {
		if j.CompletedAt == nil {
			now := time.Now().UTC()
			j.CompletedAt = &now
		}
		s.jobs.Set(id, j, s.retention)
		return nil
	}
	s.jobs.Set(id, j, gocache.NoExpiration)
	return nil
}

// Len reports the number of jobs currently retained.
func (s *Store) Len() int {
	return s.jobs.ItemCount()
}
