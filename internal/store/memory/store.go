// Package memory provides an in-process Store implementation. It backs the
// server by default and gives tests a real, race-safe store without external
// infrastructure.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/seconds-app/courier-bridge/internal/broker"
	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Store is an in-memory job store. All maps are guarded by one mutex; the
// finalized set doubles as the exactly-once gate for completion side effects.
type Store struct {
	mu         sync.Mutex
	byRef      map[string]*courier.Job
	byProvider map[string]string // provider/providerJobID -> reference
	attempted  map[string]bool
	finalized  map[string]bool
	orderSeq   int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byRef:      make(map[string]*courier.Job),
		byProvider: make(map[string]string),
		attempted:  make(map[string]bool),
		finalized:  make(map[string]bool),
	}
}

// CreateJob persists a newly brokered job.
func (s *Store) CreateJob(ctx context.Context, job *courier.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRef[job.Reference]; ok {
		return fmt.Errorf("job %s already exists", job.Reference)
	}
	copied := *job
	s.byRef[job.Reference] = &copied
	if job.Selected.ProviderJobID != "" {
		s.byProvider[providerKey(job.Selected.ProviderID, job.Selected.ProviderJobID)] = job.Reference
	}
	return nil
}

// FindJobByReference resolves a job by its reference.
func (s *Store) FindJobByReference(ctx context.Context, reference string) (*courier.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(reference)
}

// FindJobByProviderID resolves a job by a provider's own job id.
func (s *Store) FindJobByProviderID(ctx context.Context, provider, providerJobID string) (*courier.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reference, ok := s.byProvider[providerKey(provider, providerJobID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", courier.ErrJobNotFound, provider, providerJobID)
	}
	return s.lookup(reference)
}

// UpdateJob replaces the stored job.
func (s *Store) UpdateJob(ctx context.Context, job *courier.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRef[job.Reference]; !ok {
		return fmt.Errorf("%w: %s", courier.ErrJobNotFound, job.Reference)
	}
	copied := *job
	s.byRef[job.Reference] = &copied
	return nil
}

// NextOrderNumber returns the next job sequence number.
func (s *Store) NextOrderNumber(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderSeq++
	return s.orderSeq, nil
}

// MarkSubmissionAttempt records a submission attempt for a reference,
// returning false when one was already recorded.
func (s *Store) MarkSubmissionAttempt(ctx context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempted[reference] {
		return false, nil
	}
	s.attempted[reference] = true
	return true, nil
}

// FinalizeIfNotAlready marks the job finalized. It is a single test-and-set
// under the store mutex, so exactly one caller wins per reference.
func (s *Store) FinalizeIfNotAlready(ctx context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRef[reference]; !ok {
		return false, fmt.Errorf("%w: %s", courier.ErrJobNotFound, reference)
	}
	if s.finalized[reference] {
		return false, nil
	}
	s.finalized[reference] = true
	return true, nil
}

func (s *Store) lookup(reference string) (*courier.Job, error) {
	job, ok := s.byRef[reference]
	if !ok {
		return nil, fmt.Errorf("%w: %s", courier.ErrJobNotFound, reference)
	}
	copied := *job
	return &copied, nil
}

func providerKey(provider, providerJobID string) string {
	return provider + "/" + providerJobID
}

// Verify interface compliance.
var _ broker.Store = (*Store)(nil)
