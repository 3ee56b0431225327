package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dkaraca/briefly/internal/logger"
)

// Job is one scheduled pipeline trigger.
type Job struct {
	ID        string    `json:"id"`
	Spec      string    `json:"spec"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Runner is invoked on each trigger with the job's payload.
type Runner func(jobID string, payload any)

// Store schedules jobs on a cron runner. The pipeline itself stays
// stateless; the store owns all cross-run scheduling state.
type Store struct {
	mu      sync.Mutex
	cron    *cron.Cron
	runner  Runner
	jobs    map[string]Job
	entries map[string]cron.EntryID
}

func NewStore(runner Runner) *Store {
	s := &Store{
		cron:    cron.New(),
		runner:  runner,
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
	}
	s.cron.Start()
	return s
}

// Create registers a job under the given cron spec. Duplicate IDs are
// rejected.
func (s *Store) Create(id, spec string, payload any) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return Job{}, fmt.Errorf("job %s already exists", id)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		logger.Info().Str("job", id).Msg("Cron triggered, running job")
		s.runner(id, payload)
	})
	if err != nil {
		return Job{}, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	job := Job{ID: id, Spec: spec, Payload: payload, CreatedAt: time.Now()}
	s.jobs[id] = job
	s.entries[id] = entryID
	logger.Info().Str("job", id).Str("spec", spec).Msg("Job scheduled")
	return job, nil
}

// Remove unschedules and forgets a job.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	s.cron.Remove(entryID)
	delete(s.entries, id)
	delete(s.jobs, id)
	logger.Info().Str("job", id).Msg("Job removed")
	return nil
}

// List returns all scheduled jobs, ordered by ID.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stop halts the cron runner. Registered jobs are kept but no longer
// fire.
func (s *Store) Stop() {
	s.cron.Stop()
}
