package watermark

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	runs []Run
	// Err, when set, is returned by every method.
	Err error
}

func NewMemoryStore(seed ...Run) *MemoryStore {
	return &MemoryStore{runs: append([]Run(nil), seed...)}
}

func (s *MemoryStore) LastSuccessfulRun(_ context.Context, description string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return time.Time{}, s.Err
	}
	var best *Run
	for i := range s.runs {
		r := &s.runs[i]
		if r.Description != description || r.Status != StatusSuccessful || r.Finish == nil {
			continue
		}
		if best == nil || r.Finish.After(*best.Finish) {
			best = r
		}
	}
	if best == nil {
		return Epoch, nil
	}
	return best.Start, nil
}

func (s *MemoryStore) RecordRunStart(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *MemoryStore) RecordRunOutcome(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.runs {
		if s.runs[i].Description == run.Description && s.runs[i].Start.Equal(run.Start) {
			s.runs[i].Finish = run.Finish
			s.runs[i].ExecutionTime = run.ExecutionTime
			s.runs[i].Status = run.Status
		}
	}
	return nil
}

// Runs returns a copy of every entry.
func (s *MemoryStore) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Run(nil), s.runs...)
}
