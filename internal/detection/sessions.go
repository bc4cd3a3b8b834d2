package detection

import (
	"context"
	"sync"

	"khetmitra-workers/internal/common/metrics"
)

// Sessions keeps at most one active job per session.
type Sessions struct {
	tracker *Tracker

	mu     sync.Mutex
	active map[string]*Handle
}

func NewSessions(t *Tracker) *Sessions {
	return &Sessions{tracker: t, active: make(map[string]*Handle)}
}

// Submit cancels the session's current job, if any, then starts a new one.
func (s *Sessions) Submit(ctx context.Context, sessionID string, sub Submission) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.active[sessionID]; ok {
		select {
		case <-prev.Done():
		default:
			metrics.DetectionJobsSuperseded.Inc()
		}
		prev.Cancel()
	}

	h := s.tracker.Start(ctx, sessionID, sub)
	s.active[sessionID] = h
	return h
}

// Active returns the session's current job.
func (s *Sessions) Active(sessionID string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.active[sessionID]
	return h, ok
}

// IsCurrent reports whether h is still the job the session is waiting on.
// Results from a handle that is no longer current are stale.
func (s *Sessions) IsCurrent(h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[h.session] == h
}

// Release forgets h if it is still the session's current job.
func (s *Sessions) Release(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[h.session] == h {
		delete(s.active, h.session)
	}
}

// Cancel stops the session's job, as when the farmer leaves the detection view.
func (s *Sessions) Cancel(sessionID string) bool {
	s.mu.Lock()
	h, ok := s.active[sessionID]
	delete(s.active, sessionID)
	s.mu.Unlock()

	if ok {
		h.Cancel()
	}
	return ok
}

// CancelAll stops every job. Used on shutdown.
func (s *Sessions) CancelAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.active))
	for id, h := range s.active {
		handles = append(handles, h)
		delete(s.active, id)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
