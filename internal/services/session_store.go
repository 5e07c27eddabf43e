package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/logger"
)

// SessionStore keeps the live sessions in memory. Nothing survives a
// restart of the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Controller
	deps     ControllerDeps
	ttl      time.Duration
	logger   *zap.Logger
}

func NewSessionStore(deps ControllerDeps, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Controller),
		deps:     deps,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *SessionStore) Create() *Controller {
	controller := NewController(uuid.New(), s.deps)

	s.mu.Lock()
	s.sessions[controller.ID()] = controller
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String(logger.FieldSessionID, controller.ID().String()))
	return controller
}

func (s *SessionStore) Get(id uuid.UUID) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	controller, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return controller, nil
}

func (s *SessionStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL. Sessions waiting on
// an inference call are kept.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, controller := range s.sessions {
		if controller.busy() || now.Sub(controller.LastActivity()) < s.ttl {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}

	if evicted > 0 {
		s.logger.Info("expired sessions evicted", zap.Int("count", evicted), zap.Int("remaining", len(s.sessions)))
	}
	return evicted
}
