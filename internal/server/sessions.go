package server

import (
	"sync"

	"github.com/google/uuid"

	"meetscribe/internal/ports"
	"meetscribe/internal/usecase"
)

// sessionStore holds one workspace per browser session. Nothing is persisted.
type sessionStore struct {
	summarizer ports.Summarizer

	mu         sync.RWMutex
	workspaces map[uuid.UUID]*usecase.Workspace
}

func newSessionStore(summarizer ports.Summarizer) *sessionStore {
	return &sessionStore{
		summarizer: summarizer,
		workspaces: make(map[uuid.UUID]*usecase.Workspace),
	}
}

func (s *sessionStore) create() (uuid.UUID, *usecase.Workspace) {
	id := uuid.New()
	ws := usecase.NewWorkspace(s.summarizer, nil)

	s.mu.Lock()
	s.workspaces[id] = ws
	s.mu.Unlock()
	return id, ws
}

func (s *sessionStore) get(raw string) (*usecase.Workspace, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return ws, nil
}

func (s *sessionStore) remove(raw string) bool {
	id, err := uuid.Parse(raw)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return false
	}
	delete(s.workspaces, id)
	return true
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}
