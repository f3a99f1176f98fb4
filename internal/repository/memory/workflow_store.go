package memory

import (
	"time"

	"clinical-docs-be/pkg/workflow"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// WorkflowStore keeps one workflow orchestrator per (operator, session) view.
// Entries are transient: an expired entry means the operator's unsaved
// selections are gone, matching the no-autosave contract.
type WorkflowStore struct {
	cache *cache.Cache
}

func NewWorkflowStore() *WorkflowStore {
	// Views idle for an hour are dropped; expired entries purged every 10 min.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &WorkflowStore{
		cache: c,
	}
}

func key(userId, sessionId uuid.UUID) string {
	return userId.String() + ":" + sessionId.String()
}

func (s *WorkflowStore) Save(userId, sessionId uuid.UUID, orch *workflow.Orchestrator) {
	s.cache.Set(key(userId, sessionId), orch, cache.DefaultExpiration)
}

func (s *WorkflowStore) Get(userId, sessionId uuid.UUID) (*workflow.Orchestrator, bool) {
	if x, found := s.cache.Get(key(userId, sessionId)); found {
		return x.(*workflow.Orchestrator), true
	}
	return nil, false
}

func (s *WorkflowStore) Delete(userId, sessionId uuid.UUID) {
	s.cache.Delete(key(userId, sessionId))
}
