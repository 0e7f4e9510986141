package relay

import (
	"sync"

	"github.com/google/uuid"
)

type Repository interface {
	// Add adds session to the repository
	Add(session *Session)
	// Delete deletes session from the repository
	Delete(session *Session)
	// All returns live sessions in no particular order
	All() []*Session
	Len() int
}

type DefaultRepository struct {
	byID map[uuid.UUID]*Session
}

func NewDefaultRepository() Repository {
	return &DefaultRepository{byID: make(map[uuid.UUID]*Session)}
}

func (r *DefaultRepository) Add(session *Session) {
	r.byID[session.ID()] = session
}

func (r *DefaultRepository) Delete(session *Session) {
	delete(r.byID, session.ID())
}

func (r *DefaultRepository) All() []*Session {
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

func (r *DefaultRepository) Len() int {
	return len(r.byID)
}

type ConcurrentRepository struct {
	mu         sync.RWMutex
	repository Repository
}

func NewConcurrentRepository(repository Repository) Repository {
	return &ConcurrentRepository{repository: repository}
}

func (c *ConcurrentRepository) Add(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repository.Add(session)
}

func (c *ConcurrentRepository) Delete(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repository.Delete(session)
}

func (c *ConcurrentRepository) All() []*Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repository.All()
}

func (c *ConcurrentRepository) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repository.Len()
}
