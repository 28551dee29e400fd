package memory

import (
	"context"
	"sync"
	"time"

	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// maxStoredMessages caps a session so an idle tab cannot grow it forever.
const maxStoredMessages = 100

// SessionRepository keeps conversation history in process memory.
type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

var _ contract.HistoryRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	// Sessions expire after an hour idle; expired items are purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Load(ctx context.Context, sessionId string, limit int) ([]llm.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, found := r.Get(sessionId)
	if !found {
		return []llm.Message{}, nil
	}
	return session.Tail(limit), nil
}

func (r *SessionRepository) Append(ctx context.Context, sessionId string, messages ...llm.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, found := r.Get(sessionId)
	if !found {
		session = &store.Session{ID: sessionId}
	}
	next := &store.Session{
		ID:        sessionId,
		Messages:  append(session.Tail(maxStoredMessages), messages...),
		UpdatedAt: time.Now(),
	}
	if len(next.Messages) > maxStoredMessages {
		next.Messages = next.Tail(maxStoredMessages)
	}
	r.Save(next)
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context, sessionId string) error {
	r.Delete(sessionId)
	return nil
}
