package dataset

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one user's working set: fetched articles and confirmed QA pairs.
// Articles are append-only; QA pairs can be appended and removed by id.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	articles []Article
	qa       []QAPair
}

// AddArticles appends articles and returns the index of the first one.
func (s *Session) AddArticles(articles ...Article) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.articles)
	s.articles = append(s.articles, articles...)
	s.UpdatedAt = time.Now()
	return first
}

// Articles returns a copy of the session's articles.
func (s *Session) Articles() []Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Article(nil), s.articles...)
}

// Article returns the article at index i.
func (s *Session) Article(i int) (Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.articles) {
		return Article{}, false
	}
	return s.articles[i], true
}

func (s *Session) AddQA(pair QAPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qa = append(s.qa, pair)
	s.UpdatedAt = time.Now()
}

// QAPairs returns a copy of the confirmed pairs in confirmation order.
func (s *Session) QAPairs() []QAPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]QAPair(nil), s.qa...)
}

// RemoveQA deletes the pair with the given id. It reports whether one was found.
func (s *Session) RemoveQA(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.qa {
		if p.ID == id {
			s.qa = append(s.qa[:i], s.qa[i+1:]...)
			s.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// SessionStore is a thread-safe in-memory session registry with TTL eviction.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new empty session.
func (st *SessionStore) Create() *Session {
	now := time.Now()
	s := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return s
}

// Get returns the session and marks it as used, or nil if unknown.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	s := st.sessions[id]
	st.mu.Unlock()
	if s != nil {
		s.touch()
	}
	return s
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how many.
func (st *SessionStore) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.lastUsed()) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
