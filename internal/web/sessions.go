package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zjregee/scout/internal/session"
)

const (
	sessionCookie = "scout_session"

	defaultSessionIdleTTL = 12 * time.Hour
	defaultMaxSessions    = 1000
)

type sessionEntry struct {
	session  *session.Session
	lastSeen time.Time
}

// sessionStore keeps browser sessions in memory. Sessions idle for longer
// than idleTTL are dropped, and when maxSessions is reached the least
// recently seen session is evicted. Evicting a session only forgets its
// transcript; the thread stays in the checkpoint store.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry

	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions:    make(map[string]*sessionEntry),
		idleTTL:     defaultSessionIdleTTL,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
	}
}

func (st *sessionStore) get(id string) (*session.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	entry, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(entry.lastSeen) > st.idleTTL {
		delete(st.sessions, id)
		return nil, false
	}
	entry.lastSeen = now
	return entry.session, true
}

func (st *sessionStore) create() (string, *session.Session) {
	id := uuid.NewString()
	s := session.New("web", "")

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.evictLocked(now)
	st.sessions[id] = &sessionEntry{session: s, lastSeen: now}
	return id, s
}

// evictLocked drops idle sessions, then the oldest ones until there is room
// for one more.
func (st *sessionStore) evictLocked(now time.Time) {
	for id, entry := range st.sessions {
		if now.Sub(entry.lastSeen) > st.idleTTL {
			delete(st.sessions, id)
		}
	}

	for st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, entry := range st.sessions {
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID, oldest = id, entry.lastSeen
			}
		}
		delete(st.sessions, oldestID)
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// resolve returns the caller's session. When the request carries no known
// session cookie a new session is created and its cookie is returned too.
func (st *sessionStore) resolve(c echo.Context) (*session.Session, *http.Cookie) {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		if s, ok := st.get(cookie.Value); ok {
			return s, nil
		}
	}

	id, s := st.create()
	return s, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(st.idleTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
