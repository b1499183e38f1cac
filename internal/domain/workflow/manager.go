package workflow

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type sessionKey struct {
	operatorID     int64
	deliveryNoteID int64
}

// SessionManager owns the open sessions and evicts idle ones.
type SessionManager struct {
	attempter Attempter
	ttl       time.Duration
	log       *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*Session

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSessionManager(attempter Attempter, idleTTL time.Duration, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		attempter: attempter,
		ttl:       idleTTL,
		log:       log,
		now:       time.Now,
		sessions:  make(map[sessionKey]*Session),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Get returns the session for the pair, opening one if needed.
func (m *SessionManager) Get(operatorID, deliveryNoteID int64) *Session {
	key := sessionKey{operatorID, deliveryNoteID}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := NewSession(operatorID, deliveryNoteID, m.attempter)
	s.now = m.now
	s.lastActive = m.now()
	m.sessions[key] = s
	return s
}

func (m *SessionManager) Lookup(operatorID, deliveryNoteID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{operatorID, deliveryNoteID}]
	return s, ok
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a submit in flight are kept.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for key, s := range m.sessions {
		last, idle := s.idleSince()
		if idle && last.Before(cutoff) {
			delete(m.sessions, key)
			evicted++
		}
	}
	return evicted
}

// Start runs the janitor until Stop is called.
func (m *SessionManager) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.log.Debug("idle sessions evicted", zap.Int("count", n))
				}
			}
		}
	}()
}

// Stop ends the janitor and waits for it. Calling Stop without Start is fine.
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	if m.started.Load() {
		<-m.done
	}
}
