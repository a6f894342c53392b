package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
)

// roomNamePrefix is prepended to every derived room name so that rooms
// created by this service are distinguishable in the room provider.
const roomNamePrefix = "practice-"

// RoomName derives the media room name for a session id. It is a pure
// function of the id: the same id always yields the same room name, which
// is what lets the cleanup sweep find a session from a bare room name.
func RoomName(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 12 {
		compact = compact[:12]
	}
	return roomNamePrefix + compact
}

// CreateRequest carries the caller-supplied fields of a new session.
// Enum validation happens at the edge; the store applies defaults only.
type CreateRequest struct {
	UserID     string
	Type       models.SessionType
	Difficulty models.Difficulty
	Topic      string
}

// Store tracks live conversation sessions in process memory. The durable
// mirror of these records lives in the persistence layer; the store is the
// source of truth only for liveness.
type Store interface {
	Create(req CreateRequest) *models.Session
	Get(id string) (*models.Session, bool)
	GetByRoomName(roomName string) (*models.Session, bool)
	End(id string)
	List(activeOnly bool) []*models.Session
}

type memoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.Session
	byRoom map[string]string // room name -> session id
	now    func() time.Time
}

// NewStore returns an in-memory session store safe for concurrent use.
func NewStore() Store {
	return &memoryStore{
		byID:   make(map[string]*models.Session),
		byRoom: make(map[string]string),
		now:    time.Now,
	}
}

func (s *memoryStore) Create(req CreateRequest) *models.Session {
	id := uuid.New().String()

	sess := &models.Session{
		ID:         id,
		RoomName:   RoomName(id),
		UserID:     req.UserID,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		Topic:      req.Topic,
		CreatedAt:  s.now().UTC(),
	}
	if sess.Type == "" {
		sess.Type = models.SessionTypeFree
	}
	if sess.Difficulty == "" {
		sess.Difficulty = models.DifficultyBeginner
	}

	s.mu.Lock()
	s.byID[id] = sess
	s.byRoom[sess.RoomName] = id
	s.mu.Unlock()

	return s.snapshot(sess)
}

func (s *memoryStore) Get(id string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.snapshot(sess), true
}

func (s *memoryStore) GetByRoomName(roomName string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRoom[roomName]
	if !ok {
		return nil, false
	}
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.snapshot(sess), true
}

// End marks the session ended. It is idempotent: a second call keeps the
// original EndedAt, and ending an unknown id is a no-op since the caller
// may be racing with the cleanup sweep.
func (s *memoryStore) End(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok || sess.EndedAt != nil {
		return
	}
	ended := s.now().UTC()
	sess.EndedAt = &ended
}

func (s *memoryStore) List(activeOnly bool) []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(s.byID))
	for _, sess := range s.byID {
		if activeOnly && sess.EndedAt != nil {
			continue
		}
		sessions = append(sessions, s.snapshot(sess))
	}
	return sessions
}

// snapshot copies a session so callers never share the mutable record.
// Callers must hold at least the read lock.
func (s *memoryStore) snapshot(sess *models.Session) *models.Session {
	cp := *sess
	if sess.EndedAt != nil {
		ended := *sess.EndedAt
		cp.EndedAt = &ended
	}
	return &cp
}
