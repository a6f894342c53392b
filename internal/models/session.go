package models

import "time"

// SessionType identifies the kind of practice conversation.
type SessionType string

const (
	SessionTypePractice SessionType = "practice"
	SessionTypeFree     SessionType = "free"
	SessionTypeRoleplay SessionType = "roleplay"
	SessionTypeScenario SessionType = "scenario"
)

// ValidSessionType reports whether t is one of the known session types.
func ValidSessionType(t SessionType) bool {
	switch t {
	case SessionTypePractice, SessionTypeFree, SessionTypeRoleplay, SessionTypeScenario:
		return true
	}
	return false
}

// Difficulty is the learner's proficiency level; it selects the teaching
// register of the system prompt.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Session is one real-time conversation between a learner and the AI
// teacher. RoomName is derived from ID and never changes; EndedAt is set
// exactly once when the conversation ends.
type Session struct {
	ID         string      `json:"id"`
	RoomName   string      `json:"room_name"`
	UserID     string      `json:"user_id,omitempty"`
	Type       SessionType `json:"type"`
	Difficulty Difficulty  `json:"difficulty"`
	Topic      string      `json:"topic,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	EndedAt    *time.Time  `json:"ended_at,omitempty"`
}

// Ended reports whether the session has been ended.
func (s *Session) Ended() bool {
	return s.EndedAt != nil
}
