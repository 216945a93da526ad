package state

import (
	"errors"
	"strings"
	"time"
)

// DefaultHistorySize is how many past interactions are replayed to the team.
const DefaultHistorySize = 3

// SessionState is what the team remembers about one user's conversation.
type SessionState struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	ChannelType string `json:"channel_type"`

	// ActiveMember is the member that answered last; follow-ups usually stay with it.
	ActiveMember string        `json:"active_member,omitempty"`
	Interactions []Interaction `json:"interactions,omitempty"` // oldest first
	Summary      string        `json:"summary,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type Interaction struct {
	Member      string    `json:"member"`
	UserMessage string    `json:"user_message"`
	Reply       string    `json:"reply"`
	At          time.Time `json:"at"`
}

var (
	ErrInvalidTurn  = errors.New("interaction is incomplete")
	ErrInvalidOwner = errors.New("session user id is empty")
)

func NewSessionState(sessionID, userID, channelType string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:   sessionID,
		UserID:      userID,
		ChannelType: channelType,
		UpdatedAt:   now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Record appends a finished interaction and keeps only the newest keep entries.
func (s *SessionState) Record(turn Interaction, keep int) error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(turn.Member) == "" || strings.TrimSpace(turn.UserMessage) == "" {
		return ErrInvalidTurn
	}
	if keep <= 0 {
		keep = DefaultHistorySize
	}
	turn.At = turn.At.UTC()

	s.Interactions = append(s.Interactions, turn)
	if over := len(s.Interactions) - keep; over > 0 {
		s.Interactions = append([]Interaction(nil), s.Interactions[over:]...)
	}
	s.ActiveMember = turn.Member
	s.Touch(turn.At)
	return nil
}

// Recent returns up to n newest interactions, oldest first.
func (s *SessionState) Recent(n int) []Interaction {
	if s == nil || n <= 0 || len(s.Interactions) == 0 {
		return nil
	}
	start := len(s.Interactions) - n
	if start < 0 {
		start = 0
	}
	return append([]Interaction(nil), s.Interactions[start:]...)
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if strings.TrimSpace(s.UserID) == "" {
		return ErrInvalidOwner
	}
	for _, turn := range s.Interactions {
		if strings.TrimSpace(turn.Member) == "" || strings.TrimSpace(turn.UserMessage) == "" {
			return ErrInvalidTurn
		}
	}
	return nil
}

// SessionIDFor derives the team session key for a user on a channel.
func SessionIDFor(channelType, userID string) string {
	return strings.TrimSpace(channelType) + ":" + strings.TrimSpace(userID)
}
