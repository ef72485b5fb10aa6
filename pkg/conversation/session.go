// Package conversation drives the chat-style meal logging flow. Transition is
// a pure state machine; Runner performs the effects it asks for and Manager
// keeps the live sessions in memory.
package conversation

import (
	"time"

	"github.com/google/uuid"

	"glucolog/domain"
)

type State string

const (
	StatePhotoCapture         State = "photo-capture"
	StateTextFallback         State = "text-fallback"
	StateDescribing           State = "describing"
	StatePortionClarification State = "awaiting-portion"
	StateMealTypeSelection    State = "awaiting-meal-type"
	StateReadyToLog           State = "ready-to-log"
	StateDone                 State = "done"
	StateCancelled            State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role     Role      `json:"role"`
	Text     string    `json:"text"`
	ImageRef string    `json:"imageRef,omitempty"`
	At       time.Time `json:"at"`
}

// Draft is the meal being assembled.
type Draft struct {
	Description      string          `json:"description"`
	EstimatedCarbs   float64         `json:"estimatedCarbs"`
	EstimatedSugar   float64         `json:"estimatedSugar"`
	AISummary        string          `json:"aiSummary,omitempty"`
	CarbSource       string          `json:"carbSource,omitempty"`
	PhotoURL         string          `json:"photoUrl,omitempty"`
	MealType         domain.MealType `json:"mealType,omitempty"`
	Recommendations  []string        `json:"recommendations,omitempty"`
	PendingQuestions []string        `json:"pendingQuestions,omitempty"`
	Advisory         string          `json:"error,omitempty"`
}

type Session struct {
	ID            string       `json:"id"`
	UserID        *uuid.UUID   `json:"-"`
	State         State        `json:"state"`
	Messages      []Message    `json:"messages"`
	Draft         Draft        `json:"draft"`
	EditingMealID string       `json:"editingMealId,omitempty"`
	SavedMealID   string       `json:"savedMealId,omitempty"`
	Pending       []EffectKind `json:"pending,omitempty"`
	LastActivity  time.Time    `json:"lastActivity"`
}

// clone copies the slices so a transition never writes into a session value
// still held by someone else.
func (s Session) clone() Session {
	c := s
	c.Messages = append([]Message(nil), s.Messages...)
	c.Pending = append([]EffectKind(nil), s.Pending...)
	c.Draft.Recommendations = append([]string(nil), s.Draft.Recommendations...)
	c.Draft.PendingQuestions = append([]string(nil), s.Draft.PendingQuestions...)
	if s.UserID != nil {
		owner := *s.UserID
		c.UserID = &owner
	}
	return c
}
