package ports

import "github.com/vncsmyrnk/classpoll/internal/core/domain"

// SessionRegistry owns session membership. It knows nothing about polls.
type SessionRegistry interface {
	Open(presenterConnID string) (*domain.Session, error)
	Join(sessionID, connID, name string) (*domain.Session, error)
	RemoveParticipant(connID string) (sessionID string, removed bool)
	Close(presenterConnID string) (*domain.Session, error)
	Get(sessionID string) (*domain.Session, error)
}

type SessionEngine interface {
	PresenterJoin(connID string) error
	ParticipantJoin(connID, sessionID, name string) error
	CreateQuestion(connID string, req CreateQuestionRequest) error
	CloseQuestion(connID string) error
	SubmitAnswer(connID string, req SubmitAnswerRequest) error
	GetActiveQuestion(connID, sessionID string) error
	GetFinalResult(connID, sessionID string) error
	GetStudents(connID, sessionID string) error
	Disconnect(connID string)
}

type CreateQuestionRequest struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

type SubmitAnswerRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	// OptionIndex is nil when the client omitted it.
	OptionIndex *int `json:"optionIndex"`
}
