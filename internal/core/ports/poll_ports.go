package ports

import "github.com/vncsmyrnk/classpoll/internal/core/domain"

type CreatePollInput struct {
	SessionID     string
	Question      string
	Options       []string
	CorrectAnswer string
}

type SubmitAnswerInput struct {
	PollID          int64
	ConnID          string
	ParticipantName string
	OptionIndex     int
}

// PollRegistry owns every Poll record. Returned polls are copies.
type PollRegistry interface {
	Create(input CreatePollInput) (*domain.Poll, error)
	SubmitAnswer(input SubmitAnswerInput) (*domain.Poll, error)
	// Finalize closes an active poll. The bool reports whether this call did the
	// transition; a poll already closed is returned unchanged with false.
	Finalize(pollID int64) (*domain.Poll, bool, error)
	Get(pollID int64) (*domain.Poll, error)
	GetActive(sessionID string) (*domain.Poll, bool)
	GetLatestClosed(sessionID string) (*domain.Poll, bool)
}
