package services

import (
	"time"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
)

type SessionCreatedPayload struct {
	SessionID string `json:"sessionId"`
}

type JoinSuccessPayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type MessagePayload struct {
	Message string `json:"message"`
}

type QuestionPayload struct {
	PollID          int64             `json:"pollId"`
	SessionID       string            `json:"sessionId"`
	Question        string            `json:"question"`
	Options         []string          `json:"options"`
	Status          domain.PollStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	ExpiresAt       time.Time         `json:"expiresAt"`
	DurationSeconds int               `json:"durationSeconds"`
}

type ResultsPayload struct {
	PollID        int64                `json:"pollId"`
	Question      string               `json:"question"`
	Status        domain.PollStatus    `json:"status"`
	Options       []domain.OptionTally `json:"options"`
	TotalVotes    int                  `json:"totalVotes"`
	CorrectAnswer string               `json:"correctAnswer,omitempty"`
}

type StudentsPayload struct {
	Students []domain.Participant `json:"students"`
}

func newQuestionPayload(p *domain.Poll, duration time.Duration) QuestionPayload {
	return QuestionPayload{
		PollID:          p.ID,
		SessionID:       p.SessionID,
		Question:        p.Question,
		Options:         p.Labels(),
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		ExpiresAt:       p.CreatedAt.Add(duration),
		DurationSeconds: int(duration / time.Second),
	}
}

// newResultsPayload reveals the correct answer only once the poll is closed.
func newResultsPayload(p *domain.Poll) ResultsPayload {
	tally := p.Tally()
	payload := ResultsPayload{
		PollID:     p.ID,
		Question:   p.Question,
		Status:     p.Status,
		Options:    tally.Options,
		TotalVotes: tally.TotalAnswers,
	}
	if !p.IsActive() {
		payload.CorrectAnswer = p.CorrectAnswer
	}
	return payload
}
