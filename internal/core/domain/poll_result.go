package domain

import "time"

// PollResult is the durable record written once per finalized poll.
type PollResult struct {
	PollID        int64     `json:"pollId"`
	SessionID     string    `json:"sessionId"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer,omitempty"`
	Tally         Tally     `json:"results"`
	TotalVotes    int       `json:"totalVotes"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewPollResult(p *Poll) *PollResult {
	tally := p.Tally()
	createdAt := p.CreatedAt
	if p.ClosedAt != nil {
		createdAt = *p.ClosedAt
	}
	return &PollResult{
		PollID:        p.ID,
		SessionID:     p.SessionID,
		Question:      p.Question,
		Options:       p.Labels(),
		CorrectAnswer: p.CorrectAnswer,
		Tally:         tally,
		TotalVotes:    tally.TotalAnswers,
		CreatedAt:     createdAt,
	}
}
