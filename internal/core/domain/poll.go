package domain

import "time"

type PollStatus string

const (
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

type Poll struct {
	ID            int64        `json:"id"`
	SessionID     string       `json:"sessionId"`
	Question      string       `json:"question"`
	Options       []PollOption `json:"options"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Status        PollStatus   `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	ClosedAt      *time.Time   `json:"closedAt,omitempty"`
	Answers       []Answer     `json:"-"`
}

type PollOption struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Answer is one participant connection's vote. A connection contributes at most
// one Answer per poll.
type Answer struct {
	ParticipantName string    `json:"participantName"`
	ConnID          string    `json:"connId"`
	OptionIndex     int       `json:"optionIndex"`
	AnsweredAt      time.Time `json:"answeredAt"`
}

func (p *Poll) IsActive() bool {
	return p.Status == PollStatusActive
}

func (p *Poll) Labels() []string {
	labels := make([]string, len(p.Options))
	for i, opt := range p.Options {
		labels[i] = opt.Label
	}
	return labels
}

// Clone returns a deep copy safe to hand out of a registry.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	c := *p
	c.Options = append([]PollOption(nil), p.Options...)
	c.Answers = append([]Answer(nil), p.Answers...)
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

func (p *Poll) Tally() Tally {
	return ComputeTally(p.Labels(), p.Answers)
}
