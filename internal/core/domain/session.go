package domain

import "time"

type Session struct {
	ID              string        `json:"id"`
	PresenterConnID string        `json:"presenterConnId"`
	Participants    []Participant `json:"participants"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type Participant struct {
	ConnID   string    `json:"socketId"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Participants = append([]Participant(nil), s.Participants...)
	return &c
}

// Members returns the presenter followed by every participant connection.
func (s *Session) Members() []string {
	ids := make([]string, 0, len(s.Participants)+1)
	ids = append(ids, s.PresenterConnID)
	for _, p := range s.Participants {
		ids = append(ids, p.ConnID)
	}
	return ids
}

func (s *Session) ParticipantName(connID string) (string, bool) {
	for _, p := range s.Participants {
		if p.ConnID == connID {
			return p.Name, true
		}
	}
	return "", false
}
