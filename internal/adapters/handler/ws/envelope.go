package ws

import "encoding/json"

// Inbound event names. The join-teacher and join-student aliases are accepted
// for older clients.
const (
	EventPresenterJoin     = "presenter-join"
	EventParticipantJoin   = "participant-join"
	EventCreateQuestion    = "create-question"
	EventCloseQuestion     = "close-question"
	EventSubmitAnswer      = "submit-answer"
	EventGetActiveQuestion = "get-active-question"
	EventGetFinalResult    = "get-final-result"
	EventGetStudents       = "get-students"

	eventJoinTeacher = "join-teacher"
	eventJoinStudent = "join-student"
)

// Envelope is the frame exchanged in both directions:
// {"event": "submit-answer", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}
