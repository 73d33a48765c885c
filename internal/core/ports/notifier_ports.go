package ports

import "time"

// Outbound event names.
const (
	EventSessionCreated = "session-created"
	EventJoinSuccess    = "join-success"
	EventJoinError      = "join-error"
	EventNewQuestion    = "new-question"
	EventPollUpdate     = "poll-update"
	EventPollResults    = "poll-results"
	EventStudentsList   = "students-list"
	EventSessionEnded   = "session-ended"
	EventError          = "error"
)

// Notifier delivers an outbound event to one connection. Implementations must
// not block the caller.
type Notifier interface {
	Send(connID, event string, payload any)
}

type Timer interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}
