package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

type EngineConfig struct {
	PollDuration   time.Duration
	PersistTimeout time.Duration
	PersistRetries uint64
}

// SessionEngine turns inbound connection events into registry operations and
// outbound events. Events are processed one at a time under mu; only result
// persistence runs outside of it.
type SessionEngine struct {
	mu       sync.Mutex
	polls    ports.PollRegistry
	sessions ports.SessionRegistry
	notifier ports.Notifier
	results  ports.PollResultRepository
	clock    ports.Clock
	logger   *slog.Logger
	cfg      EngineConfig

	timers  map[int64]ports.Timer
	closing bool
	wg      sync.WaitGroup
}

func NewSessionEngine(
	polls ports.PollRegistry,
	sessions ports.SessionRegistry,
	notifier ports.Notifier,
	results ports.PollResultRepository,
	clock ports.Clock,
	logger *slog.Logger,
	cfg EngineConfig,
) *SessionEngine {
	if cfg.PollDuration <= 0 {
		cfg.PollDuration = 60 * time.Second
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &SessionEngine{
		polls:    polls,
		sessions: sessions,
		notifier: notifier,
		results:  results,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
		timers:   make(map[int64]ports.Timer),
	}
}

func (e *SessionEngine) PresenterJoin(connID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.sessions.Open(connID)
	if err != nil {
		return e.reject(connID, ports.EventError, err)
	}

	e.logger.Info("session created", slog.String("session_id", session.ID))
	e.notifier.Send(connID, ports.EventSessionCreated, SessionCreatedPayload{SessionID: session.ID})
	return nil
}

func (e *SessionEngine) ParticipantJoin(connID, sessionID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return e.reject(connID, ports.EventJoinError, fmt.Errorf("%w: name is required", domain.ErrInvalidInput))
	}

	session, err := e.sessions.Join(sessionID, connID, name)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			err = fmt.Errorf("invalid session ID: %w", err)
		}
		return e.reject(connID, ports.EventJoinError, err)
	}

	e.logger.Info("participant joined",
		slog.String("session_id", sessionID),
		slog.String("conn_id", connID),
		slog.String("name", name),
	)
	e.notifier.Send(connID, ports.EventJoinSuccess, JoinSuccessPayload{
		SessionID: sessionID,
		Message:   fmt.Sprintf("Joined session %s", sessionID),
	})
	e.notifier.Send(session.PresenterConnID, ports.EventStudentsList, StudentsPayload{Students: session.Participants})

	if poll, ok := e.polls.GetActive(sessionID); ok {
		e.notifier.Send(connID, ports.EventNewQuestion, newQuestionPayload(poll, e.cfg.PollDuration))
	}
	return nil
}

func (e *SessionEngine) CreateQuestion(connID string, req ports.CreateQuestionRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.sessions.Get(connID)
	if err != nil {
		return e.reject(connID, ports.EventError, domain.ErrNoSession)
	}

	poll, err := e.polls.Create(ports.CreatePollInput{
		SessionID:     session.ID,
		Question:      req.Question,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
	})
	if err != nil {
		return e.reject(connID, ports.EventError, err)
	}

	pollID := poll.ID
	e.timers[pollID] = e.clock.AfterFunc(e.cfg.PollDuration, func() {
		e.onPollTimeout(pollID)
	})

	e.logger.Info("poll created",
		slog.String("session_id", session.ID),
		slog.Int64("poll_id", pollID),
		slog.String("question", poll.Question),
	)
	e.broadcast(session, ports.EventNewQuestion, newQuestionPayload(poll, e.cfg.PollDuration))
	return nil
}

// CloseQuestion lets the presenter end the active poll before its timer.
func (e *SessionEngine) CloseQuestion(connID string) error {
	e.mu.Lock()
	session, err := e.sessions.Get(connID)
	if err != nil {
		e.mu.Unlock()
		return e.reject(connID, ports.EventError, domain.ErrNoSession)
	}
	poll, ok := e.polls.GetActive(session.ID)
	if !ok {
		e.mu.Unlock()
		return e.reject(connID, ports.EventError, domain.ErrPollNotActive)
	}
	closed, done := e.finalizeLocked(poll.ID, "presenter")
	e.mu.Unlock()

	if closed != nil {
		defer done()
		e.persist(context.Background(), closed)
	}
	return nil
}

func (e *SessionEngine) SubmitAnswer(connID string, req ports.SubmitAnswerRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.sessions.Get(req.SessionID)
	if err != nil {
		return e.reject(connID, ports.EventError, err)
	}
	poll, ok := e.polls.GetActive(session.ID)
	if !ok {
		return e.reject(connID, ports.EventError, domain.ErrPollNotActive)
	}
	if req.OptionIndex == nil {
		return e.reject(connID, ports.EventError, fmt.Errorf("%w: optionIndex is required", domain.ErrInvalidOption))
	}
	option := *req.OptionIndex

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _ = session.ParticipantName(connID)
	}

	updated, err := e.polls.SubmitAnswer(ports.SubmitAnswerInput{
		PollID:          poll.ID,
		ConnID:          connID,
		ParticipantName: name,
		OptionIndex:     option,
	})
	if err != nil {
		return e.reject(connID, ports.EventError, err)
	}

	e.logger.Info("answer submitted",
		slog.String("session_id", session.ID),
		slog.Int64("poll_id", poll.ID),
		slog.String("name", name),
		slog.Int("option", option),
	)
	e.broadcast(session, ports.EventPollUpdate, newResultsPayload(updated))
	return nil
}

func (e *SessionEngine) GetActiveQuestion(connID, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.sessions.Get(sessionID); err != nil {
		return e.reject(connID, ports.EventError, err)
	}
	poll, ok := e.polls.GetActive(sessionID)
	if !ok {
		return e.reject(connID, ports.EventError, domain.ErrPollNotActive)
	}

	e.notifier.Send(connID, ports.EventNewQuestion, newQuestionPayload(poll, e.cfg.PollDuration))
	return nil
}

func (e *SessionEngine) GetFinalResult(connID, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.sessions.Get(sessionID); err != nil {
		return e.reject(connID, ports.EventError, err)
	}
	poll, ok := e.polls.GetLatestClosed(sessionID)
	if !ok {
		return e.reject(connID, ports.EventError, domain.ErrNoClosedPoll)
	}

	e.notifier.Send(connID, ports.EventPollResults, newResultsPayload(poll))
	return nil
}

func (e *SessionEngine) GetStudents(connID, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.sessions.Get(sessionID)
	if err != nil {
		return e.reject(connID, ports.EventError, err)
	}

	e.notifier.Send(connID, ports.EventStudentsList, StudentsPayload{Students: session.Participants})
	return nil
}

// Disconnect ends the session owned by connID, force-closing its active poll,
// or removes connID from whichever roster holds it. Recorded answers stay.
func (e *SessionEngine) Disconnect(connID string) {
	e.mu.Lock()

	// a presenter may also sit in another session's roster
	e.leaveRosterLocked(connID)

	session, err := e.sessions.Get(connID)
	if err != nil {
		e.mu.Unlock()
		return
	}

	var closed *domain.Poll
	done := func() {}
	if poll, ok := e.polls.GetActive(session.ID); ok {
		closed, done = e.finalizeLocked(poll.ID, "presenter disconnected")
	}

	ended, err := e.sessions.Close(connID)
	if err == nil {
		for _, p := range ended.Participants {
			e.notifier.Send(p.ConnID, ports.EventSessionEnded, MessagePayload{Message: "Teacher disconnected"})
		}
		e.logger.Info("session ended", slog.String("session_id", ended.ID), slog.Int("participants", len(ended.Participants)))
	}
	e.mu.Unlock()

	if closed != nil {
		defer done()
		e.persist(context.Background(), closed)
	}
}

func (e *SessionEngine) leaveRosterLocked(connID string) {
	sessionID, removed := e.sessions.RemoveParticipant(connID)
	if !removed {
		return
	}
	e.logger.Info("participant left", slog.String("session_id", sessionID), slog.String("conn_id", connID))
	if s, err := e.sessions.Get(sessionID); err == nil {
		e.notifier.Send(s.PresenterConnID, ports.EventStudentsList, StudentsPayload{Students: s.Participants})
	}
}

// Shutdown stops pending timers, closes every poll they guarded and waits for
// in-flight persistence to finish or ctx to expire. Saves started by Shutdown
// are abandoned once ctx is done.
func (e *SessionEngine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closing = true
	var closed []*domain.Poll
	for pollID := range e.timers {
		if poll, _ := e.finalizeLocked(pollID, "shutdown"); poll != nil {
			closed = append(closed, poll)
		}
	}
	e.mu.Unlock()

	for _, poll := range closed {
		e.wg.Add(1)
		go func(poll *domain.Poll) {
			defer e.wg.Done()
			e.persist(ctx, poll)
		}(poll)
	}

	drained := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("result persistence drain timeout: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("result persistence drain timeout: %w", ctx.Err())
	}
}

func (e *SessionEngine) onPollTimeout(pollID int64) {
	e.mu.Lock()
	if e.closing {
		e.mu.Unlock()
		return
	}
	closed, done := e.finalizeLocked(pollID, "timer")
	e.mu.Unlock()

	if closed != nil {
		defer done()
		e.persist(context.Background(), closed)
	}
}

// finalizeLocked is the single close transition for timer, presenter and
// shutdown triggers. It returns the closed poll only to the caller that
// performed the transition, together with a func that must be called once the
// poll has been persisted.
func (e *SessionEngine) finalizeLocked(pollID int64, trigger string) (*domain.Poll, func()) {
	if t, ok := e.timers[pollID]; ok {
		t.Stop()
		delete(e.timers, pollID)
	}

	poll, changed, err := e.polls.Finalize(pollID)
	if err != nil {
		e.logger.Error("failed to finalize poll", slog.Int64("poll_id", pollID), slog.String("error", err.Error()))
		return nil, nil
	}
	if !changed {
		return nil, nil
	}

	e.logger.Info("poll closed",
		slog.String("session_id", poll.SessionID),
		slog.Int64("poll_id", poll.ID),
		slog.String("trigger", trigger),
		slog.Int("total_votes", len(poll.Answers)),
	)
	if session, err := e.sessions.Get(poll.SessionID); err == nil {
		e.broadcast(session, ports.EventPollResults, newResultsPayload(poll))
	}

	if e.closing {
		return poll, func() {}
	}
	e.wg.Add(1)
	return poll, e.wg.Done
}

// persist writes the final record with bounded retry. Failures are logged only:
// the in-memory closed poll stays authoritative.
func (e *SessionEngine) persist(parent context.Context, poll *domain.Poll) {
	if e.results == nil {
		return
	}
	record := domain.NewPollResult(poll)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(parent, e.cfg.PersistTimeout)
		defer cancel()
		return e.results.Save(ctx, record)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, e.cfg.PersistRetries), parent))
	if err != nil {
		err = fmt.Errorf("%w %d: %w", domain.ErrPersistence, poll.ID, err)
		e.logger.Error("poll result not persisted", slog.Int64("poll_id", poll.ID), slog.String("error", err.Error()))
		return
	}

	e.logger.Debug("poll result persisted", slog.Int64("poll_id", poll.ID), slog.Int("total_votes", record.TotalVotes))
}

func (e *SessionEngine) broadcast(session *domain.Session, event string, payload any) {
	for _, connID := range session.Members() {
		e.notifier.Send(connID, event, payload)
	}
}

// reject reports err to the originating connection only.
func (e *SessionEngine) reject(connID, event string, err error) error {
	e.logger.Debug("request rejected", slog.String("conn_id", connID), slog.String("error", err.Error()))
	e.notifier.Send(connID, event, MessagePayload{Message: err.Error()})
	return err
}
