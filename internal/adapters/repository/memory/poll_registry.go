package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

type pollRegistry struct {
	mu        sync.Mutex
	now       func() time.Time
	nextID    int64
	polls     map[int64]*domain.Poll
	bySession map[string][]int64
}

// NewPollRegistry allocates poll ids upward from firstID. Seeding firstID from
// the wall clock keeps ids unique across restarts sharing one result archive.
func NewPollRegistry(now func() time.Time, firstID int64) ports.PollRegistry {
	if now == nil {
		now = time.Now
	}
	return &pollRegistry{
		now:       now,
		nextID:    firstID - 1,
		polls:     make(map[int64]*domain.Poll),
		bySession: make(map[string][]int64),
	}
}

func (r *pollRegistry) Create(input ports.CreatePollInput) (*domain.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if input.SessionID == "" || question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	options, err := normalizeOptions(input.Options)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.activeLocked(input.SessionID); ok {
		return nil, domain.ErrPollAlreadyActive
	}

	r.nextID++
	poll := &domain.Poll{
		ID:            r.nextID,
		SessionID:     input.SessionID,
		Question:      question,
		Options:       options,
		CorrectAnswer: strings.TrimSpace(input.CorrectAnswer),
		Status:        domain.PollStatusActive,
		CreatedAt:     r.now(),
	}
	r.polls[poll.ID] = poll
	r.bySession[input.SessionID] = append(r.bySession[input.SessionID], poll.ID)

	return poll.Clone(), nil
}

func normalizeOptions(raw []string) ([]domain.PollOption, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one option is required", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(raw))
	options := make([]domain.PollOption, 0, len(raw))
	for _, label := range raw {
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("%w: empty option", domain.ErrInvalidInput)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: duplicate option %q", domain.ErrInvalidInput, label)
		}
		seen[label] = struct{}{}
		options = append(options, domain.PollOption{Label: label})
	}
	return options, nil
}

func (r *pollRegistry) SubmitAnswer(input ports.SubmitAnswerInput) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[input.PollID]
	if !ok || !poll.IsActive() {
		return nil, domain.ErrPollNotActive
	}
	for _, ans := range poll.Answers {
		if ans.ConnID == input.ConnID {
			return nil, domain.ErrDuplicateVote
		}
	}
	if input.OptionIndex < 0 || input.OptionIndex >= len(poll.Options) {
		return nil, domain.ErrInvalidOption
	}

	poll.Answers = append(poll.Answers, domain.Answer{
		ParticipantName: input.ParticipantName,
		ConnID:          input.ConnID,
		OptionIndex:     input.OptionIndex,
		AnsweredAt:      r.now(),
	})
	poll.Options[input.OptionIndex].Count++

	return poll.Clone(), nil
}

func (r *pollRegistry) Finalize(pollID int64) (*domain.Poll, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[pollID]
	if !ok {
		return nil, false, domain.ErrPollNotFound
	}
	if !poll.IsActive() {
		return poll.Clone(), false, nil
	}

	closedAt := r.now()
	poll.Status = domain.PollStatusClosed
	poll.ClosedAt = &closedAt

	return poll.Clone(), true, nil
}

func (r *pollRegistry) Get(pollID int64) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll.Clone(), nil
}

func (r *pollRegistry) GetActive(sessionID string) (*domain.Poll, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.activeLocked(sessionID)
	return poll.Clone(), ok
}

func (r *pollRegistry) GetLatestClosed(sessionID string) (*domain.Poll, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.bySession[sessionID]
	for i := len(ids) - 1; i >= 0; i-- {
		if poll := r.polls[ids[i]]; !poll.IsActive() {
			return poll.Clone(), true
		}
	}
	return nil, false
}

func (r *pollRegistry) activeLocked(sessionID string) (*domain.Poll, bool) {
	ids := r.bySession[sessionID]
	for i := len(ids) - 1; i >= 0; i-- {
		if poll := r.polls[ids[i]]; poll.IsActive() {
			return poll, true
		}
	}
	return nil, false
}
