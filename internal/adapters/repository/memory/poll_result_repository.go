package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

// pollResultRepository keeps finalized results for the process lifetime. It is
// used when no postgres database is configured.
type pollResultRepository struct {
	mu      sync.RWMutex
	results []*domain.PollResult
}

func NewPollResultRepository() ports.PollResultRepository {
	return &pollResultRepository{}
}

func (r *pollResultRepository) Save(ctx context.Context, result *domain.PollResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.results {
		if existing.PollID == result.PollID {
			r.results[i] = result
			return nil
		}
	}
	r.results = append(r.results, result)
	return nil
}

func (r *pollResultRepository) GetByPollID(ctx context.Context, pollID int64) (*domain.PollResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, result := range r.results {
		if result.PollID == pollID {
			return result, nil
		}
	}
	return nil, domain.ErrPollNotFound
}

func (r *pollResultRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.PollResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.PollResult
	for _, result := range r.results {
		if result.SessionID == sessionID {
			out = append(out, result)
		}
	}
	return out, nil
}
