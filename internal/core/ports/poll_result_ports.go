package ports

import (
	"context"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
)

// PollResultRepository is the durable archive of finalized polls.
type PollResultRepository interface {
	Save(ctx context.Context, result *domain.PollResult) error
	GetByPollID(ctx context.Context, pollID int64) (*domain.PollResult, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.PollResult, error)
}

type ResultService interface {
	GetPollResult(ctx context.Context, pollID string) (*domain.PollResult, error)
	ListSessionResults(ctx context.Context, sessionID string) ([]*domain.PollResult, error)
}
