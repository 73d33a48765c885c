package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

type resultService struct {
	repo ports.PollResultRepository
}

func NewResultService(repo ports.PollResultRepository) ports.ResultService {
	return &resultService{
		repo: repo,
	}
}

func (s *resultService) GetPollResult(ctx context.Context, id string) (*domain.PollResult, error) {
	pollID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || pollID <= 0 {
		return nil, fmt.Errorf("%w: invalid poll id", domain.ErrInvalidInput)
	}

	return s.repo.GetByPollID(ctx, pollID)
}

func (s *resultService) ListSessionResults(ctx context.Context, sessionID string) ([]*domain.PollResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", domain.ErrInvalidInput)
	}

	results, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session results: %w", err)
	}
	if results == nil {
		results = []*domain.PollResult{}
	}
	return results, nil
}
