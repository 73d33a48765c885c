package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/classpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/classpoll/internal/core/domain"
)

func TestResultService(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollResultRepository()
	svc := NewResultService(repo)

	closedAt := time.Date(2025, 3, 1, 9, 1, 0, 0, time.UTC)
	poll := &domain.Poll{
		ID:        7,
		SessionID: "teacher",
		Question:  "Q",
		Options:   []domain.PollOption{{Label: "A", Count: 1}, {Label: "B"}},
		Status:    domain.PollStatusClosed,
		ClosedAt:  &closedAt,
		Answers:   []domain.Answer{{ConnID: "s1", OptionIndex: 0}},
	}
	require.NoError(t, repo.Save(ctx, domain.NewPollResult(poll)))

	result, err := svc.GetPollResult(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalVotes)
	assert.Equal(t, closedAt, result.CreatedAt)

	_, err = svc.GetPollResult(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.GetPollResult(ctx, "8")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	list, err := svc.ListSessionResults(ctx, "teacher")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListSessionResults(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.ListSessionResults(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
