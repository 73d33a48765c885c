package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

type pollResultRepository struct {
	db *sql.DB
}

func NewPollResultRepository(db *sql.DB) ports.PollResultRepository {
	return &pollResultRepository{
		db: db,
	}
}

// Save upserts by poll id so a retried write never produces a second row.
func (r *pollResultRepository) Save(ctx context.Context, result *domain.PollResult) error {
	options, err := json.Marshal(result.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	tally, err := json.Marshal(result.Tally)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	query := `
		INSERT INTO poll_results (poll_id, session_id, question, options, correct_answer, results, total_votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (poll_id) DO UPDATE
		SET results = EXCLUDED.results,
		    total_votes = EXCLUDED.total_votes;
	`
	_, err = r.db.ExecContext(ctx, query,
		result.PollID, result.SessionID, result.Question, string(options),
		result.CorrectAnswer, string(tally), result.TotalVotes, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save poll result %d: %w", result.PollID, err)
	}
	return nil
}

func (r *pollResultRepository) GetByPollID(ctx context.Context, pollID int64) (*domain.PollResult, error) {
	query := `
		SELECT poll_id, session_id, question, options, correct_answer, results, total_votes, created_at
		FROM poll_results
		WHERE poll_id = $1
	`
	result, err := scanResult(r.db.QueryRowContext(ctx, query, pollID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll result: %w", err)
	}
	return result, nil
}

func (r *pollResultRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.PollResult, error) {
	query := `
		SELECT poll_id, session_id, question, options, correct_answer, results, total_votes, created_at
		FROM poll_results
		WHERE session_id = $1
		ORDER BY created_at, poll_id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list poll results: %w", err)
	}
	defer rows.Close()

	var results []*domain.PollResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating poll results: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.PollResult, error) {
	var (
		result  domain.PollResult
		options []byte
		tally   []byte
	)
	err := row.Scan(
		&result.PollID, &result.SessionID, &result.Question, &options,
		&result.CorrectAnswer, &tally, &result.TotalVotes, &result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &result.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	if err := json.Unmarshal(tally, &result.Tally); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return &result, nil
}
