package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexica-backend/internal/models"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

const progressColumns = `user_id, card_id, last_reviewed, next_review, interval_days, ease_factor,
	repetitions, correct_count, incorrect_count, average_response_ms, mastery_level, first_seen, version`

func scanProgress(row interface{ Scan(...interface{}) error }) (*models.UserCardProgress, error) {
	p := &models.UserCardProgress{}
	err := row.Scan(
		&p.UserID, &p.CardID, &p.LastReviewed, &p.NextReview, &p.IntervalDays, &p.EaseFactor,
		&p.Repetitions, &p.CorrectCount, &p.IncorrectCount, &p.AverageResponseMs,
		&p.MasteryLevel, &p.FirstSeen, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepo) Get(ctx context.Context, userID, cardID uuid.UUID) (*models.UserCardProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_card_progress WHERE user_id = $1 AND card_id = $2`
	return scanProgress(r.pool.QueryRow(ctx, query, userID, cardID))
}

// SaveWithResult persists one scheduler transition and its exercise result
// audit row in a single transaction. For existing rows the update carries an
// optimistic version check; for new rows a duplicate insert (the same answer
// submitted twice concurrently) trips the primary key. Both surface as
// ErrVersionConflict so the caller can re-read and retry.
func (r *ProgressRepo) SaveWithResult(ctx context.Context, p *models.UserCardProgress, isNew bool, result *models.ExerciseResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if isNew {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_card_progress (`+progressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)`,
			p.UserID, p.CardID, p.LastReviewed, p.NextReview, p.IntervalDays, p.EaseFactor,
			p.Repetitions, p.CorrectCount, p.IncorrectCount, p.AverageResponseMs,
			p.MasteryLevel, p.FirstSeen,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrVersionConflict
			}
			return err
		}
	} else {
		tag, err := tx.Exec(ctx, `
			UPDATE user_card_progress
			SET last_reviewed = $1, next_review = $2, interval_days = $3, ease_factor = $4,
				repetitions = $5, correct_count = $6, incorrect_count = $7,
				average_response_ms = $8, mastery_level = $9, version = version + 1
			WHERE user_id = $10 AND card_id = $11 AND version = $12`,
			p.LastReviewed, p.NextReview, p.IntervalDays, p.EaseFactor,
			p.Repetitions, p.CorrectCount, p.IncorrectCount,
			p.AverageResponseMs, p.MasteryLevel,
			p.UserID, p.CardID, p.Version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	}

	result.ID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO exercise_results (id, user_id, card_id, session_id, question_type, correct, user_answer, correct_answer, time_taken_ms, hints_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.ID, result.UserID, result.CardID, result.SessionID, result.QuestionType,
		result.Correct, result.UserAnswer, result.CorrectAnswer, result.TimeTakenMs, result.HintsUsed,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListDue returns progress rows for the given cards whose next review has
// passed, earliest first (most overdue first).
func (r *ProgressRepo) ListDue(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID, now time.Time) ([]models.UserCardProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM user_card_progress
		WHERE user_id = $1 AND card_id = ANY($2) AND next_review <= $3
		ORDER BY next_review ASC`

	rows, err := r.pool.Query(ctx, query, userID, cardIDs, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []models.UserCardProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *p)
	}
	return due, rows.Err()
}

// MasteryCounts aggregates a user's cards by mastery bucket within a deck.
func (r *ProgressRepo) MasteryCounts(ctx context.Context, userID, deckID uuid.UUID) (map[models.MasteryLevel]int, error) {
	query := `SELECT p.mastery_level, COUNT(*)
		FROM user_card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = $1 AND c.deck_id = $2
		GROUP BY p.mastery_level`

	rows, err := r.pool.Query(ctx, query, userID, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.MasteryLevel]int)
	for rows.Next() {
		var level models.MasteryLevel
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[level] = n
	}
	return counts, rows.Err()
}
