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

type ProgressionRepo struct {
	pool *pgxpool.Pool
}

func NewProgressionRepo(pool *pgxpool.Pool) *ProgressionRepo {
	return &ProgressionRepo{pool: pool}
}

func (r *ProgressionRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserProgression, error) {
	p := &models.UserProgression{}
	query := `SELECT user_id, level, xp, streak, current_difficulty, total_sessions,
		total_correct_answers, total_questions_answered, last_session_date, level_up_date, version
		FROM user_progressions WHERE user_id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Level, &p.XP, &p.Streak, &p.CurrentDifficulty, &p.TotalSessions,
		&p.TotalCorrectAnswers, &p.TotalQuestionsAnswered, &p.LastSessionDate, &p.LevelUpDate, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Commit lands the updated progression and its session audit row atomically.
// Either both are visible afterwards or neither is. Concurrent commits for
// the same user (two devices finishing at once) fail the version check and
// surface as ErrVersionConflict for a re-read-and-retry.
func (r *ProgressionRepo) Commit(ctx context.Context, p *models.UserProgression, isNew bool, session *models.ProgressionSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if isNew {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_progressions (user_id, level, xp, streak, current_difficulty, total_sessions,
				total_correct_answers, total_questions_answered, last_session_date, level_up_date, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)`,
			p.UserID, p.Level, p.XP, p.Streak, p.CurrentDifficulty, p.TotalSessions,
			p.TotalCorrectAnswers, p.TotalQuestionsAnswered, p.LastSessionDate, p.LevelUpDate,
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
			UPDATE user_progressions
			SET level = $1, xp = $2, streak = $3, current_difficulty = $4, total_sessions = $5,
				total_correct_answers = $6, total_questions_answered = $7,
				last_session_date = $8, level_up_date = $9, version = version + 1
			WHERE user_id = $10 AND version = $11`,
			p.Level, p.XP, p.Streak, p.CurrentDifficulty, p.TotalSessions,
			p.TotalCorrectAnswers, p.TotalQuestionsAnswered,
			p.LastSessionDate, p.LevelUpDate,
			p.UserID, p.Version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	}

	session.ID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO progression_sessions (id, user_id, session_date, starting_difficulty, ending_difficulty,
			xp_earned, questions_answered, correct_answers, session_accuracy, difficulty_adjustments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		session.ID, session.UserID, session.SessionDate, session.StartingDifficulty, session.EndingDifficulty,
		session.XPEarned, session.QuestionsAnswered, session.CorrectAnswers,
		session.SessionAccuracy, session.DifficultyAdjustments,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ProgressionRepo) ListRecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ProgressionSession, error) {
	query := `SELECT id, user_id, session_date, starting_difficulty, ending_difficulty,
		xp_earned, questions_answered, correct_answers, session_accuracy, difficulty_adjustments
		FROM progression_sessions WHERE user_id = $1
		ORDER BY session_date DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ProgressionSession
	for rows.Next() {
		s := models.ProgressionSession{}
		err := rows.Scan(&s.ID, &s.UserID, &s.SessionDate, &s.StartingDifficulty, &s.EndingDifficulty,
			&s.XPEarned, &s.QuestionsAnswered, &s.CorrectAnswers, &s.SessionAccuracy, &s.DifficultyAdjustments)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// StreakAtRisk lists users with an active streak whose last session was
// yesterday: one more day of silence and the streak resets.
type StreakAtRisk struct {
	UserID uuid.UUID
	Streak int
}

func (r *ProgressionRepo) ListStreaksAtRisk(ctx context.Context, now time.Time) ([]StreakAtRisk, error) {
	query := `SELECT user_id, streak FROM user_progressions
		WHERE streak > 0 AND last_session_date >= $1 AND last_session_date < $2`

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	rows, err := r.pool.Query(ctx, query, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StreakAtRisk
	for rows.Next() {
		var s StreakAtRisk
		if err := rows.Scan(&s.UserID, &s.Streak); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
