package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexica-backend/internal/models"
)

type CardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

// categoryOf derives the content shape from the front text token count.
func categoryOf(front string) models.CardCategory {
	switch n := len(strings.Fields(front)); {
	case n <= 1:
		return models.CategoryWord
	case n <= 4:
		return models.CategoryPhrase
	default:
		return models.CategorySentence
	}
}

func (r *CardRepo) CreateCards(ctx context.Context, deckID uuid.UUID, cards []models.Card) error {
	for i := range cards {
		cards[i].ID = uuid.New()
		cards[i].DeckID = deckID
		if cards[i].Category == "" {
			cards[i].Category = categoryOf(cards[i].Front)
		}
		cards[i].WordLength = len([]rune(cards[i].Front))

		err := r.pool.QueryRow(ctx,
			`INSERT INTO cards (id, deck_id, front, back, tags, category, word_length)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING created_at, updated_at`,
			cards[i].ID, deckID, cards[i].Front, cards[i].Back, cards[i].Tags,
			cards[i].Category, cards[i].WordLength,
		).Scan(&cards[i].CreatedAt, &cards[i].UpdatedAt)
		if err != nil {
			return err
		}
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE decks SET card_count = (SELECT COUNT(*) FROM cards WHERE deck_id = $1) WHERE id = $1`,
		deckID)
	return err
}

func (r *CardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	c := &models.Card{}
	query := `SELECT c.id, c.deck_id, c.front, c.back, c.tags, c.category, c.word_length,
		COALESCE(d.difficulty_level, ''), c.created_at, c.updated_at
		FROM cards c LEFT JOIN card_difficulties d ON d.card_id = c.id
		WHERE c.id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Tags, &c.Category, &c.WordLength,
		&c.DifficultyLevel, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update edits card content. The caller is responsible for enqueueing
// re-classification afterwards: an edited card's difficulty row is stale.
func (r *CardRepo) Update(ctx context.Context, c *models.Card) error {
	c.Category = categoryOf(c.Front)
	c.WordLength = len([]rune(c.Front))

	_, err := r.pool.Exec(ctx,
		`UPDATE cards SET front = $1, back = $2, tags = $3, category = $4, word_length = $5, updated_at = NOW()
		 WHERE id = $6`,
		c.Front, c.Back, c.Tags, c.Category, c.WordLength, c.ID)
	return err
}

func (r *CardRepo) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]models.Card, error) {
	query := `SELECT c.id, c.deck_id, c.front, c.back, c.tags, c.category, c.word_length,
		COALESCE(d.difficulty_level, ''), c.created_at, c.updated_at
		FROM cards c LEFT JOIN card_difficulties d ON d.card_id = c.id
		WHERE c.deck_id = $1 ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c := models.Card{}
		err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Tags, &c.Category,
			&c.WordLength, &c.DifficultyLevel, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CardWithDifficulty joins a card with its classifier score for selection.
type CardWithDifficulty struct {
	Card            models.Card
	TotalDifficulty int
	HasDifficulty   bool
}

// ListForSelection returns all cards in the given decks, each with its total
// score if classified. Tier filtering happens in the service after unclassified
// cards have been scored, so the query never restricts by difficulty level.
func (r *CardRepo) ListForSelection(ctx context.Context, deckIDs []uuid.UUID) ([]CardWithDifficulty, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.id, c.deck_id, c.front, c.back, c.tags, c.category, c.word_length,
		COALESCE(d.difficulty_level, ''), COALESCE(d.total_difficulty, -1), c.created_at, c.updated_at
		FROM cards c LEFT JOIN card_difficulties d ON d.card_id = c.id
		WHERE c.deck_id = ANY($1)`, deckIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CardWithDifficulty
	for rows.Next() {
		var cd CardWithDifficulty
		var total int
		err := rows.Scan(&cd.Card.ID, &cd.Card.DeckID, &cd.Card.Front, &cd.Card.Back,
			&cd.Card.Tags, &cd.Card.Category, &cd.Card.WordLength,
			&cd.Card.DifficultyLevel, &total, &cd.Card.CreatedAt, &cd.Card.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if total >= 0 {
			cd.TotalDifficulty = total
			cd.HasDifficulty = true
		}
		out = append(out, cd)
	}
	return out, rows.Err()
}

// UpsertDifficulty replaces the card's difficulty row. The 1:1 relationship
// is kept by the primary key on card_id; re-classification never accumulates
// a second row.
func (r *CardRepo) UpsertDifficulty(ctx context.Context, d *models.CardDifficulty) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO card_difficulties (card_id, vocabulary_score, grammar_score, length_score, type_score, total_difficulty, difficulty_level, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (card_id) DO UPDATE SET
			vocabulary_score = EXCLUDED.vocabulary_score,
			grammar_score = EXCLUDED.grammar_score,
			length_score = EXCLUDED.length_score,
			type_score = EXCLUDED.type_score,
			total_difficulty = EXCLUDED.total_difficulty,
			difficulty_level = EXCLUDED.difficulty_level,
			computed_at = EXCLUDED.computed_at
	`, d.CardID, d.VocabularyScore, d.GrammarScore, d.LengthScore, d.TypeScore,
		d.TotalDifficulty, d.DifficultyLevel, d.ComputedAt)
	return err
}

func (r *CardRepo) GetDifficulty(ctx context.Context, cardID uuid.UUID) (*models.CardDifficulty, error) {
	d := &models.CardDifficulty{}
	query := `SELECT card_id, vocabulary_score, grammar_score, length_score, type_score, total_difficulty, difficulty_level, computed_at
		FROM card_difficulties WHERE card_id = $1`

	err := r.pool.QueryRow(ctx, query, cardID).Scan(
		&d.CardID, &d.VocabularyScore, &d.GrammarScore, &d.LengthScore,
		&d.TypeScore, &d.TotalDifficulty, &d.DifficultyLevel, &d.ComputedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}
