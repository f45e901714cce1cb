package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/infra/postgres"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

// PreferencesRepository provides access to per-chat quiz preferences in the database.
type PreferencesRepository struct {
	db postgres.DBTX
}

// NewPreferencesRepository creates a new PreferencesRepository with the provided database handle.
func NewPreferencesRepository(db postgres.DBTX) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetByChatID retrieves preferences for a chat.
func (r *PreferencesRepository) GetByChatID(ctx context.Context, chatID int64) (*entities.Preferences, error) {
	query := `
		SELECT chat_id, topic, difficulty, question_count, language, created_at, updated_at
		FROM quiz_preferences
		WHERE chat_id = $1
	`

	var p entities.Preferences
	err := r.db.QueryRow(ctx, query, chatID).Scan(
		&p.ChatID,
		&p.Topic,
		&p.Difficulty,
		&p.Count,
		&p.Language,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	return &p, nil
}

// Upsert inserts preferences or overwrites the stored ones.
// CreatedAt and UpdatedAt are filled from the database.
func (r *PreferencesRepository) Upsert(ctx context.Context, p *entities.Preferences) error {
	query := `
		INSERT INTO quiz_preferences (
			chat_id, topic, difficulty, question_count, language, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET topic = EXCLUDED.topic,
		    difficulty = EXCLUDED.difficulty,
		    question_count = EXCLUDED.question_count,
		    language = EXCLUDED.language,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.ChatID,
		p.Topic,
		string(p.Difficulty),
		p.Count,
		p.Language,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}

	return nil
}
