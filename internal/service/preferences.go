package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/repository"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 50
	maxTopicLength   = 200
	maxLanguageLen   = 32
)

type PreferencesRepository interface {
	GetByChatID(ctx context.Context, chatID int64) (*entities.Preferences, error)
	Upsert(ctx context.Context, p *entities.Preferences) error
}

type PreferencesService struct {
	repository PreferencesRepository
	defaults   entities.QuizRequest
}

func NewPreferencesService(repository PreferencesRepository, defaults entities.QuizRequest) *PreferencesService {
	return &PreferencesService{repository: repository, defaults: defaults}
}

// GetOrDefault returns the stored preferences or the configured defaults.
// Defaults are not persisted until the chat changes something.
func (s *PreferencesService) GetOrDefault(ctx context.Context, chatID int64) (*entities.Preferences, error) {
	p, err := s.repository.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrPreferencesNotFound) {
			return entities.NewPreferences(chatID, s.defaults), nil
		}
		return nil, err
	}

	return p, nil
}

func (s *PreferencesService) SetTopic(ctx context.Context, chatID int64, topic string) (*entities.Preferences, error) {
	topic = strings.Join(strings.Fields(topic), " ")
	if topic == "" || utf8.RuneCountInString(topic) > maxTopicLength {
		return nil, fmt.Errorf("%w: topic must be 1-%d characters", entities.ErrInvalidRequest, maxTopicLength)
	}

	return s.update(ctx, chatID, func(p *entities.Preferences) { p.Topic = topic })
}

func (s *PreferencesService) SetDifficulty(ctx context.Context, chatID int64, difficulty string) (*entities.Preferences, error) {
	d, err := entities.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, chatID, func(p *entities.Preferences) { p.Difficulty = d })
}

func (s *PreferencesService) SetCount(ctx context.Context, chatID int64, count int) (*entities.Preferences, error) {
	if count < MinQuestionCount || count > MaxQuestionCount {
		return nil, fmt.Errorf("%w: count must be between %d and %d", entities.ErrInvalidRequest, MinQuestionCount, MaxQuestionCount)
	}

	return s.update(ctx, chatID, func(p *entities.Preferences) { p.Count = count })
}

func (s *PreferencesService) SetLanguage(ctx context.Context, chatID int64, language string) (*entities.Preferences, error) {
	language = strings.TrimSpace(language)
	if language == "" || utf8.RuneCountInString(language) > maxLanguageLen {
		return nil, fmt.Errorf("%w: language must be 1-%d characters", entities.ErrInvalidRequest, maxLanguageLen)
	}

	return s.update(ctx, chatID, func(p *entities.Preferences) { p.Language = language })
}

func (s *PreferencesService) update(ctx context.Context, chatID int64, apply func(p *entities.Preferences)) (*entities.Preferences, error) {
	p, err := s.GetOrDefault(ctx, chatID)
	if err != nil {
		return nil, err
	}

	apply(p)
	if err := s.repository.Upsert(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
