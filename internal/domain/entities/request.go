package entities

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRequest = errors.New("invalid quiz request")

// Difficulty is the requested difficulty level of a generated quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the supported levels in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts user or config input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, s)
	}
}

// rtlLanguages holds language names and tags written right to left.
var rtlLanguages = map[string]struct{}{
	"arabic":  {},
	"hebrew":  {},
	"persian": {},
	"farsi":   {},
	"urdu":    {},
	"ar":      {},
	"he":      {},
	"fa":      {},
	"ur":      {},
}

// QuizRequest is the session configuration sent to the generator.
// It is not mutated after the session starts.
type QuizRequest struct {
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
	Language   string     `json:"language"` // locale name, e.g. "English" or "Arabic"
}

// Validate checks the request before any network activity.
func (r QuizRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidRequest)
	}
	if _, err := ParseDifficulty(string(r.Difficulty)); err != nil {
		return err
	}
	if r.Count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidRequest, r.Count)
	}
	if strings.TrimSpace(r.Language) == "" {
		return fmt.Errorf("%w: empty language", ErrInvalidRequest)
	}
	return nil
}

// RTL reports whether the requested language is rendered right to left.
func (r QuizRequest) RTL() bool {
	lang := strings.ToLower(strings.TrimSpace(r.Language))
	if _, ok := rtlLanguages[lang]; ok {
		return true
	}
	// Locale tags such as "ar-SA" or "fa_IR".
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		_, ok := rtlLanguages[lang[:i]]
		return ok
	}
	return false
}
