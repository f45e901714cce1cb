// Package entities contains domain entities used across the application.
package entities

import (
	"errors"
	"fmt"
)

// ChoicesPerQuestion is the only accepted number of answer options.
const ChoicesPerQuestion = 4

var (
	ErrMalformedQuestion = errors.New("malformed question")
	ErrNoQuestions       = errors.New("quiz set has no questions")
)

// Question represents a single multiple-choice item received from the generator.
// It is immutable once received.
type Question struct {
	ID           string   `json:"id"`           // opaque identifier, unique within a set
	Stem         string   `json:"stem"`         // question text
	Choices      []string `json:"choices"`      // exactly four options, shown in this order
	CorrectIndex int      `json:"correctIndex"` // index into Choices
	Explanation  string   `json:"explanation"`  // shown after the user answers
}

// Validate checks the four-choice invariant and the correct index range.
func (q Question) Validate() error {
	if len(q.Choices) != ChoicesPerQuestion {
		return fmt.Errorf("%w: question %q has %d choices, want %d",
			ErrMalformedQuestion, q.ID, len(q.Choices), ChoicesPerQuestion)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= ChoicesPerQuestion {
		return fmt.Errorf("%w: question %q has correct index %d",
			ErrMalformedQuestion, q.ID, q.CorrectIndex)
	}
	return nil
}

// IsCorrect reports whether choice is the correct option.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}

// QuizSet is the generator response: an ordered list of questions
// owned by the session that fetched it.
type QuizSet struct {
	Topic      string     `json:"topic"`      // echoed from the response, informational only
	Difficulty string     `json:"difficulty"` // echoed from the response, informational only
	Questions  []Question `json:"questions"`
}

// Validate rejects empty sets and sets containing any malformed question.
func (s *QuizSet) Validate() error {
	if s == nil || len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	for i, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question #%d: %w", i, err)
		}
	}
	return nil
}

// Len returns the number of questions in the set.
func (s *QuizSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Questions)
}
