package entities

import "time"

// Preferences stores the exam parameters a chat uses when it starts a quiz.
type Preferences struct {
	ChatID     int64      // Telegram chat ID
	Topic      string     // quiz topic sent to the generator
	Difficulty Difficulty // easy, medium or hard
	Count      int        // number of questions to request
	Language   string     // language of the generated questions
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPreferences creates preferences for a chat from the given defaults.
func NewPreferences(chatID int64, defaults QuizRequest) *Preferences {
	now := time.Now()
	return &Preferences{
		ChatID:     chatID,
		Topic:      defaults.Topic,
		Difficulty: defaults.Difficulty,
		Count:      defaults.Count,
		Language:   defaults.Language,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Request builds the generator request described by the preferences.
func (p *Preferences) Request() QuizRequest {
	return QuizRequest{
		Topic:      p.Topic,
		Difficulty: p.Difficulty,
		Count:      p.Count,
		Language:   p.Language,
	}
}
