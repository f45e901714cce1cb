package session

import "github.com/aliskhannn/exam-bot/internal/domain/entities"

// QuestionView is pushed to the view when a question becomes current.
type QuestionView struct {
	Index   int      // zero-based question index
	Total   int      // number of questions in the session
	Stem    string   // question text
	Choices []string // the four options in their original order
	RTL     bool     // text should be laid out right to left
}

// AnswerView is pushed to the view once the current question is answered.
type AnswerView struct {
	Index        int
	Verdict      entities.Verdict
	Explanation  string
	Selected     int
	CorrectIndex int
	RTL          bool
}

// View receives one notification per state transition.
// Notifications are delivered synchronously while the controller holds its lock,
// so implementations must not call back into the controller.
type View interface {
	// OnLoading is called when the session starts fetching questions.
	OnLoading()
	// OnError is called once when the session fails; the session is then terminal.
	OnError(message string)
	// OnQuestion asks the view to show a question and re-enable choice input.
	OnQuestion(q QuestionView)
	// OnAnswered reports the verdict; the view must disable choice input until the next question.
	OnAnswered(a AnswerView)
	// OnCompleted reports the final score; the view must hide interactive controls.
	OnCompleted(score, total int)
}
