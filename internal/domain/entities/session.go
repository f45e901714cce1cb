package entities

// Phase is the state of a quiz session.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseLoading      Phase = "loading"
	PhaseActive       Phase = "active"
	PhaseAnswerLocked Phase = "answer_locked"
	PhaseCompleted    Phase = "completed"
	PhaseFailed       Phase = "failed"
)

// Terminal reports whether no further transition is possible without a new session.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// Verdict is the correctness result shown after an answer is selected.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// NoChoice marks that no answer has been selected for the current question.
const NoChoice = -1

// SessionState is the mutable core of a quiz session.
// Score never exceeds CurrentIndex unless the current question is answered,
// and CurrentIndex never decreases.
type SessionState struct {
	Phase          Phase    // current state machine phase
	Questions      *QuizSet // set once, on Loading -> Active
	CurrentIndex   int      // 0 <= CurrentIndex <= len(Questions)
	Score          int      // number of correctly answered questions
	SelectedChoice int      // selected option for the current question or NoChoice
}

// NewSessionState returns the state of a session that has not started yet.
func NewSessionState() SessionState {
	return SessionState{
		Phase:          PhaseIdle,
		SelectedChoice: NoChoice,
	}
}

// Total returns the number of questions in the session.
func (s SessionState) Total() int {
	return s.Questions.Len()
}

// Current returns the question being shown, if any.
func (s SessionState) Current() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= s.Questions.Len() {
		return Question{}, false
	}
	return s.Questions.Questions[s.CurrentIndex], true
}
