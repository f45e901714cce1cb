package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz     = "quiz"
	actionSettings = "settings"
)

// Quiz sub-actions.
const (
	quizStart  = "start"
	quizAnswer = "answer"
	quizNext   = "next"
	quizSubmit = "submit"
)

// Settings sub-actions.
const (
	settingsMenu       = "menu"
	settingsDifficulty = "difficulty"
	settingsCount      = "count"
	settingsLanguage   = "language"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 || parts[0] == "" {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or an empty string.
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as a non-negative integer.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// buildQuizStartCallback builds callback data for starting a new exam.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

// buildQuizAnswerCallback builds callback data for answering a question.
func buildQuizAnswerCallback(sessionID string, questionIndex, choice int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{
			quizAnswer,
			sessionID,
			strconv.Itoa(questionIndex),
			strconv.Itoa(choice),
		},
	}.encode()
}

// buildQuizNextCallback builds callback data for moving past a question.
func buildQuizNextCallback(sessionID string, questionIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizNext, sessionID, strconv.Itoa(questionIndex)},
	}.encode()
}

// buildQuizSubmitCallback builds callback data for ending the exam early.
func buildQuizSubmitCallback(sessionID string) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizSubmit, sessionID},
	}.encode()
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}
