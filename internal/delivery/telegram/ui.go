package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/session"
)

var (
	countOptions    = []int{3, 5, 10, 15, 20}
	languageOptions = []string{"English", "Arabic", "Russian", "French", "Spanish"}
)

// emptyKeyboard removes an inline keyboard when used in an edit.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

// buildQuestionKeyboard builds one button per choice plus Next and Submit.
func buildQuestionKeyboard(sessionID string, q session.QuestionView) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Choices)+1)
	for i, choice := range q.Choices {
		label := directional(choiceLabel(i)+". "+truncate(choice, maxButtonRunes), q.RTL)
		button := tgbotapi.NewInlineKeyboardButtonData(label, buildQuizAnswerCallback(sessionID, q.Index, i))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	rows = append(rows, buildNavigationRow(sessionID, q.Index))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildAnsweredKeyboard replaces the choices once the question is answered.
func buildAnsweredKeyboard(sessionID string, questionIndex int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(buildNavigationRow(sessionID, questionIndex))
}

func buildNavigationRow(sessionID string, questionIndex int) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnNext, buildQuizNextCallback(sessionID, questionIndex)),
		tgbotapi.NewInlineKeyboardButtonData(btnSubmit, buildQuizSubmitCallback(sessionID)),
	)
}

// buildQuizResultKeyboard builds keyboard for the results screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnNewExam, buildQuizStartCallback()),
			tgbotapi.NewInlineKeyboardButtonData(btnSettings, buildSettingsCallback(settingsMenu)),
		),
	)
}

// buildSettingsKeyboard builds the settings keyboard, marking current values.
func buildSettingsKeyboard(p *entities.Preferences) tgbotapi.InlineKeyboardMarkup {
	var difficulty []tgbotapi.InlineKeyboardButton
	for _, d := range entities.Difficulties {
		difficulty = append(difficulty, tgbotapi.NewInlineKeyboardButtonData(
			selected(formatDifficulty(d), p.Difficulty == d),
			buildSettingsCallback(settingsDifficulty, string(d)),
		))
	}

	var counts []tgbotapi.InlineKeyboardButton
	for _, n := range countOptions {
		counts = append(counts, tgbotapi.NewInlineKeyboardButtonData(
			selected(strconv.Itoa(n), p.Count == n),
			buildSettingsCallback(settingsCount, strconv.Itoa(n)),
		))
	}

	var languages []tgbotapi.InlineKeyboardButton
	for _, l := range languageOptions {
		languages = append(languages, tgbotapi.NewInlineKeyboardButtonData(
			selected(l, p.Language == l),
			buildSettingsCallback(settingsLanguage, l),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		difficulty,
		counts,
		languages[:3],
		languages[3:],
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Start exam", buildQuizStartCallback()),
		),
	)
}

func selected(label string, ok bool) string {
	if ok {
		return "• " + label + " •"
	}
	return label
}
