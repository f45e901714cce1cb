// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/session"
)

// Error messages.
const (
	msgInternalError       = "Something went wrong. Please try again later."
	msgUnknownCommand      = "Unknown command. Use /help to see what I can do."
	msgQuizUnavailable     = "Could not start the exam, please try again later."
	msgSettingsUnavailable = "Could not load your settings, please try again later."
	msgUseTopic            = "Usage: /topic Operating Systems"
	msgUseLanguage         = "Usage: /language English"
	msgNoActiveExam        = "You have no exam in progress. Use /quiz to start one."
	msgExamClosed          = "This exam is no longer active."
	msgQuestionClosed      = "This question is already closed."
	msgAnswerLocked        = "You have already answered this question."
	msgExamLoading         = "The exam is still loading."
)

// Quiz texts.
const (
	msgLoading      = "⏳ Generating your exam…"
	msgExamComplete = "🏁 Exam complete!"
	btnNext         = "Next ▶️"
	btnSubmit       = "🏁 Submit exam"
	btnNewExam      = "🔄 New exam"
	btnSettings     = "⚙️ Settings"
)

const (
	rlm            = "\u200F"
	maxButtonRunes = 60
	choiceLetters  = "ABCD"
)

const msgWelcome = "<b>Exam Bot</b>\n\n" +
	"I generate multiple-choice exams on any topic and grade your answers.\n\n" +
	"/quiz — start an exam with your settings\n" +
	"/quiz Linear Algebra — start an exam on a specific topic\n" +
	"/settings — difficulty, number of questions and language\n" +
	"/help — show this message"

const msgHelp = "<b>Commands</b>\n\n" +
	"/quiz [topic] — start a new exam\n" +
	"/submit — finish the current exam now\n" +
	"/settings — change exam settings\n" +
	"/topic &lt;text&gt; — set the default topic\n" +
	"/language &lt;name&gt; — set the question language\n\n" +
	"Pick an answer with the buttons under each question. " +
	"Use <b>Next</b> to move on (or skip) and <b>Submit</b> to finish early."

// newHTMLMessage creates a message with HTML parse mode.
func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// newPlainMessage creates a plain message without parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newHTMLEdit replaces the text and keyboard of a message.
func newHTMLEdit(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)
	edit.ParseMode = tgbotapi.ModeHTML
	return edit
}

// esc escapes plain text for HTML parse mode.
func esc(s string) string {
	return html.EscapeString(s)
}

// directional prefixes every line with a right-to-left mark when rtl is set.
func directional(text string, rtl bool) string {
	if !rtl {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = rlm + l
		}
	}
	return strings.Join(lines, "\n")
}

func choiceLabel(i int) string {
	if i < 0 || i >= len(choiceLetters) {
		return "?"
	}
	return string(choiceLetters[i])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatQuestion renders a question with its choices listed by letter.
func formatQuestion(q session.QuestionView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Q%d:</b> %s\n", q.Index+1, esc(q.Stem)))
	sb.WriteString(fmt.Sprintf("<i>Question %d of %d</i>\n\n", q.Index+1, q.Total))
	for i, c := range q.Choices {
		sb.WriteString(fmt.Sprintf("%s. %s\n", choiceLabel(i), esc(c)))
	}
	return directional(strings.TrimRight(sb.String(), "\n"), q.RTL)
}

// formatAnswered renders the answered question with the verdict and explanation.
func formatAnswered(q session.QuestionView, a session.AnswerView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Q%d:</b> %s\n", q.Index+1, esc(q.Stem)))
	sb.WriteString(fmt.Sprintf("<i>Question %d of %d</i>\n\n", q.Index+1, q.Total))
	for i, c := range q.Choices {
		mark := "▫️"
		switch {
		case i == a.CorrectIndex:
			mark = "✅"
		case i == a.Selected:
			mark = "❌"
		}
		sb.WriteString(fmt.Sprintf("%s %s. %s\n", mark, choiceLabel(i), esc(c)))
	}
	sb.WriteString("\n")
	sb.WriteString(formatVerdict(a))
	return directional(sb.String(), a.RTL || q.RTL)
}

func formatVerdict(a session.AnswerView) string {
	prefix := "<b>Incorrect.</b>"
	if a.Verdict == entities.VerdictCorrect {
		prefix = "<b>Correct!</b>"
	}
	if a.Explanation == "" {
		return prefix
	}
	return prefix + " " + esc(a.Explanation)
}

// formatResult renders the final score.
func formatResult(score, total int) string {
	percent := 0.0
	if total > 0 {
		percent = float64(score) * 100 / float64(total)
	}
	return fmt.Sprintf("<b>%s</b>\n\nYour score: <b>%d/%d</b> (%.0f%%)", esc(msgExamComplete), score, total, percent)
}

// formatPreferences renders the settings screen.
func formatPreferences(p *entities.Preferences) string {
	return fmt.Sprintf(
		"<b>⚙️ Exam settings</b>\n\n"+
			"📚 <b>Topic:</b> %s\n"+
			"🎚 <b>Difficulty:</b> %s\n"+
			"📝 <b>Questions:</b> %d\n"+
			"🌐 <b>Language:</b> %s\n\n"+
			"Change the topic with /topic &lt;text&gt;.",
		esc(p.Topic),
		esc(formatDifficulty(p.Difficulty)),
		p.Count,
		esc(p.Language),
	)
}

func formatDifficulty(d entities.Difficulty) string {
	switch d {
	case entities.DifficultyEasy:
		return "Easy"
	case entities.DifficultyMedium:
		return "Medium"
	case entities.DifficultyHard:
		return "Hard"
	default:
		return string(d)
	}
}
