package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/session"
)

// chatView renders quiz session notifications into a Telegram chat.
// Each question lives in its own message; answering edits that message.
type chatView struct {
	bot       BotAPI
	logger    *zap.Logger
	chatID    int64
	sessionID string

	loadingMsgID  int
	questionMsgID int
	question      session.QuestionView
}

var _ session.View = (*chatView)(nil)

func newChatView(bot BotAPI, logger *zap.Logger, chatID int64, sessionID string) *chatView {
	return &chatView{
		bot:       bot,
		logger:    logger.With(zap.Int64("chat_id", chatID), zap.String("session_id", sessionID)),
		chatID:    chatID,
		sessionID: sessionID,
	}
}

func (v *chatView) OnLoading() {
	v.loadingMsgID = v.send(newPlainMessage(v.chatID, msgLoading))
}

func (v *chatView) OnError(message string) {
	text := "❌ " + message
	if v.loadingMsgID != 0 {
		v.request(tgbotapi.NewEditMessageText(v.chatID, v.loadingMsgID, text))
		v.loadingMsgID = 0
		return
	}
	v.send(newPlainMessage(v.chatID, text))
}

func (v *chatView) OnQuestion(q session.QuestionView) {
	v.clearLoading()
	v.closeQuestion()

	msg := newHTMLMessage(v.chatID, formatQuestion(q))
	msg.ReplyMarkup = buildQuestionKeyboard(v.sessionID, q)

	v.question = q
	v.questionMsgID = v.send(msg)
}

func (v *chatView) OnAnswered(a session.AnswerView) {
	text := formatAnswered(v.question, a)
	kb := buildAnsweredKeyboard(v.sessionID, a.Index)

	if v.questionMsgID == 0 {
		msg := newHTMLMessage(v.chatID, text)
		msg.ReplyMarkup = kb
		v.questionMsgID = v.send(msg)
		return
	}
	v.request(newHTMLEdit(v.chatID, v.questionMsgID, text, kb))
}

func (v *chatView) OnCompleted(score, total int) {
	v.clearLoading()
	v.closeQuestion()

	msg := newHTMLMessage(v.chatID, formatResult(score, total))
	msg.ReplyMarkup = buildQuizResultKeyboard()
	v.send(msg)
}

// closeQuestion strips the buttons from the previous question message.
func (v *chatView) closeQuestion() {
	if v.questionMsgID == 0 {
		return
	}
	v.request(tgbotapi.NewEditMessageReplyMarkup(v.chatID, v.questionMsgID, emptyKeyboard()))
	v.questionMsgID = 0
}

func (v *chatView) clearLoading() {
	if v.loadingMsgID == 0 {
		return
	}
	v.request(tgbotapi.NewDeleteMessage(v.chatID, v.loadingMsgID))
	v.loadingMsgID = 0
}

func (v *chatView) send(c tgbotapi.Chattable) int {
	m, err := v.bot.Send(c)
	if err != nil {
		v.logger.Error("failed to send telegram message", zap.Error(err))
		return 0
	}
	return m.MessageID
}

func (v *chatView) request(c tgbotapi.Chattable) {
	if _, err := v.bot.Request(c); err != nil {
		v.logger.Warn("telegram request failed", zap.Error(err))
	}
}
