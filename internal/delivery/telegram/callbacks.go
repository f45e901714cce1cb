package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	chatID := cb.Message.Chat.ID
	data := decodeCallback(cb.Data)

	var toast string
	switch data.Action {
	case actionQuiz:
		toast = h.handleQuizCallback(ctx, chatID, data)
	case actionSettings:
		toast = h.handleSettingsCallback(ctx, chatID, cb.Message.MessageID, data)
	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, toast)
}

func (h *Handler) answerCallback(id, text string) {
	h.request(tgbotapi.NewCallback(id, text))
}
