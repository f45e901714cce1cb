package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
)

func (h *Handler) settingsHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		prefs, err := h.preferences.GetOrDefault(ctx, chatID)
		if err != nil {
			h.logger.Error("failed to get preferences",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.send(newPlainMessage(chatID, msgSettingsUnavailable))
			return nil
		}

		msg := newHTMLMessage(chatID, formatPreferences(prefs))
		msg.ReplyMarkup = buildSettingsKeyboard(prefs)
		h.send(msg)
		return nil
	}
}

func (h *Handler) topicHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if strings.TrimSpace(args) == "" {
			h.send(newPlainMessage(chatID, msgUseTopic))
			return nil
		}

		prefs, err := h.preferences.SetTopic(ctx, chatID, args)
		if err != nil {
			if errors.Is(err, entities.ErrInvalidRequest) {
				h.send(newPlainMessage(chatID, msgUseTopic))
				return nil
			}
			return fmt.Errorf("set topic: %w", err)
		}

		h.send(newHTMLMessage(chatID, fmt.Sprintf("📚 Topic set to <b>%s</b>. Use /quiz to start.", esc(prefs.Topic))))
		return nil
	}
}

func (h *Handler) languageHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if strings.TrimSpace(args) == "" {
			h.send(newPlainMessage(chatID, msgUseLanguage))
			return nil
		}

		prefs, err := h.preferences.SetLanguage(ctx, chatID, args)
		if err != nil {
			if errors.Is(err, entities.ErrInvalidRequest) {
				h.send(newPlainMessage(chatID, msgUseLanguage))
				return nil
			}
			return fmt.Errorf("set language: %w", err)
		}

		h.send(newHTMLMessage(chatID, fmt.Sprintf("🌐 Language set to <b>%s</b>.", esc(prefs.Language))))
		return nil
	}
}

// handleSettingsCallback applies a settings button and refreshes the settings message.
func (h *Handler) handleSettingsCallback(ctx context.Context, chatID int64, msgID int, data callbackData) string {
	var (
		prefs *entities.Preferences
		err   error
	)

	switch data.param(0) {
	case settingsMenu:
		_ = h.withErrorHandling(h.settingsHandler())(ctx, chatID)
		return ""
	case settingsDifficulty:
		prefs, err = h.preferences.SetDifficulty(ctx, chatID, data.param(1))
	case settingsCount:
		n, convErr := strconv.Atoi(data.param(1))
		if convErr != nil {
			h.logger.Warn("invalid settings callback", zap.String("data", data.Raw))
			return ""
		}
		prefs, err = h.preferences.SetCount(ctx, chatID, n)
	case settingsLanguage:
		prefs, err = h.preferences.SetLanguage(ctx, chatID, data.param(1))
	default:
		h.logger.Warn("unknown settings callback", zap.String("data", data.Raw))
		return ""
	}

	if err != nil {
		if errors.Is(err, entities.ErrInvalidRequest) {
			return "Invalid value."
		}
		h.logger.Error("failed to update preferences",
			zap.Int64("chat_id", chatID),
			zap.String("data", data.Raw),
			zap.Error(err),
		)
		return msgSettingsUnavailable
	}

	h.request(newHTMLEdit(chatID, msgID, formatPreferences(prefs), buildSettingsKeyboard(prefs)))
	return "Saved ✅"
}
