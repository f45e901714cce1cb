package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/session"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type PreferencesService interface {
	GetOrDefault(ctx context.Context, chatID int64) (*entities.Preferences, error)
	SetTopic(ctx context.Context, chatID int64, topic string) (*entities.Preferences, error)
	SetDifficulty(ctx context.Context, chatID int64, difficulty string) (*entities.Preferences, error)
	SetCount(ctx context.Context, chatID int64, count int) (*entities.Preferences, error)
	SetLanguage(ctx context.Context, chatID int64, language string) (*entities.Preferences, error)
}

type SessionStorage interface {
	Store(chatID int64, s *session.Controller)
	Get(chatID int64) (*session.Controller, bool)
	Touch(chatID int64)
	DeleteIfCurrent(chatID int64, s *session.Controller) bool
}

type Handler struct {
	bot         BotAPI
	logger      *zap.Logger
	fetcher     session.Fetcher
	sessions    SessionStorage
	preferences PreferencesService

	// running tracks quiz starts waiting on the generator.
	running sync.WaitGroup
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	fetcher session.Fetcher,
	sessions SessionStorage,
	preferences PreferencesService,
) *Handler {
	return &Handler{
		bot:         bot,
		logger:      logger,
		fetcher:     fetcher,
		sessions:    sessions,
		preferences: preferences,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.running.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				h.running.Wait()
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID

	if !update.Message.IsCommand() {
		h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	args := update.Message.CommandArguments()

	switch update.Message.Command() {
	case "start":
		h.send(newHTMLMessage(chatID, msgWelcome))

	case "help":
		h.send(newHTMLMessage(chatID, msgHelp))

	case "quiz":
		_ = h.withErrorHandling(h.quizHandler(args))(ctx, chatID)

	case "submit":
		_ = h.withErrorHandling(h.submitHandler())(ctx, chatID)

	case "settings":
		_ = h.withErrorHandling(h.settingsHandler())(ctx, chatID)

	case "topic":
		_ = h.withErrorHandling(h.topicHandler(args))(ctx, chatID)

	case "language":
		_ = h.withErrorHandling(h.languageHandler(args))(ctx, chatID)

	default:
		h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.Warn("telegram request failed",
			zap.Error(err),
		)
	}
}
