package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/session"
)

// quizHandler starts a new exam, optionally overriding the stored topic.
func (h *Handler) quizHandler(topic string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.startQuiz(ctx, chatID, strings.TrimSpace(topic))
	}
}

// submitHandler ends the running exam with the current score.
func (h *Handler) submitHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		ctrl, ok := h.sessions.Get(chatID)
		if !ok {
			h.send(newPlainMessage(chatID, msgNoActiveExam))
			return nil
		}

		if err := ctrl.Submit(); err != nil {
			h.send(newPlainMessage(chatID, h.commandErrorText(ctrl, err)))
			return nil
		}

		h.finishIfDone(chatID, ctrl)
		return nil
	}
}

// startQuiz replaces any running exam in the chat with a new session.
// The fetch runs in its own goroutine so the update loop stays responsive.
func (h *Handler) startQuiz(ctx context.Context, chatID int64, topic string) error {
	prefs, err := h.preferences.GetOrDefault(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}

	req := prefs.Request()
	if topic != "" {
		req.Topic = topic
	}
	if err := req.Validate(); err != nil {
		h.send(newPlainMessage(chatID, "Your exam settings are invalid, check /settings."))
		return nil
	}

	id := uuid.NewString()
	view := newChatView(h.bot, h.logger, chatID, id)
	ctrl, err := session.New(h.fetcher, view, session.WithID(id), session.WithLogger(h.logger))
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}

	// Storing closes the previous session, cancelling its fetch if still loading.
	h.sessions.Store(chatID, ctrl)

	h.logger.Info("starting quiz session",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", id),
		zap.String("topic", req.Topic),
		zap.String("difficulty", string(req.Difficulty)),
		zap.Int("count", req.Count),
		zap.String("language", req.Language),
	)

	h.running.Add(1)
	go func() {
		defer h.running.Done()
		h.runSession(ctx, chatID, ctrl, req)
	}()

	return nil
}

func (h *Handler) runSession(ctx context.Context, chatID int64, ctrl *session.Controller, req entities.QuizRequest) {
	err := ctrl.Start(ctx, req)
	switch {
	case errors.Is(err, session.ErrClosed):
		return
	case err != nil:
		h.logger.Error("failed to start quiz session",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", ctrl.ID()),
			zap.Error(err),
		)
		h.sessions.DeleteIfCurrent(chatID, ctrl)
		h.sendError(chatID, msgQuizUnavailable)
		return
	}

	h.finishIfDone(chatID, ctrl)
}

// handleQuizCallback dispatches quiz buttons and returns the toast text.
func (h *Handler) handleQuizCallback(ctx context.Context, chatID int64, data callbackData) string {
	sub := data.param(0)
	if sub == quizStart {
		if err := h.startQuiz(ctx, chatID, ""); err != nil {
			h.logger.Error("failed to start quiz from callback",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgQuizUnavailable)
		}
		return ""
	}

	ctrl, ok := h.sessions.Get(chatID)
	if !ok || ctrl.ID() != data.param(1) {
		return msgExamClosed
	}

	if sub == quizAnswer || sub == quizNext {
		index, ok := data.intParam(2)
		if !ok {
			h.logger.Warn("invalid quiz callback", zap.String("data", data.Raw))
			return ""
		}
		if index != ctrl.State().CurrentIndex {
			return msgQuestionClosed
		}
	}

	var err error
	switch sub {
	case quizAnswer:
		choice, ok := data.intParam(3)
		if !ok {
			h.logger.Warn("invalid quiz callback", zap.String("data", data.Raw))
			return ""
		}
		if ctrl.State().Phase == entities.PhaseAnswerLocked {
			return msgAnswerLocked
		}
		err = ctrl.SelectAnswer(choice)
	case quizNext:
		err = ctrl.Advance()
	case quizSubmit:
		err = ctrl.Submit()
	default:
		h.logger.Warn("unknown quiz callback", zap.String("data", data.Raw))
		return ""
	}

	h.sessions.Touch(chatID)
	if err != nil {
		return h.commandErrorText(ctrl, err)
	}

	h.finishIfDone(chatID, ctrl)
	return ""
}

// finishIfDone drops the session once it reaches a terminal phase.
func (h *Handler) finishIfDone(chatID int64, ctrl *session.Controller) {
	if ctrl.State().Phase.Terminal() {
		h.sessions.DeleteIfCurrent(chatID, ctrl)
	}
}

func (h *Handler) commandErrorText(ctrl *session.Controller, err error) string {
	switch {
	case errors.Is(err, session.ErrClosed):
		return msgExamClosed
	case errors.Is(err, session.ErrInvalidOperation):
		if ctrl.State().Phase == entities.PhaseLoading {
			return msgExamLoading
		}
		return msgExamClosed
	default:
		h.logger.Warn("quiz command rejected", zap.String("session_id", ctrl.ID()), zap.Error(err))
		return msgInternalError
	}
}
