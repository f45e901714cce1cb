// Package session implements the quiz session state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/generator"
)

// Fetcher loads a question set for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req entities.QuizRequest) (*entities.QuizSet, error)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger used by the controller.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// Controller drives one quiz session from Idle to Completed or Failed.
//
// Commands are expected to arrive serially from a single dispatch context.
// The mutex is never held across the fetch, so commands racing with a
// loading session are rejected rather than blocked.
type Controller struct {
	mu      sync.Mutex
	id      string
	fetcher Fetcher
	view    View
	logger  *zap.Logger

	req    entities.QuizRequest
	state  entities.SessionState
	cancel context.CancelFunc
	closed bool
}

// New creates an idle controller. Both collaborators are required.
func New(fetcher Fetcher, view View, opts ...Option) (*Controller, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is nil", ErrConfiguration)
	}
	if view == nil {
		return nil, fmt.Errorf("%w: view is nil", ErrConfiguration)
	}

	c := &Controller{
		id:      uuid.NewString(),
		fetcher: fetcher,
		view:    view,
		logger:  zap.NewNop(),
		state:   entities.NewSessionState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("session_id", c.id))

	return c, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Request returns the configuration the session was started with.
func (c *Controller) Request() entities.QuizRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

// State returns a snapshot of the session state.
func (c *Controller) State() entities.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start fetches the question set and shows the first question.
// Fetch failures are reported to the view via OnError and leave the session
// Failed; they are not returned.
func (c *Controller) Start(ctx context.Context, req entities.QuizRequest) error {
	c.mu.Lock()
	if err := c.guard(entities.PhaseIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := req.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	c.req = req
	c.cancel = cancel
	c.state.Phase = entities.PhaseLoading
	c.view.OnLoading()
	c.mu.Unlock()

	c.logger.Debug("fetching quiz",
		zap.String("topic", req.Topic),
		zap.String("difficulty", string(req.Difficulty)),
		zap.Int("count", req.Count),
	)

	set, err := c.fetcher.Fetch(fetchCtx, req)
	cancel()
	if err == nil {
		// Fetcher implementations other than generator.Fetcher may skip validation.
		err = set.Validate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel = nil
	if c.closed {
		c.logger.Debug("discarding quiz fetched after teardown", zap.Error(err))
		return ErrClosed
	}

	if err != nil {
		c.logger.Warn("quiz session failed", zap.Error(err))
		c.state.Phase = entities.PhaseFailed
		c.view.OnError(failureMessage(err))
		return nil
	}

	c.state.Questions = set
	c.state.CurrentIndex = 0
	c.state.Score = 0
	c.logger.Info("quiz session started", zap.Int("questions", set.Len()))
	c.renderQuestion(0)

	return nil
}

// SelectAnswer records the answer for the current question.
// A second selection for the same question is ignored.
func (c *Controller) SelectAnswer(choice int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == entities.PhaseAnswerLocked && !c.closed {
		return nil
	}
	if err := c.guard(entities.PhaseActive); err != nil {
		return err
	}
	if choice < 0 || choice >= entities.ChoicesPerQuestion {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}

	q, ok := c.state.Current()
	if !ok {
		return fmt.Errorf("%w: no current question", ErrInvalidOperation)
	}

	verdict := entities.VerdictIncorrect
	if q.IsCorrect(choice) {
		verdict = entities.VerdictCorrect
		c.state.Score++
	}
	c.state.SelectedChoice = choice
	c.state.Phase = entities.PhaseAnswerLocked

	c.view.OnAnswered(AnswerView{
		Index:        c.state.CurrentIndex,
		Verdict:      verdict,
		Explanation:  q.Explanation,
		Selected:     choice,
		CorrectIndex: q.CorrectIndex,
		RTL:          c.req.RTL(),
	})

	return nil
}

// Advance moves to the next question, or completes the session after the last one.
// Advancing from Active skips the current question without scoring it.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(entities.PhaseActive, entities.PhaseAnswerLocked); err != nil {
		return err
	}

	c.state.CurrentIndex++
	c.renderQuestion(c.state.CurrentIndex)

	return nil
}

// Submit ends the exam immediately with the current score.
// It is a no-op once the session is completed.
func (c *Controller) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == entities.PhaseCompleted && !c.closed {
		return nil
	}
	if err := c.guard(entities.PhaseActive, entities.PhaseAnswerLocked); err != nil {
		return err
	}

	c.complete()
	return nil
}

// Close tears the session down. An in-flight fetch is cancelled and its
// result discarded; further commands fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.logger.Debug("quiz session closed", zap.String("phase", string(c.state.Phase)))
}

func (c *Controller) renderQuestion(index int) {
	if index >= c.state.Total() {
		c.complete()
		return
	}

	q := c.state.Questions.Questions[index]
	c.state.SelectedChoice = entities.NoChoice
	c.state.Phase = entities.PhaseActive

	c.view.OnQuestion(QuestionView{
		Index:   index,
		Total:   c.state.Total(),
		Stem:    q.Stem,
		Choices: append([]string(nil), q.Choices...),
		RTL:     c.req.RTL(),
	})
}

func (c *Controller) complete() {
	c.state.Phase = entities.PhaseCompleted
	c.logger.Info("quiz session completed",
		zap.Int("score", c.state.Score),
		zap.Int("total", c.state.Total()),
		zap.Int("index", c.state.CurrentIndex),
	)
	c.view.OnCompleted(c.state.Score, c.state.Total())
}

// guard must be called with the lock held.
func (c *Controller) guard(allowed ...entities.Phase) error {
	if c.closed {
		return ErrClosed
	}
	for _, p := range allowed {
		if c.state.Phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidOperation, c.state.Phase)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, generator.ErrEmptyOrMalformed),
		errors.Is(err, entities.ErrNoQuestions),
		errors.Is(err, entities.ErrMalformedQuestion):
		return MsgNoQuestions
	default:
		return MsgLoadFailed
	}
}
