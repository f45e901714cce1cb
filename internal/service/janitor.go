package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionRegistry is the subset of session storage the janitor needs.
type SessionRegistry interface {
	Idle(ttl time.Duration) []int64
	Delete(chatID int64)
}

// SessionJanitor tears down quiz sessions nobody has touched for a while.
type SessionJanitor struct {
	registry SessionRegistry
	idleTTL  time.Duration
	schedule string
	logger   *zap.Logger
}

// NewSessionJanitor creates a janitor running on the given cron schedule.
func NewSessionJanitor(registry SessionRegistry, idleTTL time.Duration, schedule string, logger *zap.Logger) *SessionJanitor {
	return &SessionJanitor{
		registry: registry,
		idleTTL:  idleTTL,
		schedule: schedule,
		logger:   logger,
	}
}

// Start runs the sweep on schedule until ctx is done.
func (j *SessionJanitor) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(j.schedule, func() {
		if n := j.Sweep(); n > 0 {
			j.logger.Info("idle quiz sessions removed", zap.Int("count", n))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	j.logger.Info("session janitor started",
		zap.String("schedule", j.schedule),
		zap.Duration("idle_ttl", j.idleTTL),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	j.logger.Info("session janitor stopped")
	return nil
}

// Sweep removes idle sessions and returns how many were removed.
func (j *SessionJanitor) Sweep() int {
	ids := j.registry.Idle(j.idleTTL)
	for _, chatID := range ids {
		j.logger.Debug("removing idle quiz session", zap.Int64("chat_id", chatID))
		j.registry.Delete(chatID)
	}
	return len(ids)
}
