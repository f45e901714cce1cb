// Package generator talks to the remote service that produces question sets.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultMaxBodyBytes = 1 << 20
	requestIDHeader     = "X-Request-ID"
)

// Options configures a Fetcher.
type Options struct {
	Endpoint     string
	Timeout      time.Duration
	MaxBodyBytes int64
	HTTPClient   *http.Client // overrides Timeout when set
}

// Fetcher issues generation requests. It performs exactly one attempt per call.
type Fetcher struct {
	endpoint     string
	maxBodyBytes int64
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewFetcher creates a fetcher for the given endpoint.
func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Fetcher{
		endpoint:     opts.Endpoint,
		maxBodyBytes: maxBody,
		httpClient:   client,
		logger:       logger,
	}
}

// Fetch posts req to the endpoint and returns a validated question set.
// Every failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, req entities.QuizRequest) (*entities.QuizSet, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, transportError("encode request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, transportError("build request", 0, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)

	log := f.logger.With(
		zap.String("request_id", requestID),
		zap.String("endpoint", f.endpoint),
		zap.String("topic", req.Topic),
		zap.Int("count", req.Count),
	)

	started := time.Now()
	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("quiz request failed", zap.Error(err))
		return nil, transportError("execute request", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		log.Warn("read quiz response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, transportError("read response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("quiz request rejected",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(started)),
		)
		return nil, transportError(
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			resp.StatusCode,
			nil,
		)
	}

	var set entities.QuizSet
	if err := json.Unmarshal(body, &set); err != nil {
		log.Warn("quiz response is not valid json", zap.Error(err))
		return nil, malformedError("decode response", body, err)
	}

	if err := set.Validate(); err != nil {
		log.Warn("quiz response rejected", zap.Error(err))
		return nil, malformedError("validate response", body, err)
	}

	log.Info("quiz fetched",
		zap.Int("questions", len(set.Questions)),
		zap.Duration("duration", time.Since(started)),
	)

	return &set, nil
}
