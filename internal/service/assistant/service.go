package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

const (
	outcomeOK          = "ok"
	outcomeRateLimited = "rate_limited"
	outcomeFailed      = "failed"
)

type Service struct {
	client         ChatClient
	limiter        *Limiter
	metrics        *metrics.Metrics
	maxReplyTokens int
}

func NewService(client ChatClient, limiter *Limiter, m *metrics.Metrics, maxReplyTokens int) *Service {
	return &Service{
		client:         client,
		limiter:        limiter,
		metrics:        m,
		maxReplyTokens: maxReplyTokens,
	}
}

// Ask forwards message to the provider once the budget allows it.
func (s *Service) Ask(ctx context.Context, message string) (*model.AssistantReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: "message", Message: "is required"},
		})
	}

	wait, err := s.limiter.Reserve(EstimateTokens(message, s.maxReplyTokens))
	if errors.Is(err, ErrExceedsBudget) {
		return nil, apperrors.Validation("validation failed", []apperrors.FieldError{
			{Field: "message", Message: "is too long"},
		})
	}
	if wait > 0 {
		s.count(outcomeRateLimited)
		return nil, apperrors.RateLimited("Assistant rate limit exceeded, try again later", wait)
	}

	start := time.Now()
	reply, err := s.client.Complete(ctx, message)
	if s.metrics != nil {
		s.metrics.AssistantLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.count(outcomeFailed)
		log.Ctx(ctx).Error().Err(err).Msg("assistant provider call failed")
		return nil, fmt.Errorf("failed to get assistant reply: %w", err)
	}

	s.count(outcomeOK)
	return reply, nil
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.AssistantRequests.WithLabelValues(outcome).Inc()
	}
}
