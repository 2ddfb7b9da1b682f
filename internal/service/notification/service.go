package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Channel is the broker channel every stored notification is fanned out on.
const Channel = "notifications"

const (
	channelInApp  = "in_app"
	channelEmail  = "email"
	channelBroker = "broker"

	outcomeSent   = "sent"
	outcomeFailed = "failed"
)

// Notifier is best-effort: failures are logged and counted, never returned,
// so a lost notification cannot undo the workflow that raised it.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, n model.Notification)
	NotifyAdmins(ctx context.Context, n model.Notification)
	Email(ctx context.Context, to, subject, body string)
}

// Event is the payload published after a notification is stored.
type Event struct {
	AccountID    uuid.UUID          `json:"accountId"`
	Notification model.Notification `json:"notification"`
}

type Service struct {
	accounts  repository.AccountRepository
	mailer    email.Sender
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(accounts repository.AccountRepository, mailer email.Sender, publisher messaging.Publisher, m *metrics.Metrics) *Service {
	if mailer == nil {
		mailer = email.NopSender{}
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		accounts:  accounts,
		mailer:    mailer,
		publisher: publisher,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Notify(ctx context.Context, accountID uuid.UUID, n model.Notification) {
	n.Message = model.TruncateMessage(n.Message)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	if err := s.accounts.AppendNotification(ctx, accountID, n); err != nil {
		s.count(channelInApp, outcomeFailed)
		log.Ctx(ctx).Error().
			Err(err).
			Str("account_id", accountID.String()).
			Str("type", n.Type).
			Msg("failed to store notification")
		return
	}
	s.count(channelInApp, outcomeSent)

	event := messaging.Message{
		Type:    n.Type,
		Payload: Event{AccountID: accountID, Notification: n},
	}
	if err := s.publisher.Publish(ctx, Channel, event); err != nil {
		s.count(channelBroker, outcomeFailed)
		log.Ctx(ctx).Warn().
			Err(err).
			Str("account_id", accountID.String()).
			Msg("failed to publish notification event")
		return
	}
	s.count(channelBroker, outcomeSent)
}

func (s *Service) NotifyAdmins(ctx context.Context, n model.Notification) {
	admins, err := s.accounts.List(ctx, &model.AccountFilters{Role: model.RoleAdmin})
	if err != nil {
		s.count(channelInApp, outcomeFailed)
		log.Ctx(ctx).Error().Err(err).Str("type", n.Type).Msg("failed to list admins for notification")
		return
	}
	if len(admins) == 0 {
		log.Ctx(ctx).Warn().Str("type", n.Type).Msg("no admin accounts to notify")
		return
	}
	for _, admin := range admins {
		s.Notify(ctx, admin.ID, n)
	}
}

func (s *Service) Email(ctx context.Context, to, subject, body string) {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.count(channelEmail, outcomeFailed)
		log.Ctx(ctx).Error().Err(err).Str("subject", subject).Msg("failed to send email")
		return
	}
	s.count(channelEmail, outcomeSent)
}

func (s *Service) count(channel, outcome string) {
	if s.metrics != nil {
		s.metrics.Notifications.WithLabelValues(channel, outcome).Inc()
	}
}
