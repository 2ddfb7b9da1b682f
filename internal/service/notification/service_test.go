package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/booking-api/internal/mocks"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

var fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func setupTestService() (*Service, *mocks.AccountRepository, *mocks.EmailSender, *mocks.Publisher) {
	accounts := &mocks.AccountRepository{}
	mailer := &mocks.EmailSender{}
	publisher := &mocks.Publisher{}
	svc := NewService(accounts, mailer, publisher, metrics.NewMetrics(prometheus.NewRegistry(), "test"))
	svc.now = func() time.Time { return fixedNow }
	return svc, accounts, mailer, publisher
}

func TestNotify_StoresAndPublishes(t *testing.T) {
	svc, accounts, _, publisher := setupTestService()
	ctx := context.Background()
	id := uuid.New()

	n := model.Notification{
		Type:        model.NotificationAppointmentAccepted,
		Message:     "Your appointment has been accepted",
		OnClickPath: "/user/appointments",
	}
	stored := n
	stored.CreatedAt = fixedNow

	accounts.On("AppendNotification", ctx, id, stored).Return(nil)
	publisher.On("Publish", ctx, Channel, messaging.Message{
		Type:    n.Type,
		Payload: Event{AccountID: id, Notification: stored},
	}).Return(nil)

	svc.Notify(ctx, id, n)

	accounts.AssertExpectations(t)
	publisher.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Notifications.WithLabelValues(channelInApp, outcomeSent)))
}

func TestNotify_TruncatesMessage(t *testing.T) {
	svc, accounts, _, publisher := setupTestService()
	ctx := context.Background()

	accounts.On("AppendNotification", ctx, mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return len([]rune(n.Message)) == model.MaxNotificationMessageLen
	})).Return(nil)
	publisher.On("Publish", ctx, Channel, mock.Anything).Return(nil)

	svc.Notify(ctx, uuid.New(), model.Notification{Message: strings.Repeat("é", 400)})

	accounts.AssertExpectations(t)
}

func TestNotify_StoreFailureIsSwallowed(t *testing.T) {
	svc, accounts, _, publisher := setupTestService()
	ctx := context.Background()

	accounts.On("AppendNotification", ctx, mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		svc.Notify(ctx, uuid.New(), model.Notification{Message: "x"})
	})
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Notifications.WithLabelValues(channelInApp, outcomeFailed)))
}

func TestNotify_PublishFailureIsSwallowed(t *testing.T) {
	svc, accounts, _, publisher := setupTestService()
	ctx := context.Background()

	accounts.On("AppendNotification", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", ctx, Channel, mock.Anything).Return(errors.New("circuit open"))

	svc.Notify(ctx, uuid.New(), model.Notification{Message: "x"})

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Notifications.WithLabelValues(channelBroker, outcomeFailed)))
}

func TestNotifyAdmins_FansOut(t *testing.T) {
	svc, accounts, _, publisher := setupTestService()
	ctx := context.Background()
	a1 := &model.Account{Base: model.Base{ID: uuid.New()}, Role: model.RoleAdmin}
	a2 := &model.Account{Base: model.Base{ID: uuid.New()}, Role: model.RoleAdmin}

	accounts.On("List", ctx, &model.AccountFilters{Role: model.RoleAdmin}).Return([]*model.Account{a1, a2}, nil)
	accounts.On("AppendNotification", ctx, a1.ID, mock.Anything).Return(nil)
	accounts.On("AppendNotification", ctx, a2.ID, mock.Anything).Return(nil)
	publisher.On("Publish", ctx, Channel, mock.Anything).Return(nil)

	svc.NotifyAdmins(ctx, model.Notification{Type: model.NotificationApplyDoctor, Message: "apply"})

	accounts.AssertExpectations(t)
	publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestNotifyAdmins_ListFailure(t *testing.T) {
	svc, accounts, _, _ := setupTestService()
	ctx := context.Background()

	accounts.On("List", ctx, mock.Anything).Return(nil, errors.New("db down"))

	svc.NotifyAdmins(ctx, model.Notification{Message: "apply"})
	accounts.AssertNotCalled(t, "AppendNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmail(t *testing.T) {
	svc, _, mailer, _ := setupTestService()
	ctx := context.Background()

	mailer.On("Send", ctx, "ok@x.test", "subj", "body").Return(nil)
	mailer.On("Send", ctx, "bad@x.test", "subj", "body").Return(errors.New("smtp down"))

	svc.Email(ctx, "ok@x.test", "subj", "body")
	svc.Email(ctx, "bad@x.test", "subj", "body")

	mailer.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Notifications.WithLabelValues(channelEmail, outcomeSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.Notifications.WithLabelValues(channelEmail, outcomeFailed)))
}
