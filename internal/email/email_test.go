package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/booking-api/internal/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{dialer: d, from: "noreply@booking.test"}

	require.NoError(t, s.Send(context.Background(), "doc@clinic.test", "Approved", "Welcome aboard"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"noreply@booking.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{"doc@clinic.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Approved"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Welcome aboard")
}

func TestSMTPSender_SendError(t *testing.T) {
	s := &SMTPSender{dialer: &fakeDialer{err: errors.New("connection refused")}}

	err := s.Send(context.Background(), "x@y.test", "s", "b")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{dialer: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, "x@y.test", "s", "b"), context.Canceled)
	assert.Empty(t, d.sent)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, NopSender{}, NewSender(config.SMTPConfig{}))
	assert.IsType(t, &SMTPSender{}, NewSender(config.SMTPConfig{Host: "smtp.test", Port: 587}))
}
