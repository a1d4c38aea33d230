package adapters

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/features/notifications/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPNotifier_BuildMessage(t *testing.T) {
	n := NewSMTPNotifier(config.MailConfig{From: "orders@shop.test"})

	m, err := n.buildMessage(domain.Message{
		To:      "ops@shop.test",
		Subject: "[Order #9] Shipment tracking timed out",
		HTML:    "<p>late</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: <orders@shop.test>")
	assert.Contains(t, raw, "To: <ops@shop.test>")
	assert.Contains(t, raw, "Subject: [Order #9] Shipment tracking timed out")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "<p>late</p>")
}

func TestSMTPNotifier_InvalidRecipient(t *testing.T) {
	n := NewSMTPNotifier(config.MailConfig{From: "orders@shop.test", Host: "localhost", Port: 25})

	err := n.Send(context.Background(), domain.Message{To: "not an address"})
	var delivery *apperror.NotificationDeliveryError
	require.True(t, errors.As(err, &delivery))
	assert.Equal(t, "not an address", delivery.To)
	assert.True(t, apperror.IsRetryable(err))
}

func TestSMTPNotifier_UnreachableServer(t *testing.T) {
	n := NewSMTPNotifier(config.MailConfig{From: "orders@shop.test", Host: "127.0.0.1", Port: 1})

	err := n.Send(context.Background(), domain.Message{To: "ops@shop.test", Subject: "x", HTML: "y"})
	var delivery *apperror.NotificationDeliveryError
	assert.True(t, errors.As(err, &delivery))
}

func TestSMTPNotifier_AuthOptions(t *testing.T) {
	assert.Len(t, NewSMTPNotifier(config.MailConfig{Port: 587}).clientOptions(), 3)
	assert.Len(t, NewSMTPNotifier(config.MailConfig{Port: 587, Username: "u", Password: "p"}).clientOptions(), 6)
}
