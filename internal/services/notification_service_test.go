package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medihelp/internal/utils"
	"medihelp/pkg/logger"
)

func TestSendSMSPhoneNormalization(t *testing.T) {
	t.Run("short number rejected without a provider call", func(t *testing.T) {
		provider := &fakeSMSProvider{}
		service := NewNotificationService(nil, provider, logger.NewNop(), time.Second)

		result := <-service.SendSMS("12345", "alert")
		assert.ErrorIs(t, result.Err, utils.ErrDelivery)
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("formatted number normalized to digits", func(t *testing.T) {
		provider := &fakeSMSProvider{}
		service := NewNotificationService(nil, provider, logger.NewNop(), time.Second)

		result := <-service.SendSMS("+1 (555) 123-4567", "alert")
		require.NoError(t, result.Err)
		require.Len(t, provider.sent, 1)
		assert.Equal(t, "+15551234567", provider.sent[0])
		assert.Equal(t, "sms-1", result.MessageID)
	})
}

func TestSendWithoutTransport(t *testing.T) {
	service := NewNotificationService(nil, nil, logger.NewNop(), time.Second)

	email := <-service.SendEmail("er@central.example", "subject", "<p>body</p>")
	assert.ErrorIs(t, email.Err, utils.ErrDelivery)
	assert.Equal(t, NotificationChannelEmail, email.Channel)

	sms := <-service.SendSMS("+15551234567", "alert")
	assert.ErrorIs(t, sms.Err, utils.ErrDelivery)
	assert.Equal(t, NotificationChannelSMS, sms.Channel)
}

func TestSendEmailWrapsTransportError(t *testing.T) {
	m := &fakeMailer{fail: true}
	service := NewNotificationService(m, nil, logger.NewNop(), time.Second)

	result := <-service.SendEmail("er@central.example", "subject", "<p>body</p>")
	assert.ErrorIs(t, result.Err, utils.ErrDelivery)
	assert.Equal(t, "er@central.example", result.Target)
}

func TestSendEmailDelivers(t *testing.T) {
	m := &fakeMailer{}
	service := NewNotificationService(m, nil, logger.NewNop(), time.Second)

	result := <-service.SendEmail("er@central.example", "subject", "<p>body</p>")
	require.NoError(t, result.Err)
	assert.Equal(t, "msg-1", result.MessageID)
	assert.Equal(t, []string{"er@central.example"}, m.sent)
}
