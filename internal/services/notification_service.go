package services

import (
	"context"
	"fmt"
	"time"

	"medihelp/internal/utils"
	"medihelp/pkg/logger"
	"medihelp/pkg/mailer"
	"medihelp/pkg/sms"
)

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
)

// NotificationResult reports the outcome of one detached send.
type NotificationResult struct {
	Channel   NotificationChannel
	Target    string
	MessageID string
	Err       error
}

// NotificationService is the gateway in front of the email and SMS
// transports. Sends run detached with their own timeout; the caller gets a
// buffered result channel it is free to ignore. Failures are logged here and
// wrapped in ErrDelivery, never returned to the request that triggered them.
type NotificationService struct {
	mailer      mailer.Mailer
	smsProvider sms.Provider
	log         *logger.Logger
	sendTimeout time.Duration
}

func NewNotificationService(m mailer.Mailer, p sms.Provider, log *logger.Logger, sendTimeout time.Duration) *NotificationService {
	if sendTimeout <= 0 {
		sendTimeout = utils.DefaultSendTimeout
	}
	return &NotificationService{
		mailer:      m,
		smsProvider: p,
		log:         log,
		sendTimeout: sendTimeout,
	}
}

func (s *NotificationService) SendEmail(to, subject, htmlBody string) <-chan NotificationResult {
	result := make(chan NotificationResult, 1)

	if s.mailer == nil {
		err := fmt.Errorf("%w: no mailer configured", utils.ErrDelivery)
		s.log.WithField("to", to).Warn("email send skipped")
		result <- NotificationResult{Channel: NotificationChannelEmail, Target: to, Err: err}
		return result
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		defer cancel()

		messageID, err := s.mailer.Send(ctx, to, subject, htmlBody)
		if err != nil {
			err = fmt.Errorf("%w: %v", utils.ErrDelivery, err)
			s.log.WithError(err).WithField("to", to).Error("email send failed")
		} else {
			s.log.WithFields(map[string]interface{}{"to": to, "message_id": messageID}).Info("email sent")
		}

		result <- NotificationResult{
			Channel:   NotificationChannelEmail,
			Target:    to,
			MessageID: messageID,
			Err:       err,
		}
	}()

	return result
}

// SendSMS normalizes the number to digits before transmission. Numbers with
// fewer than ten digits are rejected without a provider call.
func (s *NotificationService) SendSMS(to, body string) <-chan NotificationResult {
	result := make(chan NotificationResult, 1)

	normalized := utils.NormalizePhone(to)
	if len(normalized) < utils.MinPhoneDigits {
		err := fmt.Errorf("%w: phone number %q too short after normalization", utils.ErrDelivery, to)
		s.log.WithField("to", to).Warn("sms send rejected")
		result <- NotificationResult{Channel: NotificationChannelSMS, Target: to, Err: err}
		return result
	}

	if s.smsProvider == nil {
		err := fmt.Errorf("%w: no sms provider configured", utils.ErrDelivery)
		s.log.WithField("to", to).Warn("sms send skipped")
		result <- NotificationResult{Channel: NotificationChannelSMS, Target: to, Err: err}
		return result
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		defer cancel()

		resp, err := s.smsProvider.SendSMS(ctx, &sms.Request{
			To:      "+" + normalized,
			Message: body,
		})
		if err != nil {
			err = fmt.Errorf("%w: %v", utils.ErrDelivery, err)
			s.log.WithError(err).WithField("to", to).Error("sms send failed")
			result <- NotificationResult{Channel: NotificationChannelSMS, Target: to, Err: err}
			return
		}

		s.log.WithFields(map[string]interface{}{"to": to, "message_id": resp.MessageID}).Info("sms sent")
		result <- NotificationResult{
			Channel:   NotificationChannelSMS,
			Target:    to,
			MessageID: resp.MessageID,
		}
	}()

	return result
}
