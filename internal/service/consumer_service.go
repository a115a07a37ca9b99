package service

import (
	"context"
	"encoding/json"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/pkg/mailer"
	"agent-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ConsumerService drains the email topics and hands them to the SMTP mailer.
// Delivery failures are logged, never retried; the triggering operation has
// already committed.
type ConsumerService struct {
	subscriber   message.Subscriber
	emailService mailer.IEmailService
	log          logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, emailService mailer.IEmailService, log logger.ILogger) *ConsumerService {
	return &ConsumerService{
		subscriber:   subscriber,
		emailService: emailService,
		log:          log,
	}
}

// Run subscribes to both email topics and processes messages until the
// context is cancelled.
func (s *ConsumerService) Run(ctx context.Context) error {
	verification, err := s.subscriber.Subscribe(ctx, events.TopicEmailVerificationRequested)
	if err != nil {
		return err
	}
	reset, err := s.subscriber.Subscribe(ctx, events.TopicPasswordResetRequested)
	if err != nil {
		return err
	}

	go s.consume(verification, events.TopicEmailVerificationRequested, s.emailService.SendVerificationEmail)
	go s.consume(reset, events.TopicPasswordResetRequested, s.emailService.SendPasswordResetEmail)

	return nil
}

func (s *ConsumerService) consume(messages <-chan *message.Message, topic string, send func(email, token string) error) {
	for msg := range messages {
		var payload events.EmailTokenPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.log.Error("consumer", "malformed email event payload", map[string]interface{}{
				"topic": topic,
				"error": err,
			})
			msg.Ack()
			continue
		}

		if err := send(payload.Email, payload.Token); err != nil {
			s.log.Error("consumer", "email delivery failed", map[string]interface{}{
				"topic": topic,
				"email": payload.Email,
				"error": err,
			})
		} else {
			s.log.Info("consumer", "email sent", map[string]interface{}{
				"topic": topic,
				"email": payload.Email,
			})
		}
		// No redelivery either way.
		msg.Ack()
	}
}
