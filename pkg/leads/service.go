package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/journeyboard/platform/pkg/common/logger"
	"github.com/journeyboard/platform/pkg/common/models"
	"github.com/journeyboard/platform/pkg/notify"
)

var ErrInvalidWebhook = errors.New("invalid webhook format")

// LeadPublisher hands a new lead to the journey side. *kafka.Producer
// implements it.
type LeadPublisher interface {
	PublishLead(ctx context.Context, event models.LeadEvent) error
}

// Service translates source webhooks into operator alerts and, for events
// that represent an actual new lead, a published lead event.
type Service struct {
	publisher LeadPublisher
	notifier  notify.Notifier
}

func NewService(publisher LeadPublisher, notifier notify.Notifier) *Service {
	return &Service{publisher: publisher, notifier: notifier}
}

// HandleThumbtack processes one v4 webhook. Every recognized event type
// raises an alert; only NegotiationCreatedV4 additionally publishes a lead.
// Alert failures are degraded, publish failures are returned so the source
// retries the delivery.
func (s *Service) HandleThumbtack(ctx context.Context, hook ThumbtackWebhook) error {
	if hook.Event.EventType == "" {
		return ErrInvalidWebhook
	}

	switch hook.Event.EventType {
	case eventNegotiationCreated:
		var payload NegotiationPayload
		if err := json.Unmarshal(hook.Data, &payload); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		s.notifier.Send(ctx, payload.AlertText())
		return s.publishNegotiation(ctx, payload)

	case eventMessageCreated:
		var payload MessagePayload
		if err := json.Unmarshal(hook.Data, &payload); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		s.notifier.Send(ctx, payload.AlertText())

	case eventReviewCreated:
		var payload ReviewPayload
		if err := json.Unmarshal(hook.Data, &payload); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		s.notifier.Send(ctx, payload.AlertText())

	case eventIncentiveUsed:
		var payload IncentivePayload
		if err := json.Unmarshal(hook.Data, &payload); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		s.notifier.Send(ctx, payload.AlertText())

	default:
		logger.Log.WithField("event_type", hook.Event.EventType).Info("unhandled webhook event type")
		s.notifier.Send(ctx, genericAlertText(hook.Event))
	}
	return nil
}

func (s *Service) publishNegotiation(ctx context.Context, payload NegotiationPayload) error {
	name := payload.CustomerName()
	if name == "" {
		logger.Log.WithField("negotiation_id", payload.NegotiationID).Warn("negotiation without customer name, alert only")
		return nil
	}

	event := models.LeadEvent{
		Name:      name,
		Platform:  "THUMBTACK",
		Source:    "thumbtack-webhook",
		StartDate: payload.CreatedAt,
		Data: map[string]interface{}{
			"negotiation_id": payload.NegotiationID,
			"phone":          payload.Customer.Phone,
			"service":        payload.Request.Category.Name,
			"city":           payload.Request.Location.City,
			"state":          payload.Request.Location.State,
			"description":    payload.Request.Description,
		},
	}
	if err := s.publisher.PublishLead(ctx, event); err != nil {
		return fmt.Errorf("publish lead: %w", err)
	}
	logger.Log.WithFields(map[string]interface{}{
		"customer":       name,
		"negotiation_id": payload.NegotiationID,
	}).Info("thumbtack lead published")
	return nil
}

// HandleGmail processes one Pub/Sub push. Gmail pushes only signal that
// something changed; without an inbox client the bridge raises the alert
// and leaves record creation to the operator.
func (s *Service) HandleGmail(ctx context.Context, push PubSubPush) error {
	n, ok, err := DecodeGmailNotification(push)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	if !ok {
		return nil
	}
	s.notifier.Send(ctx, n.AlertText())
	return nil
}

// SendTest raises a throwaway alert so operators can verify the channel.
func (s *Service) SendTest(ctx context.Context, text string) bool {
	if text == "" {
		text = "Test notification from lead bridge"
	}
	return s.notifier.Send(ctx, text)
}
