package leads

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/journeyboard/platform/pkg/common/models"
)

type fakePublisher struct {
	events []models.LeadEvent
	err    error
}

func (f *fakePublisher) PublishLead(ctx context.Context, event models.LeadEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeNotifier struct {
	alerts []string
}

func (f *fakeNotifier) Send(ctx context.Context, text string) bool {
	f.alerts = append(f.alerts, text)
	return true
}

func negotiationHook(t *testing.T) ThumbtackWebhook {
	t.Helper()
	payload := `{
		"customer": {"firstName": "AJ", "lastName": "Rivera", "phone": "555-0100"},
		"business": {"name": "Sparkle Co", "businessID": "biz-9"},
		"negotiationID": "neg-1",
		"createdAt": "2025-08-01T14:00:00Z",
		"request": {
			"description": "Deep clean",
			"category": {"name": "House Cleaning"},
			"location": {"city": "Austin", "state": "TX", "zipCode": "78701"}
		}
	}`
	return ThumbtackWebhook{
		Event: ThumbtackEvent{EventType: "NegotiationCreatedV4", WebhookID: "wh-1"},
		Data:  json.RawMessage(payload),
	}
}

func TestHandleThumbtackNegotiationPublishesLead(t *testing.T) {
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	svc := NewService(publisher, notifier)

	if err := svc.HandleThumbtack(context.Background(), negotiationHook(t)); err != nil {
		t.Fatalf("webhook handling failed: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one lead event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Name != "AJ Rivera" {
		t.Fatalf("unexpected lead name %q", event.Name)
	}
	if event.Platform != "THUMBTACK" || event.Source != "thumbtack-webhook" {
		t.Fatalf("unexpected event tags: %s/%s", event.Platform, event.Source)
	}
	if event.Data["negotiation_id"] != "neg-1" {
		t.Fatalf("expected negotiation id carried in data, got %v", event.Data)
	}

	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0], "AJ Rivera") {
		t.Fatalf("expected alert naming the customer, got %v", notifier.alerts)
	}
}

func TestHandleThumbtackPublishErrorPropagates(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewService(publisher, &fakeNotifier{})

	if err := svc.HandleThumbtack(context.Background(), negotiationHook(t)); err == nil {
		t.Fatal("expected publish failure to propagate for redelivery")
	}
}

func TestHandleThumbtackAlertOnlyEvents(t *testing.T) {
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	svc := NewService(publisher, notifier)
	ctx := context.Background()

	hooks := []ThumbtackWebhook{
		{
			Event: ThumbtackEvent{EventType: "MessageCreatedV4"},
			Data:  json.RawMessage(`{"from": "Customer", "customer": {"displayName": "AJ"}, "text": "still available?"}`),
		},
		{
			Event: ThumbtackEvent{EventType: "ReviewCreatedV4"},
			Data:  json.RawMessage(`{"rating": 5, "reviewerName": "AJ", "reviewText": "great"}`),
		},
		{
			Event: ThumbtackEvent{EventType: "IncentiveUsedV4"},
			Data:  json.RawMessage(`{"discount": {"promoCode": "SAVE10"}}`),
		},
		{
			Event: ThumbtackEvent{EventType: "SomethingNewV5", Description: "mystery"},
		},
	}
	for _, hook := range hooks {
		if err := svc.HandleThumbtack(ctx, hook); err != nil {
			t.Fatalf("%s: handling failed: %v", hook.Event.EventType, err)
		}
	}

	if len(publisher.events) != 0 {
		t.Fatalf("alert-only events must not publish leads, got %d", len(publisher.events))
	}
	if len(notifier.alerts) != 4 {
		t.Fatalf("expected 4 alerts, got %d", len(notifier.alerts))
	}
	if !strings.Contains(notifier.alerts[0], "AJ (Customer)") {
		t.Fatalf("message alert missing sender: %q", notifier.alerts[0])
	}
	if !strings.Contains(notifier.alerts[3], "SomethingNewV5") {
		t.Fatalf("generic alert missing event type: %q", notifier.alerts[3])
	}
}

func TestHandleThumbtackRejectsMissingEvent(t *testing.T) {
	svc := NewService(&fakePublisher{}, &fakeNotifier{})
	err := svc.HandleThumbtack(context.Background(), ThumbtackWebhook{})
	if !errors.Is(err, ErrInvalidWebhook) {
		t.Fatalf("expected ErrInvalidWebhook, got %v", err)
	}
}

func TestHandleGmailPush(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewService(&fakePublisher{}, notifier)
	ctx := context.Background()

	raw := base64.StdEncoding.EncodeToString([]byte(`{"emailAddress": "ops@example.com", "historyId": 42}`))
	var push PubSubPush
	push.Message.Data = raw
	if err := svc.HandleGmail(ctx, push); err != nil {
		t.Fatalf("gmail push failed: %v", err)
	}
	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0], "ops@example.com") {
		t.Fatalf("expected alert with mailbox, got %v", notifier.alerts)
	}

	// Keepalive with no payload is acked silently.
	if err := svc.HandleGmail(ctx, PubSubPush{}); err != nil {
		t.Fatalf("empty push must be accepted: %v", err)
	}
	if len(notifier.alerts) != 1 {
		t.Fatal("empty push must not raise an alert")
	}

	push.Message.Data = "%%%not-base64%%%"
	if err := svc.HandleGmail(ctx, push); !errors.Is(err, ErrInvalidWebhook) {
		t.Fatalf("expected ErrInvalidWebhook for bad payload, got %v", err)
	}
}
