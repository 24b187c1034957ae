// Package leads bridges external lead sources into the journey board:
// Thumbtack v4 webhooks and Gmail Pub/Sub pushes come in, operator alerts
// and lead events go out.
package leads

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ThumbtackWebhook is the v4 envelope: an event descriptor plus an
// event-type-specific data payload.
type ThumbtackWebhook struct {
	Event ThumbtackEvent  `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ThumbtackEvent struct {
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	WebhookID   string    `json:"webhookID"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

const (
	eventNegotiationCreated = "NegotiationCreatedV4"
	eventMessageCreated     = "MessageCreatedV4"
	eventReviewCreated      = "ReviewCreatedV4"
	eventIncentiveUsed      = "IncentiveUsedV4"
)

type thumbtackCustomer struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
}

type thumbtackBusiness struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	BusinessID  string `json:"businessID"`
}

// NegotiationPayload is a new lead: the only event type that creates a
// journey record in addition to the alert.
type NegotiationPayload struct {
	Customer      thumbtackCustomer `json:"customer"`
	Business      thumbtackBusiness `json:"business"`
	NegotiationID string            `json:"negotiationID"`
	CreatedAt     time.Time         `json:"createdAt"`
	Request       struct {
		Description string `json:"description"`
		Category    struct {
			Name string `json:"name"`
		} `json:"category"`
		Location struct {
			City    string `json:"city"`
			State   string `json:"state"`
			ZipCode string `json:"zipCode"`
		} `json:"location"`
	} `json:"request"`
}

func (p NegotiationPayload) CustomerName() string {
	return strings.TrimSpace(p.Customer.FirstName + " " + p.Customer.LastName)
}

func (p NegotiationPayload) AlertText() string {
	phone := p.Customer.Phone
	if phone == "" {
		phone = "Not provided"
	}
	description := p.Request.Description
	if description == "" {
		description = "No description"
	}
	return fmt.Sprintf(
		"NEW THUMBTACK NEGOTIATION\n\nCustomer: %s\nPhone: %s\nBusiness: %s\nService: %s\nLocation: %s, %s %s\nDescription: %s\nNegotiation ID: %s\nBusiness ID: %s\nTime: %s",
		p.CustomerName(), phone, p.Business.Name, p.Request.Category.Name,
		p.Request.Location.City, p.Request.Location.State, p.Request.Location.ZipCode,
		description, p.NegotiationID, p.Business.BusinessID,
		p.CreatedAt.Format(time.RFC1123),
	)
}

type MessagePayload struct {
	Customer      thumbtackCustomer `json:"customer"`
	Business      thumbtackBusiness `json:"business"`
	From          string            `json:"from"`
	Text          string            `json:"text"`
	SentAt        time.Time         `json:"sentAt"`
	NegotiationID string            `json:"negotiationID"`
	MessageID     string            `json:"messageID"`
}

func (p MessagePayload) AlertText() string {
	sender := p.Business.DisplayName + " (Business)"
	if p.From == "Customer" {
		sender = p.Customer.DisplayName + " (Customer)"
	}
	return fmt.Sprintf(
		"NEW MESSAGE\n\nFrom: %s\nMessage: %s\nNegotiation ID: %s\nMessage ID: %s\nTime: %s",
		sender, p.Text, p.NegotiationID, p.MessageID, p.SentAt.Format(time.RFC1123),
	)
}

type ReviewPayload struct {
	Rating       float64   `json:"rating"`
	ReviewText   string    `json:"reviewText"`
	ReviewerName string    `json:"reviewerName"`
	CreateTime   time.Time `json:"createTime"`
	ReviewID     string    `json:"reviewID"`
}

func (p ReviewPayload) AlertText() string {
	text := p.ReviewText
	if text == "" {
		text = "No text provided"
	}
	return fmt.Sprintf(
		"NEW REVIEW\n\nReviewer: %s\nRating: %g/5\nReview: %s\nReview ID: %s\nTime: %s",
		p.ReviewerName, p.Rating, text, p.ReviewID, p.CreateTime.Format(time.RFC1123),
	)
}

type IncentivePayload struct {
	Discount struct {
		Name      string `json:"name"`
		PromoCode string `json:"promoCode"`
	} `json:"discount"`
	RedemptionTime time.Time `json:"redemptionTime"`
}

func (p IncentivePayload) AlertText() string {
	discount := p.Discount.Name
	if discount == "" {
		discount = "Promo Code: " + p.Discount.PromoCode
	}
	return fmt.Sprintf(
		"INCENTIVE USED\n\nDiscount: %s\nTime: %s",
		discount, p.RedemptionTime.Format(time.RFC1123),
	)
}

func genericAlertText(event ThumbtackEvent) string {
	description := event.Description
	if description == "" {
		description = "Unknown event"
	}
	return fmt.Sprintf(
		"Thumbtack Notification\n\nEvent Type: %s\nDescription: %s\nWebhook ID: %s\nTime: %s",
		event.EventType, description, event.WebhookID, event.TriggeredAt.Format(time.RFC1123),
	)
}

// PubSubPush is the Google Pub/Sub push envelope carrying a Gmail history
// notification as base64 JSON.
type PubSubPush struct {
	Message struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// GmailNotification is the decoded Pub/Sub payload.
type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// DecodeGmailNotification unwraps the push envelope. An envelope without
// message data is not an error; Pub/Sub sends empty keepalives.
func DecodeGmailNotification(push PubSubPush) (GmailNotification, bool, error) {
	if push.Message.Data == "" {
		return GmailNotification{}, false, nil
	}
	raw, err := base64.StdEncoding.DecodeString(push.Message.Data)
	if err != nil {
		return GmailNotification{}, false, fmt.Errorf("decode pubsub data: %w", err)
	}
	var n GmailNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return GmailNotification{}, false, fmt.Errorf("parse gmail notification: %w", err)
	}
	return n, true, nil
}

func (n GmailNotification) AlertText() string {
	return fmt.Sprintf(
		"New Gmail activity for %s (history %d) - check inbox for direct leads",
		n.EmailAddress, n.HistoryID,
	)
}
