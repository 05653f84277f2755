package model

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minWebhookSinkNameLen = 3
	maxWebhookSinkNameLen = 255
	maxWebhookURILen      = 1024
)

// WebhookSink is an HTTP destination notified of booking lifecycle events.
// Selector is an optional JMESPath expression applied to the event payload
// before delivery; an empty selector sends the full payload.
type WebhookSink struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	URI       string    `json:"uri"        db:"uri"`
	Selector  *string   `json:"selector,omitempty" db:"selector"`
	Enabled   bool      `json:"enabled"    db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateWebhookSinkRequest carries fields for registering a webhook sink.
type CreateWebhookSinkRequest struct {
	Name     string  `json:"name"`
	URI      string  `json:"uri"`
	Selector *string `json:"selector,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

// Normalize trims the CreateWebhookSinkRequest fields.
func (r *CreateWebhookSinkRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.URI = strings.TrimSpace(r.URI)
}

// Validate validates the CreateWebhookSinkRequest fields. Selector syntax is
// validated by the webhook service, which owns the JMESPath dependency.
func (r *CreateWebhookSinkRequest) Validate() error {
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < minWebhookSinkNameLen || nameLen > maxWebhookSinkNameLen {
		return errors.New("webhook sink name must be between 3 and 255 characters")
	}
	if r.URI == "" {
		return errors.New("webhook sink URI is required")
	}
	if utf8.RuneCountInString(r.URI) > maxWebhookURILen {
		return errors.New("webhook sink URI is too long")
	}
	u, err := url.Parse(r.URI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("webhook sink URI must be an absolute http(s) URL")
	}
	return nil
}

// BookingEvent is the payload delivered to webhook sinks when a booking
// request changes state.
type BookingEvent struct {
	Type       string        `json:"type"`
	Reference  string        `json:"reference"`
	BookingID  string        `json:"booking_id"`
	BedID      string        `json:"bed_id"`
	BuildingID string        `json:"building_id"`
	Username   string        `json:"username"`
	Status     BookingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}
