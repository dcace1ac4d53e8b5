package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/mirage/internal/model"
)

// Event topic constants
const (
	TopicSessionConnected     = "mirage.session.connected"
	TopicLoginLaunched        = "mirage.login.launched"
	TopicTransactionSubmitted = "mirage.transaction.submitted"
	TopicTicketStatus         = "mirage.ticket.status"
	TopicABIUploaded          = "mirage.abi.uploaded"

	// TopicAll matches every topic above.
	TopicAll = "mirage.>"
)

// Envelope is embedded in every event.
type Envelope struct {
	ID       string         `json:"id"`
	DeviceID model.DeviceID `json:"device_id"`
	At       time.Time      `json:"at"`
}

// EventID returns the envelope ID; publishers use it for deduplication.
func (e Envelope) EventID() string { return e.ID }

// Event types

type SessionConnected struct {
	Envelope
	Session    string `json:"session"`
	NeedsLogin bool   `json:"login"`
}

type LoginLaunched struct {
	Envelope
	URI string `json:"uri"`
}

type TransactionSubmitted struct {
	Envelope
	Call   model.ContractCall `json:"call"`
	Ticket model.Ticket       `json:"ticket"`
}

type TicketStatus struct {
	Envelope
	Ticket  model.Ticket `json:"ticket"`
	Attempt int          `json:"attempt"`
	Code    int          `json:"code"`
	Status  string       `json:"status"`
}

type ABIUploaded struct {
	Envelope
	ABIHash string `json:"abi_hash"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher drops every event. Emitters use it when no NATS URL is set.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
