// Package client provides a transport interface for the Mirage backend and an
// HTTP/JSON implementation of its wire protocol.
package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/mirage/internal/model"
)

// Endpoints relative to the backend base URL.
const (
	EndpointConnect     = "connect"
	EndpointTransaction = "send/transaction"
	EndpointResult      = "result"
	EndpointCallMethod  = "call/method"
	// ABI registration shares the call endpoint; the backend tells the two
	// apart by body shape.
	EndpointUploadABI = EndpointCallMethod
)

// DefaultAgent is sent as User-Agent on every request.
const DefaultAgent = "X-MirageSDK-Agent"

// MirageClient is the interface the orchestration layer uses to talk to the
// Mirage backend. It is implemented by HTTPClient.
type MirageClient interface {
	// Session bootstrap
	Connect(ctx context.Context, deviceID model.DeviceID) (*model.Session, error)

	// Transactions
	SendTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error)
	TicketResult(ctx context.Context, req *TicketRequest) (*model.TicketStatus, error)

	// Read-only calls and ABI registration
	CallMethod(ctx context.Context, req *TransactionRequest) ([]byte, error)
	UploadABI(ctx context.Context, abi string) (string, error)

	// Lifecycle
	Close() error
}

// Observer is notified once per request. Outcome is one of the Outcome constants.
type Observer interface {
	ObserveRequest(endpoint, outcome string, elapsed time.Duration)
}

// Request outcomes reported to an Observer.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeAPI       = "api_error"
	OutcomeMalformed = "malformed"
)

// ConnectRequest is the body of the connect endpoint.
type ConnectRequest struct {
	DeviceID model.DeviceID `json:"device_id"`
}

// TransactionRequest is the body of send/transaction and call/method.
type TransactionRequest struct {
	DeviceID model.DeviceID `json:"device_id"`
	model.ContractCall
}

// TransactionResponse is the response of send/transaction.
type TransactionResponse struct {
	Ticket model.Ticket `json:"ticket"`
}

// TicketRequest is the body of the result endpoint.
type TicketRequest struct {
	DeviceID model.DeviceID `json:"device_id"`
	Ticket   model.Ticket   `json:"ticket"`
}

// ABIRequest is the body of an ABI upload.
type ABIRequest struct {
	ABI string `json:"abi"`
}

// ABIResponse is the response of an ABI upload.
type ABIResponse struct {
	ABIHash string `json:"abi_hash"`
}
