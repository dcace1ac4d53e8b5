package mirage

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// CallMethod performs a read-only contract call and returns the raw response body.
func (c *Client) CallMethod(ctx context.Context, call model.ContractCall) ([]byte, error) {
	body, err := c.api.CallMethod(ctx, &client.TransactionRequest{DeviceID: c.device, ContractCall: call})
	if err != nil {
		return nil, fmt.Errorf("call method %s: %w", call.Method, err)
	}
	c.logger.Debug("method called", "method", call.Method, "bytes", len(body))
	return body, nil
}

// CallMethodWith runs CallMethod in the background and passes the body to
// fn. fn is not called when the call fails.
func (c *Client) CallMethodWith(ctx context.Context, call model.ContractCall, fn func(body string)) {
	c.deliver(ctx, func() {
		body, err := c.CallMethod(ctx, call)
		if err != nil {
			c.logger.Warn("call method failed", "err", err)
			return
		}
		if fn != nil {
			fn(string(body))
		}
	})
}

// UploadABI registers a contract ABI and returns the hash that later calls
// reference it by.
func (c *Client) UploadABI(ctx context.Context, abi string) (string, error) {
	hash, err := c.api.UploadABI(ctx, abi)
	if err != nil {
		return "", fmt.Errorf("upload abi: %w", err)
	}
	if hash == "" {
		return "", fmt.Errorf("upload abi: %w: missing abi_hash", client.ErrMalformedResponse)
	}
	c.logger.Debug("abi uploaded", "abi_hash", hash)
	c.emitter.Emit(ctx, events.TopicABIUploaded, events.ABIUploaded{
		Envelope: c.emitter.Envelope(c.device),
		ABIHash:  hash,
	})
	return hash, nil
}

// UploadABIWith runs UploadABI in the background and passes the hash to fn.
// fn is not called when the upload fails.
func (c *Client) UploadABIWith(ctx context.Context, abi string, fn func(hash string)) {
	c.deliver(ctx, func() {
		hash, err := c.UploadABI(ctx, abi)
		if err != nil {
			c.logger.Warn("upload abi failed", "err", err)
			return
		}
		if fn != nil {
			fn(hash)
		}
	})
}
