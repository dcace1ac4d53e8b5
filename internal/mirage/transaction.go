package mirage

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// SendTransaction submits call in the background and, on the calling
// goroutine, opens the session's approval URL so the player can sign.
// It returns ErrNoSession before Connect succeeded.
func (c *Client) SendTransaction(ctx context.Context, call model.ContractCall) (*Pending[model.Ticket], error) {
	sess, ok := c.Session()
	if !ok {
		return nil, ErrNoSession
	}

	p := background(ctx, c, func(ctx context.Context) (model.Ticket, error) {
		return c.submit(ctx, call)
	})

	if approval, ok := sess.ApprovalURL(); ok {
		c.launch(ctx, approval)
	} else {
		c.logger.Warn("session is not a launchable url, skipping approval", "session", sess.ID)
	}
	return p, nil
}

func (c *Client) submit(ctx context.Context, call model.ContractCall) (model.Ticket, error) {
	resp, err := c.api.SendTransaction(ctx, &client.TransactionRequest{DeviceID: c.device, ContractCall: call})
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	if resp.Ticket == "" {
		return "", fmt.Errorf("send transaction: %w: missing ticket", client.ErrMalformedResponse)
	}
	c.logger.Debug("transaction submitted", "method", call.Method, "ticket", resp.Ticket.String())
	c.emitter.Emit(ctx, events.TopicTransactionSubmitted, events.TransactionSubmitted{
		Envelope: c.emitter.Envelope(c.device),
		Call:     call,
		Ticket:   resp.Ticket,
	})
	return resp.Ticket, nil
}

// SendTransactionWith is SendTransaction with a callback. fn receives the
// ticket; it is not called when the submission fails.
func (c *Client) SendTransactionWith(ctx context.Context, call model.ContractCall, fn func(model.Ticket)) {
	p, err := c.SendTransaction(ctx, call)
	if err != nil {
		c.logger.Warn("send transaction skipped", "err", err)
		return
	}
	c.deliver(ctx, func() {
		ticket, err := p.Wait(ctx)
		if err != nil {
			c.logger.Warn("send transaction failed", "err", err)
			return
		}
		if fn != nil {
			fn(ticket)
		}
	})
}

// deliver runs fn on a tracked goroutine.
func (c *Client) deliver(ctx context.Context, fn func()) {
	background(ctx, c, func(context.Context) (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}
