package mirage

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// PollTicket asks the backend for the status of ticket until it reports a
// non-pending code or the attempt budget runs out, waiting the poll interval
// between attempts. Every status received is passed to fn.
//
// Attempts that fail or return a malformed body are logged and count
// against the budget. PollTicket returns the last status seen, with
// ErrPollExhausted when it was still pending, or ctx's error when cancelled.
func (c *Client) PollTicket(ctx context.Context, ticket model.Ticket, fn func(model.TicketStatus)) (model.TicketStatus, error) {
	var last model.TicketStatus
	req := &client.TicketRequest{DeviceID: c.device, Ticket: ticket}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.interval); err != nil {
				return last, err
			}
		}

		status, err := c.api.TicketResult(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			c.logger.Warn("poll ticket failed", "ticket", ticket.String(), "attempt", attempt, "err", err)
			c.observePoll(0, false)
			continue
		}

		last = *status
		c.observePoll(last.Code, true)
		c.logger.Debug(last.Message(), "ticket", ticket.String(), "attempt", attempt, "code", last.Code)
		c.emitter.Emit(ctx, events.TopicTicketStatus, events.TicketStatus{
			Envelope: c.emitter.Envelope(c.device),
			Ticket:   ticket,
			Attempt:  attempt,
			Code:     last.Code,
			Status:   last.Status,
		})
		if fn != nil {
			fn(last)
		}
		if !last.IsPending() {
			return last, nil
		}
	}
	return last, fmt.Errorf("%w: ticket %s, %d attempts", ErrPollExhausted, ticket, c.maxAttempts)
}

// PollTicketWith is PollTicket reporting each status as a display message
// and code. It blocks like PollTicket.
func (c *Client) PollTicketWith(ctx context.Context, ticket model.Ticket, fn func(msg string, code int)) {
	_, err := c.PollTicket(ctx, ticket, func(s model.TicketStatus) {
		if fn != nil {
			fn(s.Message(), s.Code)
		}
	})
	if err != nil {
		c.logger.Warn("poll ticket ended without result", "ticket", ticket.String(), "err", err)
	}
}

func (c *Client) observePoll(code int, ok bool) {
	if c.polls != nil {
		c.polls.ObservePoll(code, ok)
	}
}
