package mirage

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// Connect exchanges the device identifier for a session and stores it on the
// client. When the backend asks for a login, the login URI is handed to the
// launcher; launch failures are logged and do not fail Connect.
func (c *Client) Connect(ctx context.Context) (model.Session, error) {
	sess, err := c.api.Connect(ctx, c.device)
	if err != nil {
		c.logger.Warn("connect failed", "device_id", c.device.String(), "err", err)
		return model.Session{}, fmt.Errorf("connect: %w", err)
	}
	if sess.IsZero() {
		c.logger.Warn("connect returned no session", "device_id", c.device.String())
		return model.Session{}, fmt.Errorf("connect: %w: missing session", client.ErrMalformedResponse)
	}
	c.setSession(*sess)
	c.logger.Debug("session established", "session", sess.ID, "login", sess.NeedsLogin)

	c.emitter.Emit(ctx, events.TopicSessionConnected, events.SessionConnected{
		Envelope:   c.emitter.Envelope(c.device),
		Session:    sess.ID,
		NeedsLogin: sess.NeedsLogin,
	})

	if sess.NeedsLogin {
		c.launch(ctx, sess.LoginURI)
	}
	return *sess, nil
}

// ConnectWith runs Connect in the background and reports success to fn.
func (c *Client) ConnectWith(ctx context.Context, fn func(ok bool)) {
	background(ctx, c, func(ctx context.Context) (struct{}, error) {
		_, err := c.Connect(ctx)
		if fn != nil {
			fn(err == nil)
		}
		return struct{}{}, err
	})
}
