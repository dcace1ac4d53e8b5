// Package mirage binds a device to the Mirage wallet backend: it exchanges
// the device identifier for a session, submits transactions, polls their
// tickets and performs read-only contract calls.
package mirage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/launcher"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// Poll defaults.
const (
	DefaultPollAttempts = 10
	DefaultPollInterval = 10 * time.Second
)

var (
	// ErrNoSession is returned when a transaction is sent before Connect succeeded.
	ErrNoSession = errors.New("mirage: no session, call Connect first")
	// ErrPollExhausted is returned when a ticket is still pending after the last attempt.
	ErrPollExhausted = errors.New("mirage: ticket still pending after all poll attempts")
)

// PollObserver is told about every poll attempt. ok is false when the attempt
// produced no status.
type PollObserver interface {
	ObservePoll(code int, ok bool)
}

// Client holds the device identity and the current session and runs every
// backend operation on their behalf. It is safe for concurrent use.
type Client struct {
	device   model.DeviceID
	api      client.MirageClient
	launcher launcher.Launcher
	emitter  *events.Emitter
	polls    PollObserver
	logger   *slog.Logger

	maxAttempts int
	interval    time.Duration
	wait        func(ctx context.Context, d time.Duration) error

	mu      sync.RWMutex
	session model.Session

	wg sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithLauncher sets the launcher used for login and approval URLs.
func WithLauncher(l launcher.Launcher) Option {
	return func(c *Client) { c.launcher = l }
}

// WithEmitter publishes lifecycle events through e.
func WithEmitter(e *events.Emitter) Option {
	return func(c *Client) { c.emitter = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPollAttempts sets the maximum number of result requests per poll.
func WithPollAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithPollInterval sets the delay between two poll attempts.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.interval = d
		}
	}
}

// WithPollObserver reports poll attempts to o.
func WithPollObserver(o PollObserver) Option {
	return func(c *Client) { c.polls = o }
}

// New returns a Client for device talking to api.
func New(device model.DeviceID, api client.MirageClient, opts ...Option) *Client {
	c := &Client{
		device:      device,
		api:         api,
		launcher:    launcher.OS{},
		maxAttempts: DefaultPollAttempts,
		interval:    DefaultPollInterval,
		wait:        sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.emitter == nil {
		c.emitter = events.NewEmitter(nil, c.logger)
	}
	return c
}

// Device returns the device identifier.
func (c *Client) Device() model.DeviceID {
	return c.device
}

// Session returns the current session; ok is false before Connect succeeded.
func (c *Client) Session() (s model.Session, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, !c.session.IsZero()
}

func (c *Client) setSession(s model.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// Close waits for background operations and closes the transport.
func (c *Client) Close() error {
	c.wg.Wait()
	return c.api.Close()
}

// background runs fn like Go, tracked so Close can wait for it.
func background[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error)) *Pending[T] {
	c.wg.Add(1)
	return Go(ctx, func(ctx context.Context) (T, error) {
		defer c.wg.Done()
		return fn(ctx)
	})
}

// launch opens rawURL. Failures are logged.
func (c *Client) launch(ctx context.Context, rawURL string) {
	if err := c.launcher.Launch(ctx, rawURL); err != nil {
		c.logger.Warn("launch url failed", "url", rawURL, "err", err)
		return
	}
	c.emitter.Emit(ctx, events.TopicLoginLaunched, events.LoginLaunched{
		Envelope: c.emitter.Envelope(c.device),
		URI:      rawURL,
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
