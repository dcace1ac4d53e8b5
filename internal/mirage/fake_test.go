package mirage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/launcher"
	"github.com/alfredjeanlab/mirage/internal/model"
)

var errBoom = errors.New("boom")

// fakeAPI is an in-memory client.MirageClient.
type fakeAPI struct {
	mu sync.Mutex

	session    *model.Session
	connectErr error

	ticket  model.Ticket
	sendErr error
	sent    []client.TransactionRequest

	// results are returned in order; a nil status means errBoom.
	results     []*model.TicketStatus
	resultCalls int

	callBody []byte
	callErr  error

	abiHash string
	abiErr  error
	abis    []string

	closed bool
}

var _ client.MirageClient = (*fakeAPI)(nil)

func (f *fakeAPI) Connect(_ context.Context, _ model.DeviceID) (*model.Session, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	s := *f.session
	return &s, nil
}

func (f *fakeAPI) SendTransaction(_ context.Context, req *client.TransactionRequest) (*client.TransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *req)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &client.TransactionResponse{Ticket: f.ticket}, nil
}

func (f *fakeAPI) TicketResult(_ context.Context, _ *client.TicketRequest) (*model.TicketStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.resultCalls
	f.resultCalls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if f.results[i] == nil {
		return nil, errBoom
	}
	s := *f.results[i]
	return &s, nil
}

func (f *fakeAPI) CallMethod(_ context.Context, _ *client.TransactionRequest) ([]byte, error) {
	return f.callBody, f.callErr
}

func (f *fakeAPI) UploadABI(_ context.Context, abi string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abis = append(f.abis, abi)
	return f.abiHash, f.abiErr
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resultCalls
}

// launches records every launched URL.
type launches struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (l *launches) launcher() launcher.Launcher {
	return launcher.Func(func(_ context.Context, u string) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.urls = append(l.urls, u)
		return l.err
	})
}

func (l *launches) got() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

// topics records published event topics.
type topics struct {
	mu  sync.Mutex
	got []string
}

func (p *topics) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, topic)
	return nil
}

func (p *topics) Close() error { return nil }

func (p *topics) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.got...)
}

// waits records poll delays instead of sleeping.
type waits struct {
	mu sync.Mutex
	d  []time.Duration
}

func (w *waits) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.d = append(w.d, d)
	w.mu.Unlock()
	return ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient returns a client over api with recording collaborators.
func newTestClient(api client.MirageClient, opts ...Option) (*Client, *launches, *topics) {
	l := &launches{}
	pub := &topics{}
	base := []Option{
		WithLauncher(l.launcher()),
		WithLogger(discardLogger()),
		WithEmitter(events.NewEmitter(pub, discardLogger())),
	}
	c := New("dev-1", api, append(base, opts...)...)
	return c, l, pub
}
