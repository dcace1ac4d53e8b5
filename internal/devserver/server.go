// Package devserver is an in-memory Mirage backend for local development and
// integration tests. It speaks the same wire protocol as the real backend.
package devserver

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/idgen"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// DefaultPendingPolls is how many result requests report a ticket as pending.
const DefaultPendingPolls = 2

// Ticket status codes reported by the result endpoint.
const (
	CodePending   = model.StatusPending
	CodeConfirmed = 1
)

type device struct {
	session  string
	loggedIn bool
}

type ticket struct {
	device model.DeviceID
	call   model.ContractCall
	polls  int
}

// Server holds devices, tickets and ABIs in memory.
type Server struct {
	agent        string
	publicURL    string
	pendingPolls int
	logger       *slog.Logger
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec

	mu      sync.Mutex
	devices map[model.DeviceID]*device
	tickets map[model.Ticket]*ticket
	abis    map[string]string
}

// Option configures a Server.
type Option func(*Server)

// WithAgent sets the User-Agent every request must carry.
func WithAgent(agent string) Option {
	return func(s *Server) {
		if agent != "" {
			s.agent = agent
		}
	}
}

// WithPublicURL sets the base of the login and approval URLs handed out.
func WithPublicURL(u string) Option {
	return func(s *Server) {
		if u != "" {
			s.publicURL = strings.TrimRight(u, "/") + "/"
		}
	}
}

// WithPendingPolls sets how many polls a ticket stays pending.
func WithPendingPolls(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.pendingPolls = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns an empty Server.
func New(opts ...Option) *Server {
	s := &Server{
		agent:        client.DefaultAgent,
		publicURL:    "http://localhost:3000/",
		pendingPolls: DefaultPendingPolls,
		logger:       slog.Default(),
		registry:     prometheus.NewRegistry(),
		devices:      make(map[model.DeviceID]*device),
		tickets:      make(map[model.Ticket]*ticket),
		abis:         make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirage_devserver_requests_total",
		Help: "Requests handled by the dev server by endpoint and status code",
	}, []string{"endpoint", "code"})
	s.registry.MustRegister(s.requests)
	return s
}

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// connect returns the session of id, creating one on first contact.
// Login is requested until the device has been approved once.
func (s *Server) connect(id model.DeviceID) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		d = &device{session: idgen.MustGenerateWithPrefix(idgen.PrefixSession)}
		s.devices[id] = d
		s.logger.Info("device registered", "device_id", id.String(), "session", d.session)
	}
	sess := model.Session{
		ID:         s.publicURL + "approve/" + d.session,
		LoginURI:   s.publicURL + "login/" + d.session,
		NeedsLogin: !d.loggedIn,
	}
	d.loggedIn = true
	return sess
}

func (s *Server) knownDevice(id model.DeviceID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.devices[id]
	return ok
}

func (s *Server) submit(id model.DeviceID, call model.ContractCall) model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	tk := model.Ticket(idgen.MustGenerateWithPrefix(idgen.PrefixTicket))
	s.tickets[tk] = &ticket{device: id, call: call}
	return tk
}

// result advances the ticket by one poll.
func (s *Server) result(id model.DeviceID, tk model.Ticket) (model.TicketStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[tk]
	if !ok || t.device != id {
		return model.TicketStatus{}, false
	}
	t.polls++
	if t.polls <= s.pendingPolls {
		return model.TicketStatus{Code: CodePending, Status: "pending"}, true
	}
	return model.TicketStatus{Code: CodeConfirmed, Status: "confirmed"}, true
}

// registerABI stores abi under its SHA-256 hash.
func (s *Server) registerABI(abi string) string {
	sum := sha256.Sum256([]byte(abi))
	hash := hex.EncodeToString(sum[:])
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abis[hash] = abi
	return hash
}

func (s *Server) knownABI(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.abis[hash]
	return ok
}
