package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alfredjeanlab/mirage/internal/client"
	"github.com/alfredjeanlab/mirage/internal/model"
)

// maxBodyBytes bounds request bodies; ABIs are the largest payload.
const maxBodyBytes = 1 << 20

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /"+client.EndpointConnect, s.counted(client.EndpointConnect, s.handleConnect))
	mux.HandleFunc("POST /"+client.EndpointTransaction, s.counted(client.EndpointTransaction, s.handleTransaction))
	mux.HandleFunc("POST /"+client.EndpointResult, s.counted(client.EndpointResult, s.handleResult))
	mux.HandleFunc("POST /"+client.EndpointCallMethod, s.counted(client.EndpointCallMethod, s.handleCallMethod))
	mux.HandleFunc("GET /login/{session}", s.handlePage("Logged in. You can return to the game."))
	mux.HandleFunc("GET /approve/{session}", s.handlePage("Transaction approved. You can return to the game."))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return AgentMiddleware(s.agent, mux)
}

// AgentMiddleware rejects POST requests whose User-Agent is not agent.
func AgentMiddleware(agent string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Header.Get("User-Agent") != agent {
			writeError(w, http.StatusForbidden, "unknown client agent")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleConnect handles POST /connect.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req client.ConnectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DeviceID.IsZero() {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	writeJSON(w, http.StatusOK, s.connect(req.DeviceID))
}

// handleTransaction handles POST /send/transaction.
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req client.TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.knownDevice(req.DeviceID) {
		writeError(w, http.StatusUnauthorized, "unknown device, connect first")
		return
	}
	if err := model.ValidateContractCall(&req.ContractCall); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tk := s.submit(req.DeviceID, req.ContractCall)
	s.logger.Info("transaction submitted", "device_id", req.DeviceID.String(), "method", req.Method, "ticket", tk.String())
	writeJSON(w, http.StatusOK, client.TransactionResponse{Ticket: tk})
}

// handleResult handles POST /result.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	var req client.TicketRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := model.ValidateTicket(req.Ticket); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := s.result(req.DeviceID, req.Ticket)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("ticket %q not found", req.Ticket))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// callMethodRequest is either a contract call or an ABI upload.
type callMethodRequest struct {
	client.TransactionRequest
	ABI string `json:"abi"`
}

// handleCallMethod handles POST /call/method.
func (s *Server) handleCallMethod(w http.ResponseWriter, r *http.Request) {
	var req callMethodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ABI != "" {
		hash := s.registerABI(req.ABI)
		s.logger.Info("abi registered", "abi_hash", hash)
		writeJSON(w, http.StatusOK, client.ABIResponse{ABIHash: hash})
		return
	}

	call := req.ContractCall
	if err := model.ValidateContractCall(&call); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.knownABI(call.ABIHash) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("abi %q not registered", call.ABIHash))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"contract_address": call.ContractAddress,
		"method":           call.Method,
		"args":             call.Args,
		"result":           "ok",
	})
}

func (s *Server) handlePage(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, text+"\n")
	}
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// counted records the response code of every request to endpoint.
func (s *Server) counted(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.requests.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// decodeBody decodes the JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
