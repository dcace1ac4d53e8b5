package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/mirage/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	body        string
	contentType string
	userAgent   string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.contentType = r.Header.Get("Content-Type")
	h.userAgent = r.Header.Get("User-Agent")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler, opts ...Option) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL+"/", opts...)
	return c, srv
}

// requestBody decodes the captured request body into a generic map.
func requestBody(t *testing.T, h *testHandler) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("unmarshaling request body %q: %v", h.body, err)
	}
	return body
}

// recordingObserver collects ObserveRequest calls.
type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveRequest(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, endpoint+":"+outcome)
}

func testCall() model.ContractCall {
	return model.ContractCall{
		ContractAddress: "0xc0ffee",
		ABIHash:         "abi-hash-1",
		Method:          "transfer",
		Args:            "0xbeef,100",
	}
}

// --- Headers ---

func TestHTTPClient_FixedHeaders(t *testing.T) {
	h := &testHandler{responseBody: `{"uri":"x","session":"s1","login":false}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.Connect(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.userAgent != "X-MirageSDK-Agent" {
		t.Errorf("User-Agent = %q, want X-MirageSDK-Agent", h.userAgent)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", h.contentType)
	}
}

func TestHTTPClient_CustomAgent(t *testing.T) {
	h := &testHandler{responseBody: `{}`}
	c, srv := newTestClient(h, WithAgent("X-Custom-Agent"))
	defer srv.Close()

	_, _ = c.Connect(context.Background(), "dev-1")
	if h.userAgent != "X-Custom-Agent" {
		t.Errorf("User-Agent = %q, want X-Custom-Agent", h.userAgent)
	}
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	for _, base := range []string{"http://mirage.test", "http://mirage.test/", "http://mirage.test//"} {
		if got := NewHTTPClient(base).BaseURL(); got != "http://mirage.test" {
			t.Errorf("NewHTTPClient(%q).BaseURL() = %q", base, got)
		}
	}
}

// --- Connect ---

func TestHTTPClient_Connect(t *testing.T) {
	h := &testHandler{responseBody: `{"uri":"https://metamask.app.link/wc","session":"s1","login":true}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	session, err := c.Connect(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if h.path != "/connect" {
		t.Errorf("path = %q, want /connect", h.path)
	}
	body := requestBody(t, h)
	if body["device_id"] != "dev-1" || len(body) != 1 {
		t.Errorf("request body = %v, want only device_id=dev-1", body)
	}
	if session.ID != "s1" || session.LoginURI != "https://metamask.app.link/wc" || !session.NeedsLogin {
		t.Errorf("session = %+v", session)
	}
}

func TestHTTPClient_Connect_Malformed(t *testing.T) {
	h := &testHandler{responseBody: `<html>bad gateway</html>`}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.Connect(context.Background(), "dev-1")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Connect() error = %v, want ErrMalformedResponse", err)
	}
}

// --- SendTransaction ---

func TestHTTPClient_SendTransaction(t *testing.T) {
	h := &testHandler{responseBody: `{"ticket":"t1"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.SendTransaction(context.Background(), &TransactionRequest{DeviceID: "dev-1", ContractCall: testCall()})
	if err != nil {
		t.Fatalf("SendTransaction() error = %v", err)
	}
	if h.path != "/send/transaction" {
		t.Errorf("path = %q, want /send/transaction", h.path)
	}
	body := requestBody(t, h)
	want := map[string]string{
		"device_id":        "dev-1",
		"contract_address": "0xc0ffee",
		"abi_hash":         "abi-hash-1",
		"method":           "transfer",
		"args":             "0xbeef,100",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("request body %s = %v, want %q", k, body[k], v)
		}
	}
	if len(body) != len(want) {
		t.Errorf("request body has %d fields, want %d: %v", len(body), len(want), body)
	}
	if resp.Ticket != "t1" {
		t.Errorf("ticket = %q, want t1", resp.Ticket)
	}
}

func TestHTTPClient_SendTransaction_EscapesStrings(t *testing.T) {
	h := &testHandler{responseBody: `{"ticket":"t1"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	call := testCall()
	call.Args = `say "hi"`
	if _, err := c.SendTransaction(context.Background(), &TransactionRequest{DeviceID: "dev-1", ContractCall: call}); err != nil {
		t.Fatalf("SendTransaction() error = %v", err)
	}
	if !strings.Contains(h.body, `"args":"say \"hi\""`) {
		t.Errorf("request body = %s, want escaped args", h.body)
	}
}

// --- TicketResult ---

func TestHTTPClient_TicketResult(t *testing.T) {
	h := &testHandler{responseBody: `{"code":5,"status":"mined"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	status, err := c.TicketResult(context.Background(), &TicketRequest{DeviceID: "dev-1", Ticket: "t1"})
	if err != nil {
		t.Fatalf("TicketResult() error = %v", err)
	}
	if h.path != "/result" {
		t.Errorf("path = %q, want /result", h.path)
	}
	body := requestBody(t, h)
	if body["device_id"] != "dev-1" || body["ticket"] != "t1" {
		t.Errorf("request body = %v", body)
	}
	if status.Code != 5 || status.Status != "mined" {
		t.Errorf("status = %+v, want {5 mined}", status)
	}
}

// --- CallMethod ---

func TestHTTPClient_CallMethod_RawPassthrough(t *testing.T) {
	raw := `{"result":["0x01", 42],"extra":{"nested":true}}`
	h := &testHandler{responseBody: raw}
	c, srv := newTestClient(h)
	defer srv.Close()

	got, err := c.CallMethod(context.Background(), &TransactionRequest{DeviceID: "dev-1", ContractCall: testCall()})
	if err != nil {
		t.Fatalf("CallMethod() error = %v", err)
	}
	if h.path != "/call/method" {
		t.Errorf("path = %q, want /call/method", h.path)
	}
	if string(got) != raw {
		t.Errorf("CallMethod() = %s, want raw body %s", got, raw)
	}
}

func TestHTTPClient_CallMethod_NonJSONPassthrough(t *testing.T) {
	h := &testHandler{responseBody: `plain text`}
	c, srv := newTestClient(h)
	defer srv.Close()

	got, err := c.CallMethod(context.Background(), &TransactionRequest{DeviceID: "dev-1", ContractCall: testCall()})
	if err != nil {
		t.Fatalf("CallMethod() error = %v", err)
	}
	if string(got) != "plain text" {
		t.Errorf("CallMethod() = %q, want plain text", got)
	}
}

func TestHTTPClient_CallMethod_ErrorStatusPassthrough(t *testing.T) {
	obs := &recordingObserver{}
	h := &testHandler{statusCode: http.StatusInternalServerError, responseBody: `{"error":"execution reverted"}`}
	c, srv := newTestClient(h, WithObserver(obs))
	defer srv.Close()

	got, err := c.CallMethod(context.Background(), &TransactionRequest{DeviceID: "dev-1", ContractCall: testCall()})
	if err != nil {
		t.Fatalf("CallMethod() error = %v", err)
	}
	if string(got) != `{"error":"execution reverted"}` {
		t.Errorf("CallMethod() = %s, want the error body", got)
	}
	if len(obs.calls) != 1 || obs.calls[0] != "call/method:"+OutcomeAPI {
		t.Errorf("observed %v", obs.calls)
	}
}

func TestHTTPClient_CallMethod_ErrorStatusWithoutBody(t *testing.T) {
	h := &testHandler{statusCode: http.StatusServiceUnavailable}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.CallMethod(context.Background(), &TransactionRequest{DeviceID: "dev-1", ContractCall: testCall()})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("error = %v, want *APIError 503", err)
	}
}

func TestHTTPClient_UploadABI_ErrorStatus(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadRequest, responseBody: `{"error":"bad abi"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.UploadABI(context.Background(), "abi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "bad abi" {
		t.Fatalf("error = %v, want *APIError bad abi", err)
	}
}

// --- UploadABI ---

func TestHTTPClient_UploadABI(t *testing.T) {
	h := &testHandler{responseBody: `{"abi_hash":"h-123"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	hash, err := c.UploadABI(context.Background(), `ab"c`)
	if err != nil {
		t.Fatalf("UploadABI() error = %v", err)
	}
	if h.path != "/call/method" {
		t.Errorf("path = %q, want /call/method", h.path)
	}
	if h.body != `{"abi":"ab\"c"}` {
		t.Errorf("request body = %s, want {\"abi\":\"ab\\\"c\"}", h.body)
	}
	if hash != "h-123" {
		t.Errorf("hash = %q, want h-123", hash)
	}
}

// --- Errors ---

func TestHTTPClient_APIError(t *testing.T) {
	for _, tc := range []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"JSONError", `{"error":"unknown device"}`, "unknown device"},
		{"PlainError", `upstream exploded`, "upstream exploded"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := &testHandler{statusCode: http.StatusBadGateway, responseBody: tc.body}
			c, srv := newTestClient(h)
			defer srv.Close()

			_, err := c.Connect(context.Background(), "dev-1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != tc.wantMessage {
				t.Errorf("APIError = %+v", apiErr)
			}
			if apiErr.Error() != "HTTP 502: "+tc.wantMessage {
				t.Errorf("Error() = %q", apiErr.Error())
			}
		})
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url)
	_, err := c.TicketResult(context.Background(), &TicketRequest{DeviceID: "dev-1", Ticket: "t1"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

func TestHTTPClient_ContextCanceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(srv.URL).Connect(ctx, "dev-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestHTTPClient_Observer(t *testing.T) {
	obs := &recordingObserver{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /connect", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"session":"s1"}`))
	})
	mux.HandleFunc("POST /result", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	mux.HandleFunc("POST /send/transaction", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"no session"}`, http.StatusUnauthorized)
	})
	c, srv := newTestClient(mux, WithObserver(obs))
	defer srv.Close()

	ctx := context.Background()
	_, _ = c.Connect(ctx, "dev-1")
	_, _ = c.TicketResult(ctx, &TicketRequest{DeviceID: "dev-1", Ticket: "t1"})
	_, _ = c.SendTransaction(ctx, &TransactionRequest{DeviceID: "dev-1", ContractCall: testCall()})

	want := []string{"connect:ok", "result:malformed", "send/transaction:api_error"}
	if strings.Join(obs.calls, " ") != strings.Join(want, " ") {
		t.Errorf("observer calls = %v, want %v", obs.calls, want)
	}
}
