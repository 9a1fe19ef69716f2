// Package testutil provides a fake adapter hub and mocks for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

// Reply is what the fake hub answers with. Body may be a string, sent as
// is, or any value, encoded as JSON.
type Reply struct {
	Status int
	Body   interface{}
	Delay  time.Duration
}

// Responder decides the reply to one attempt; attempt is 1-indexed per adapter
type Responder func(req types.AdapterRequest, attempt int) Reply

// Hub is an in-process adapter hub serving POST /run-adapter and GET /health
type Hub struct {
	Server *httptest.Server

	mu         sync.Mutex
	responders map[string]Responder
	requests   map[string][]types.AdapterRequest
	headers    map[string][]http.Header
	health     func() Reply
	probes     int
}

// NewHub starts a fake hub that echoes the input of every adapter back
// until a Responder is installed. It is closed when the test ends.
func NewHub(t *testing.T) *Hub {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &Hub{
		responders: make(map[string]Responder),
		requests:   make(map[string][]types.AdapterRequest),
		headers:    make(map[string][]http.Header),
		health: func() Reply {
			return Reply{Status: http.StatusOK, Body: map[string]interface{}{"status": "ok"}}
		},
	}

	engine := gin.New()
	engine.POST("/run-adapter", h.runAdapter)
	engine.GET("/health", h.checkHealth)

	h.Server = httptest.NewServer(engine)
	t.Cleanup(h.Server.Close)
	return h
}

// URL returns the base URL of the hub
func (h *Hub) URL() string {
	return h.Server.URL
}

// On installs the responder for one adapter
func (h *Hub) On(adapterID string, r Responder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responders[adapterID] = r
}

// OnHealth installs the health endpoint reply
func (h *Hub) OnHealth(fn func() Reply) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.health = fn
}

// Attempts returns how many requests reached the hub for an adapter
func (h *Hub) Attempts(adapterID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests[adapterID])
}

// Requests returns the decoded requests received for an adapter
func (h *Hub) Requests(adapterID string) []types.AdapterRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]types.AdapterRequest(nil), h.requests[adapterID]...)
}

// Headers returns the request headers received for an adapter
func (h *Hub) Headers(adapterID string) []http.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]http.Header(nil), h.headers[adapterID]...)
}

// HealthProbes returns how many times /health was called
func (h *Hub) HealthProbes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.probes
}

func (h *Hub) runAdapter(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	var req types.AdapterRequest
	if err := sonic.Unmarshal(raw, &req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	h.requests[req.AdapterID] = append(h.requests[req.AdapterID], req)
	h.headers[req.AdapterID] = append(h.headers[req.AdapterID], c.Request.Header.Clone())
	attempt := len(h.requests[req.AdapterID])
	responder, ok := h.responders[req.AdapterID]
	h.mu.Unlock()

	if !ok {
		responder = Echo()
	}
	write(c, responder(req, attempt))
}

func (h *Hub) checkHealth(c *gin.Context) {
	h.mu.Lock()
	h.probes++
	fn := h.health
	h.mu.Unlock()

	write(c, fn())
}

func write(c *gin.Context, r Reply) {
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch body := r.Body.(type) {
	case nil:
		c.Status(status)
	case string:
		c.Data(status, "application/json", []byte(body))
	default:
		data, err := sonic.Marshal(body)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Data(status, "application/json", data)
	}
}

// Echo answers ok with the request input as output
func Echo() Responder {
	return func(req types.AdapterRequest, _ int) Reply {
		output := ""
		if req.Input != nil {
			output = *req.Input
		}
		return Reply{Status: http.StatusOK, Body: types.Success(output, nil)}
	}
}

// Always answers every attempt the same way
func Always(status int, body interface{}) Responder {
	return func(types.AdapterRequest, int) Reply {
		return Reply{Status: status, Body: body}
	}
}

// Sequence answers attempt n with replies[n-1] and repeats the last one
func Sequence(replies ...Reply) Responder {
	return func(_ types.AdapterRequest, attempt int) Reply {
		if attempt > len(replies) {
			return replies[len(replies)-1]
		}
		return replies[attempt-1]
	}
}
