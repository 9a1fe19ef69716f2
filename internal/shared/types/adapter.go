package types

// Status is the outcome reported by an adapter.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// AdapterRequest is the wire payload for one attempt.
type AdapterRequest struct {
	AdapterID string  `json:"adapterId"`
	Input     *string `json:"input"`
	Context   Context `json:"context"`
}

// AdapterResponse is the body returned by POST /run-adapter.
type AdapterResponse struct {
	Status Status      `json:"status"`
	Output *string     `json:"output,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// OK reports whether the adapter succeeded.
func (r AdapterResponse) OK() bool {
	return r.Status == StatusOK
}

// OutputString returns the output and whether one was present.
func (r AdapterResponse) OutputString() (string, bool) {
	if r.Output == nil {
		return "", false
	}
	return *r.Output, true
}

// DataMap returns Data when it is a JSON object.
func (r AdapterResponse) DataMap() (map[string]interface{}, bool) {
	m, ok := r.Data.(map[string]interface{})
	return m, ok
}

// Success creates a successful response
func Success(output string, data interface{}) AdapterResponse {
	return AdapterResponse{Status: StatusOK, Output: StringPtr(output), Data: data}
}

// Failure creates a failed response
func Failure(message string) AdapterResponse {
	return AdapterResponse{Status: StatusError, Error: message}
}

// Normalize enforces the error field invariant: Error is only set when
// Status is error, and an error status always carries a message.
func (r AdapterResponse) Normalize() AdapterResponse {
	switch r.Status {
	case StatusOK:
		r.Error = ""
	case StatusError:
		if r.Error == "" {
			r.Error = "adapter reported an error"
		}
	default:
		return Failure("adapter returned invalid status: " + string(r.Status))
	}
	return r
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
