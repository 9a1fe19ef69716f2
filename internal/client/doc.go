// Package client invokes remote adapters through the adapter hub.
//
// One Call is one logical invocation. It is validated against the
// registry, gated by the adapter's circuit breaker, and then retried with
// exponential backoff on network errors, timeouts and 5xx answers. 4xx
// answers are never retried. Apart from validation and circuit-open
// rejections, failures come back as an AdapterResponse with status
// "error" rather than as a Go error.
//
// Usage:
//
//	c, err := client.New(client.Config{BaseURL: "http://hub:8080"}, registry.Default())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	resp, err := c.Call(ctx, "pdf-extractor", types.StringPtr(doc), types.NewContext("u1", "c1"))
//
// A background health monitor can probe GET /health on an interval and
// feeds per-adapter results to the same breakers.
package client
