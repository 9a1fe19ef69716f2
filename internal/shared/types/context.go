package types

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
)

// Reserved context keys.
const (
	KeyUserID = "userId"
	KeyChatID = "chatId"
	KeyMeta   = "meta"
)

// Context is the state bag threaded through a pipeline. The user and chat
// identifiers are reserved; every other key is an extension key kept in
// insertion order.
//
// A Context is never modified in place. With, Merge and MergeContext
// return a new value and leave the receiver untouched, so a caller can
// hand the same Context to several pipelines.
type Context struct {
	userID string
	chatID string
	keys   []string
	values map[string]interface{}
}

// NewContext creates a context carrying the reserved identifiers.
func NewContext(userID, chatID string) Context {
	return Context{userID: userID, chatID: chatID}
}

// ContextFromMap builds a context from a decoded JSON object. Extension
// keys are ordered by name since map iteration order is random.
func ContextFromMap(m map[string]interface{}) Context {
	return Context{}.Merge(m)
}

// UserID returns the reserved userId value.
func (c Context) UserID() string {
	return c.userID
}

// ChatID returns the reserved chatId value.
func (c Context) ChatID() string {
	return c.chatID
}

// Get returns an extension value, or a reserved identifier for the
// reserved keys.
func (c Context) Get(key string) (interface{}, bool) {
	switch key {
	case KeyUserID:
		return c.userID, c.userID != ""
	case KeyChatID:
		return c.chatID, c.chatID != ""
	}
	v, ok := c.values[key]
	return v, ok
}

// Meta returns the "meta" extension when it holds a JSON object.
func (c Context) Meta() map[string]interface{} {
	m, _ := c.values[KeyMeta].(map[string]interface{})
	return m
}

// Keys returns extension keys in insertion order.
func (c Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys, reserved ones included when set.
func (c Context) Len() int {
	n := len(c.keys)
	if c.userID != "" {
		n++
	}
	if c.chatID != "" {
		n++
	}
	return n
}

// With returns a copy of c with key set to value.
func (c Context) With(key string, value interface{}) Context {
	next := c.clone(1)
	next.set(key, value)
	return next
}

// Merge returns a copy of c with every entry of values applied. Later
// writers win per key. Reserved keys only accept string values.
func (c Context) Merge(values map[string]interface{}) Context {
	next := c.clone(len(values))
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		next.set(k, values[k])
	}
	return next
}

// MergeContext returns a copy of c overlaid with other.
func (c Context) MergeContext(other Context) Context {
	next := c.clone(len(other.keys))
	if other.userID != "" {
		next.userID = other.userID
	}
	if other.chatID != "" {
		next.chatID = other.chatID
	}
	for _, k := range other.keys {
		next.set(k, other.values[k])
	}
	return next
}

// Map returns the context as a plain map. The map is a copy.
func (c Context) Map() map[string]interface{} {
	out := make(map[string]interface{}, c.Len())
	if c.userID != "" {
		out[KeyUserID] = c.userID
	}
	if c.chatID != "" {
		out[KeyChatID] = c.chatID
	}
	for _, k := range c.keys {
		out[k] = c.values[k]
	}
	return out
}

// MarshalJSON writes reserved keys first, then extensions in order.
func (c Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value interface{}) error {
		k, err := sonic.Marshal(key)
		if err != nil {
			return err
		}
		v, err := sonic.Marshal(value)
		if err != nil {
			return fmt.Errorf("context key %q: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if c.userID != "" {
		if err := write(KeyUserID, c.userID); err != nil {
			return nil, err
		}
	}
	if c.chatID != "" {
		if err := write(KeyChatID, c.chatID); err != nil {
			return nil, err
		}
	}
	for _, k := range c.keys {
		if err := write(k, c.values[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the context.
func (c *Context) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := sonic.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode context: %w", err)
	}
	*c = ContextFromMap(m)
	return nil
}

// clone copies the key order and value map so the receiver is never shared.
func (c Context) clone(extra int) Context {
	next := Context{
		userID: c.userID,
		chatID: c.chatID,
		keys:   make([]string, len(c.keys), len(c.keys)+extra),
		values: make(map[string]interface{}, len(c.values)+extra),
	}
	copy(next.keys, c.keys)
	for k, v := range c.values {
		next.values[k] = v
	}
	return next
}

// set must only be called on a fresh clone.
func (c *Context) set(key string, value interface{}) {
	switch key {
	case KeyUserID:
		if s, ok := value.(string); ok {
			c.userID = s
		}
		return
	case KeyChatID:
		if s, ok := value.(string); ok {
			c.chatID = s
		}
		return
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}
