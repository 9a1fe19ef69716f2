// Package types provides shared data structures for adapterhub.
//
// This package defines the wire contract spoken with the adapter hub and
// the context value threaded through pipelines.
//
// Core Types:
//   - AdapterRequest: payload for one attempt (adapterId, input, context)
//   - AdapterResponse: adapter outcome, Status is the source of truth
//   - Context: pipeline state with reserved userId/chatId keys
//   - AdapterType, AdapterDefinition: registry declarations
//
// Context values are immutable. Every update returns a new value:
//
//	ctx := types.NewContext("u1", "c1")
//	next := ctx.Merge(map[string]interface{}{"meta": meta})
//	// ctx is unchanged
package types
