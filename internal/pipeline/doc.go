// Package pipeline composes adapter calls around the LLM call.
//
// Before-LLM pipelines run adapters one after another, feeding each
// adapter's output to the next as input and merging each adapter's data
// into the context. After-LLM pipelines run for their side effects with
// the same context merging but no output chaining. A step that fails
// stops its pipeline. Parallel fan-out runs every adapter at once and
// returns one result per adapter, in order, with no merging.
package pipeline
