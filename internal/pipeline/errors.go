package pipeline

import "fmt"

// Stage names a pipeline
type Stage string

const (
	StageBeforeLLM Stage = "before_llm"
	StageAfterLLM  Stage = "after_llm"
)

// StepError reports the step that stopped a sequential pipeline
type StepError struct {
	Stage     Stage
	Index     int
	AdapterID string
	Message   string
	// Err is set when the call was refused before reaching the adapter
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step %d (%s) failed: %s", e.Stage, e.Index, e.AdapterID, e.Message)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
