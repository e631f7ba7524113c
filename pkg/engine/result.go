// pkg/engine/result.go
package engine

import "time"

// Execution result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExecutionResult is the uniform envelope returned for every module
// invocation. Exactly one of Data/Error is populated depending on Status.
// Results are created fresh per invocation and never persisted.
type ExecutionResult struct {
	Status    string    `json:"status"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SuccessResult builds a success envelope for the named module.
func SuccessResult(module string, data any) ExecutionResult {
	return ExecutionResult{
		Status:    StatusSuccess,
		Module:    module,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ErrorResult builds an error envelope for the named module. Only the
// message crosses the boundary; internal detail stays in the logs.
func ErrorResult(module, msg string) ExecutionResult {
	return ExecutionResult{
		Status:    StatusError,
		Module:    module,
		Timestamp: time.Now().UTC(),
		Error:     msg,
	}
}
