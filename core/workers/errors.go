package workers

import "fmt"

// Error definitions
var (
	ErrTaskRunning    = &WorkerError{Message: "task is already running"}
	ErrManagerStopped = &WorkerError{Message: "task manager is stopped"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
	Task    string
	Cause   interface{}
}

func (e *WorkerError) Error() string {
	if e.Task == "" {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Task, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Task, e.Message)
}
