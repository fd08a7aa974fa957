package model

import (
	"encoding/json"
	"time"
)

// TestRunStatus is the outcome of a protocol test.
type TestRunStatus string

const (
	TestRunSucceeded TestRunStatus = "succeeded"
	TestRunFailed    TestRunStatus = "failed"
)

// TestRun records one protocol test sent to a connection.
// ResponseKey is the object key of the archived admin response; it is empty for failed runs.
type TestRun struct {
	ID           string          `json:"id"`
	ConnectionID string          `json:"connection_id"`
	Example      json.RawMessage `json:"example"`
	Status       TestRunStatus   `json:"status"`
	Error        string          `json:"error,omitempty"`
	ResponseKey  string          `json:"response_key,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
