package repository

import (
	"context"

	"ariesctl/internal/model"
)

// TestRunRepository defines data access for protocol test runs using SQL queries only.
type TestRunRepository interface {
	// Create inserts a new test run record and returns the stored row.
	Create(ctx context.Context, run *model.TestRun) (*model.TestRun, error)

	// FindByID returns a test run by its ID.
	FindByID(ctx context.Context, id string) (*model.TestRun, error)

	// List returns a page of test runs, newest first, and the total row count.
	// A non-empty ConnectionID restricts the result to that connection.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.TestRun], error)

	// Delete removes a test run by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit        int
	Offset       int
	ConnectionID string
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
