package postgres

import (
	"context"
	"database/sql"

	"ariesctl/internal/model"
	"ariesctl/internal/repository"
)

// TestRunPostgres is a PostgreSQL implementation of repository.TestRunRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type TestRunPostgres struct {
	db *sql.DB
}

// NewTestRunPostgres creates a new TestRunPostgres repository.
func NewTestRunPostgres(db *sql.DB) *TestRunPostgres {
	return &TestRunPostgres{db: db}
}

var _ repository.TestRunRepository = (*TestRunPostgres)(nil)

const testRunColumns = `id, connection_id, example, status, error, response_key, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTestRun(row rowScanner) (*model.TestRun, error) {
	var (
		run     model.TestRun
		example []byte
		status  string
	)
	if err := row.Scan(
		&run.ID,
		&run.ConnectionID,
		&example,
		&status,
		&run.Error,
		&run.ResponseKey,
		&run.CreatedAt,
	); err != nil {
		return nil, err
	}
	run.Example = append([]byte(nil), example...)
	run.Status = model.TestRunStatus(status)
	return &run, nil
}

// Create inserts a new test run row and returns the stored record.
func (r *TestRunPostgres) Create(ctx context.Context, run *model.TestRun) (*model.TestRun, error) {
	const q = `
		INSERT INTO protocol_test_runs (id, connection_id, example, status, error, response_key, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)
		RETURNING ` + testRunColumns

	example := string(run.Example)
	if example == "" {
		example = "null"
	}
	row := r.db.QueryRowContext(ctx, q,
		run.ID,
		run.ConnectionID,
		example,
		string(run.Status),
		run.Error,
		run.ResponseKey,
		run.CreatedAt,
	)
	return scanTestRun(row)
}

// FindByID fetches a single test run by its ID.
func (r *TestRunPostgres) FindByID(ctx context.Context, id string) (*model.TestRun, error) {
	const q = `
		SELECT ` + testRunColumns + `
		FROM protocol_test_runs
		WHERE id = $1
	`
	return scanTestRun(r.db.QueryRowContext(ctx, q, id))
}

// List returns test runs using LIMIT/OFFSET pagination and a total count.
func (r *TestRunPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.TestRun], error) {
	const qCount = `SELECT COUNT(*) FROM protocol_test_runs WHERE ($1 = '' OR connection_id = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, pq.ConnectionID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + testRunColumns + `
		FROM protocol_test_runs
		WHERE ($1 = '' OR connection_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.ConnectionID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TestRun, 0)
	for rows.Next() {
		run, err := scanTestRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.TestRun]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a test run by ID. It does not return an error if the row does not exist.
func (r *TestRunPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM protocol_test_runs WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
