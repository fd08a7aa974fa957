package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ariesctl/internal/model"
	"ariesctl/internal/protocol"
	"ariesctl/internal/repository"
	"ariesctl/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("test run not found")
	ErrNoResponse = errors.New("test run has no archived response")
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ProtocolTester sends a protocol test to a connection. protocol.Controller satisfies it.
type ProtocolTester interface {
	TestProtocol(ctx context.Context, connectionID string, example any) (json.RawMessage, error)
}

// RunResult is the outcome of a successful protocol test.
// Response is the admin API response exactly as received. Run is nil when the
// test could not be recorded.
type RunResult struct {
	Run      *model.TestRun
	Response json.RawMessage
}

// TestRunListResult is the service-level DTO for paginated test runs.
type TestRunListResult struct {
	Items []model.TestRun `json:"data"`
	Total int             `json:"total"`
}

// TestRunService runs protocol tests and keeps their history.
type TestRunService interface {
	// Run sends example to the connection's protocol test endpoint and records the run.
	// Errors from the controller are returned unchanged; a failed run is still recorded.
	Run(ctx context.Context, connectionID string, example json.RawMessage) (*RunResult, error)

	// List returns recorded runs newest first. An empty connectionID lists all runs.
	List(ctx context.Context, connectionID string, limit, offset int) (*TestRunListResult, error)

	// Get returns a single run by its ID.
	Get(ctx context.Context, id string) (*model.TestRun, error)

	// Response streams the archived admin response of a successful run.
	Response(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// Delete removes the archived response and then the run record.
	Delete(ctx context.Context, id string) error
}

type testRunService struct {
	tester ProtocolTester
	store  storage.Storage
	repo   repository.TestRunRepository
	log    *zap.Logger
	now    func() time.Time
}

// NewTestRunService constructs a new TestRunService.
func NewTestRunService(tester ProtocolTester, store storage.Storage, repo repository.TestRunRepository, log *zap.Logger) TestRunService {
	if log == nil {
		log = zap.NewNop()
	}
	return &testRunService{
		tester: tester,
		store:  store,
		repo:   repo,
		log:    log.Named("test_runs"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *testRunService) Run(ctx context.Context, connectionID string, example json.RawMessage) (*RunResult, error) {
	if connectionID == "" {
		return nil, protocol.ErrConnectionIDRequired
	}

	run := &model.TestRun{
		ID:           uuid.NewString(),
		ConnectionID: connectionID,
		Example:      example,
		CreatedAt:    s.now(),
	}
	log := s.log.With(zap.String("run_id", run.ID), zap.String("connection_id", connectionID))

	res, err := s.tester.TestProtocol(ctx, connectionID, example)
	if err != nil {
		run.Status = model.TestRunFailed
		run.Error = err.Error()
		if _, recErr := s.repo.Create(ctx, run); recErr != nil {
			log.Error("record failed test run", zap.Error(recErr))
		}
		return nil, err
	}

	run.Status = model.TestRunSucceeded
	return &RunResult{Run: s.record(ctx, log, run, res), Response: res}, nil
}

// record archives the response and stores the run. Failures are logged and
// yield a nil run; the admin call already happened and its response is kept.
func (s *testRunService) record(ctx context.Context, log *zap.Logger, run *model.TestRun, res json.RawMessage) *model.TestRun {
	key := storage.ResponseKey(run.ID)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(res), storage.PutObjectOptions{
		Size:        int64(len(res)),
		ContentType: "application/json",
		Metadata:    map[string]string{"connection-id": run.ConnectionID},
	}); err != nil {
		log.Error("archive test response", zap.Error(err))
		return nil
	}
	run.ResponseKey = key

	stored, err := s.repo.Create(ctx, run)
	if err != nil {
		log.Error("record test run", zap.Error(err))
		// Rollback: the archive must not hold responses without a run record.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Error("rollback archived response", zap.String("key", key), zap.Error(delErr))
		}
		return nil
	}
	return stored
}

// List returns paginated runs without exposing repository types.
func (s *testRunService) List(ctx context.Context, connectionID string, limit, offset int) (*TestRunListResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset, ConnectionID: connectionID})
	if err != nil {
		return nil, err
	}
	return &TestRunListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *testRunService) Get(ctx context.Context, id string) (*model.TestRun, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *testRunService) Response(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if run.ResponseKey == "" {
		return nil, storage.ObjectInfo{}, ErrNoResponse
	}

	rc, info, err := s.store.Get(ctx, run.ResponseKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, storage.ObjectInfo{}, ErrNoResponse
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("get archived response: %w", err)
	}
	return rc, info, nil
}

// Delete removes the archived response first; if that fails the row is kept so the key is not lost.
func (s *testRunService) Delete(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.ResponseKey != "" {
		if err := s.store.Delete(ctx, run.ResponseKey); err != nil && !storage.IsNotFound(err) {
			return fmt.Errorf("delete archived response: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}
