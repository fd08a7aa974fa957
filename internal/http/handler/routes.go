package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ariesctl/internal/connections"
	"ariesctl/internal/service"
)

// TestRunIDHeader carries the id of the recorded run on protocol test responses.
const TestRunIDHeader = "X-Test-Run-ID"

// ConnectionReader reads agent connections through the admin API.
type ConnectionReader interface {
	GetConnection(ctx context.Context, connectionID string) (*connections.Connection, error)
	ListConnections(ctx context.Context, state string) ([]connections.Connection, error)
	IsActive(ctx context.Context, connectionID string) (bool, error)
}

// TestProtocolRequest is the body accepted by the protocol test endpoint.
type TestProtocolRequest struct {
	Example json.RawMessage `json:"example" swaggertype:"object"`
}

// ConnectionActivity is returned by the connection activity endpoint.
type ConnectionActivity struct {
	ConnectionID string `json:"connection_id"`
	Active       bool   `json:"active"`
}

// connectionIDParam returns the decoded :id segment. Fiber leaves path params
// escaped; the controllers escape ids themselves when building admin paths.
func connectionIDParam(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("id"))
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, runs service.TestRunService, conns ConnectionReader, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/connections", ListConnections(conns))
	app.Get("/connections/:id", GetConnection(conns))
	app.Post("/connections/:id/test-protocol", TestProtocol(runs))
	app.Get("/connections/:id/active", ConnectionActive(conns))

	app.Get("/test-runs", ListTestRuns(runs))
	app.Get("/test-runs/:id", GetTestRun(runs))
	app.Get("/test-runs/:id/response", GetTestRunResponse(runs))
	app.Delete("/test-runs/:id", DeleteTestRun(runs))
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Checks database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// TestProtocol godoc
// @Summary Send a protocol test to a connection
// @Description Posts {"example": ...} to the agent's test-attachmentprotocol endpoint and returns the agent response unchanged
// @Tags connections
// @Accept json
// @Produce json
// @Param id path string true "Connection ID"
// @Param body body TestProtocolRequest true "Example payload"
// @Success 200 {object} object
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /connections/{id}/test-protocol [post]
func TestProtocol(runs service.TestRunService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req TestProtocolRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be a JSON object")
		}

		id, err := connectionIDParam(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CONNECTION_ID", "invalid connection id")
		}

		res, err := runs.Run(c.UserContext(), id, req.Example)
		if err != nil {
			return writeControllerError(c, err)
		}

		if res.Run != nil {
			c.Set(TestRunIDHeader, res.Run.ID)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(res.Response)
	}
}

// ListConnections godoc
// @Summary List agent connections
// @Tags connections
// @Produce json
// @Param state query string false "Only connections in this state"
// @Success 200 {array} connections.Connection
// @Failure 502 {object} errorPayload
// @Router /connections [get]
func ListConnections(conns ConnectionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := conns.ListConnections(c.UserContext(), c.Query("state"))
		if err != nil {
			return writeControllerError(c, err)
		}
		return c.JSON(fiber.Map{"data": list})
	}
}

// GetConnection godoc
// @Summary Get an agent connection
// @Tags connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} connections.Connection
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /connections/{id} [get]
func GetConnection(conns ConnectionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionIDParam(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CONNECTION_ID", "invalid connection id")
		}
		conn, err := conns.GetConnection(c.UserContext(), id)
		if err != nil {
			return writeControllerError(c, err)
		}
		return c.JSON(conn)
	}
}

// ConnectionActive godoc
// @Summary Check whether a connection is active
// @Tags connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} ConnectionActivity
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /connections/{id}/active [get]
func ConnectionActive(conns ConnectionReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := connectionIDParam(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CONNECTION_ID", "invalid connection id")
		}
		active, err := conns.IsActive(c.UserContext(), id)
		if err != nil {
			return writeControllerError(c, err)
		}
		return c.JSON(ConnectionActivity{ConnectionID: id, Active: active})
	}
}

// ListTestRuns godoc
// @Summary List recorded protocol tests
// @Tags test-runs
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Param connection_id query string false "Only runs for this connection"
// @Success 200 {object} service.TestRunListResult
// @Failure 400 {object} errorPayload
// @Router /test-runs [get]
func ListTestRuns(runs service.TestRunService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := runs.List(c.UserContext(), c.Query("connection_id"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetTestRun godoc
// @Summary Get a recorded protocol test
// @Tags test-runs
// @Produce json
// @Param id path string true "Test run ID"
// @Success 200 {object} model.TestRun
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /test-runs/{id} [get]
func GetTestRun(runs service.TestRunService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		run, err := runs.Get(c.UserContext(), id)
		if err != nil {
			return writeTestRunError(c, err)
		}
		return c.JSON(run)
	}
}

// GetTestRunResponse godoc
// @Summary Download the archived agent response of a test run
// @Tags test-runs
// @Produce json
// @Param id path string true "Test run ID"
// @Success 200 {object} object
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /test-runs/{id}/response [get]
func GetTestRunResponse(runs service.TestRunService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, info, err := runs.Response(c.UserContext(), id)
		if err != nil {
			return writeTestRunError(c, err)
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEApplicationJSON
		}
		c.Set(fiber.HeaderContentType, ct)
		// fasthttp closes rc once the body has been written
		return c.SendStream(rc, int(info.Size))
	}
}

// DeleteTestRun godoc
// @Summary Delete a recorded protocol test and its archived response
// @Tags test-runs
// @Param id path string true "Test run ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /test-runs/{id} [delete]
func DeleteTestRun(runs service.TestRunService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := runs.Delete(c.UserContext(), id); err != nil {
			return writeTestRunError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
