// Package protocol sends protocol test requests to the agent admin API.
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

var (
	ErrConnectionIDRequired = errors.New("connection id is required")
	ErrConnectionNotActive  = errors.New("connection is not active")
)

// NotActiveError is returned in enforcing mode when the target connection is not active.
type NotActiveError struct {
	ConnectionID string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("connection %s is not active", e.ConnectionID)
}

func (e *NotActiveError) Is(target error) bool {
	return target == ErrConnectionNotActive
}

// ActivityChecker reports whether a connection is active.
// connections.Controller satisfies it.
type ActivityChecker interface {
	IsActive(ctx context.Context, connectionID string) (bool, error)
}

// Poster sends a JSON body to an admin API path. admin.Client satisfies it.
type Poster interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Config controls how the activity check gates a test.
type Config struct {
	// EnforceActive aborts the test when the connection is reported inactive.
	// When false, an inactive connection is logged and the request is sent anyway.
	EnforceActive bool
}

// TestRequest is the body posted to the test-attachmentprotocol endpoint.
type TestRequest struct {
	Example any `json:"example"`
}

// Controller issues protocol tests on existing connections.
// It holds no mutable state and is safe for concurrent use.
type Controller struct {
	api         Poster
	connections ActivityChecker
	cfg         Config
	log         *zap.Logger
}

// NewController wires a protocol controller. A nil logger disables logging.
func NewController(api Poster, connections ActivityChecker, cfg Config, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		api:         api,
		connections: connections,
		cfg:         cfg,
		log:         log.Named("protocol"),
	}
}

// TestPath returns the admin API path of the protocol test for connectionID.
func TestPath(connectionID string) string {
	return "/connections/" + url.PathEscape(connectionID) + "/test-attachmentprotocol"
}

// TestProtocol checks the connection and posts {"example": example} to its
// test-attachmentprotocol endpoint. The admin response is returned unchanged,
// and errors from the connections lookup or the POST are returned unwrapped.
func (c *Controller) TestProtocol(ctx context.Context, connectionID string, example any) (json.RawMessage, error) {
	if connectionID == "" {
		return nil, ErrConnectionIDRequired
	}

	active, err := c.connections.IsActive(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !active {
		if c.cfg.EnforceActive {
			return nil, &NotActiveError{ConnectionID: connectionID}
		}
		c.log.Warn("connection not active, sending protocol test anyway",
			zap.String("connection_id", connectionID))
	}

	return c.api.Post(ctx, TestPath(connectionID), TestRequest{Example: example})
}
