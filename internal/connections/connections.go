// Package connections reads connection records from the agent admin API.
package connections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"ariesctl/internal/admin"
)

// ErrConnectionNotFound is returned when the admin API has no record for a connection id.
var ErrConnectionNotFound = errors.New("connection not found")

// Connection is the subset of the admin API connection record the controller uses.
type Connection struct {
	ConnectionID string `json:"connection_id"`
	State        string `json:"state"`
	RFC23State   string `json:"rfc23_state,omitempty"`
	TheirLabel   string `json:"their_label,omitempty"`
	TheirDID     string `json:"their_did,omitempty"`
	MyDID        string `json:"my_did,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Active reports whether the connection can carry protocol messages.
func (c Connection) Active() bool {
	return isActiveState(c.State) || isActiveState(c.RFC23State)
}

func isActiveState(s string) bool {
	return s == "active" || s == "completed"
}

// Controller queries connection records.
type Controller struct {
	api admin.Requester
}

// NewController creates a connections controller on top of an admin API client.
func NewController(api admin.Requester) *Controller {
	return &Controller{api: api}
}

// GetConnection fetches a single connection record.
func (c *Controller) GetConnection(ctx context.Context, connectionID string) (*Connection, error) {
	raw, err := c.api.Get(ctx, "/connections/"+url.PathEscape(connectionID))
	if err != nil {
		if admin.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrConnectionNotFound, connectionID, err)
		}
		return nil, err
	}

	var conn Connection
	if err := json.Unmarshal(raw, &conn); err != nil {
		return nil, fmt.Errorf("decode connection %s: %w", connectionID, err)
	}
	return &conn, nil
}

// IsActive reports whether the connection exists and is in an active state.
// Lookup failures, including unknown ids, are returned as errors.
func (c *Controller) IsActive(ctx context.Context, connectionID string) (bool, error) {
	conn, err := c.GetConnection(ctx, connectionID)
	if err != nil {
		return false, err
	}
	return conn.Active(), nil
}

// ListConnections returns connection records, optionally filtered by state.
func (c *Controller) ListConnections(ctx context.Context, state string) ([]Connection, error) {
	path := "/connections"
	if state != "" {
		path += "?" + url.Values{"state": {state}}.Encode()
	}

	raw, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var res struct {
		Results []Connection `json:"results"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode connections: %w", err)
	}
	if res.Results == nil {
		res.Results = []Connection{}
	}
	return res.Results, nil
}
