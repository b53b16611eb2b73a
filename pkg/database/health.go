package database

import (
	"context"
	"fmt"
)

// HealthStatus reports database reachability for the health endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health pings the database with the caller's context.
func Health(ctx context.Context, c *Client) (HealthStatus, error) {
	if err := c.db.PingContext(ctx); err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: fmt.Sprintf("ping failed: %v", err),
		}, err
	}
	return HealthStatus{Status: "healthy"}, nil
}
