package motoadmin

import (
	"context"
	"net/http"
)

// GetDashboardStats returns the totals shown on the dashboard cards.
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := c.doJSON(ctx, request{
		op:      "GetDashboardStats",
		method:  http.MethodGet,
		path:    "/admin/stats",
		failMsg: msgGetDashboardStats,
	}, nil, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
