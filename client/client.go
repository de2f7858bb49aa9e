// README: Minimal REST client for the FreshFold API, used by the tracking
// coordinator and the CLI tracker.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Order is the client-side view of an order; only the fields tracking cares
// about are decoded.
type Order struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	ServiceType    string     `json:"service_type"`
	Price          float64    `json:"price"`
	DriverID       *string    `json:"driver_id"`
	DriverLocation *GeoPoint  `json:"driver_location"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type GeoPoint struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}

// IsTerminal mirrors the server's terminal statuses.
func (o *Order) IsTerminal() bool {
	return o.Status == "completed" || o.Status == "cancelled"
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GetOrder fetches one of the caller's orders.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get order %s: status %d", orderID, resp.StatusCode)
	}
	var body struct {
		Order Order `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &body.Order, nil
}
