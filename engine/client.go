package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cardroom/service"

	log "github.com/sirupsen/logrus"
)

// Client talks to the remote game engine over HTTP. Timeouts are driven by
// the caller's context; the embedded http.Client timeout is only a
// last-resort cap.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new game engine client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type seatPlayerRequest struct {
	TableID    int64 `json:"table_id"`
	SeatNumber int   `json:"seat_number"`
	UserID     int64 `json:"user_id"`
	Stack      int64 `json:"stack"`
}

type unseatPlayerRequest struct {
	TableID int64 `json:"table_id"`
	UserID  int64 `json:"user_id"`
}

type unseatPlayerResponse struct {
	RemainingStack int64 `json:"remaining_stack"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProvisionPlayer seats a player with the given stack in the engine
func (c *Client) ProvisionPlayer(ctx context.Context, req service.ProvisionRequest) error {
	body := seatPlayerRequest{
		TableID:    req.TableID,
		SeatNumber: req.SeatNumber,
		UserID:     req.UserID,
		Stack:      req.Stack,
	}

	log.WithFields(log.Fields{
		"tableId":    req.TableID,
		"seatNumber": req.SeatNumber,
		"userId":     req.UserID,
		"stack":      req.Stack,
	}).Debug("Provisioning player in game engine")

	return c.post(ctx, "/v1/tables/seat-player", body, nil)
}

// RemovePlayer unseats a player and returns their remaining stack
func (c *Client) RemovePlayer(ctx context.Context, tableID, userID int64) (int64, error) {
	body := unseatPlayerRequest{
		TableID: tableID,
		UserID:  userID,
	}

	var resp unseatPlayerResponse
	if err := c.post(ctx, "/v1/tables/unseat-player", body, &resp); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"tableId":        tableID,
		"userId":         userID,
		"remainingStack": resp.RemainingStack,
	}).Debug("Removed player from game engine")

	return resp.RemainingStack, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("engine returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("engine returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode engine response: %w", err)
		}
	}
	return nil
}
