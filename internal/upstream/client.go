package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jabber-dashboard/config"
)

const statusSuccess = "Success"

// Client is a typed consumer of the classroom booking API. The backend is
// the authority of record; every method is a plain request/response call
// with no retries. Failures surface the backend's Message when it sent one.
type Client struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

// NewClient builds a client from the upstream configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// statusChecker lets doJSON validate the application-level envelope without
// knowing the concrete response type.
type statusChecker interface {
	ok() bool
	message() string
}

// doJSON performs one call against the booking API: non-2xx HTTP statuses,
// undecodable bodies, and envelopes whose Status is not "Success" are all
// returned as errors, leaving the caller's state untouched.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody any, respBody statusChecker) error {
	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return fmt.Errorf("failed to encode request payload: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("booking api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("booking api returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("failed to decode booking api response: %w", err)
	}

	if !respBody.ok() {
		if msg := respBody.message(); msg != "" {
			return fmt.Errorf("booking api: %s", msg)
		}
		return fmt.Errorf("booking api reported failure for %s %s", method, path)
	}

	return nil
}

// SearchClassrooms fetches classrooms matching the query. An empty query
// returns every classroom.
func (c *Client) SearchClassrooms(ctx context.Context, q SearchQuery) ([]Classroom, error) {
	query := url.Values{}
	if q.RoomType != "" {
		query.Set("room_type", q.RoomType)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.MinCapacity > 0 {
		query.Set("min_capacity", strconv.Itoa(q.MinCapacity))
	}
	if q.MaxCapacity > 0 {
		query.Set("max_capacity", strconv.Itoa(q.MaxCapacity))
	}
	if q.Equipment != "" {
		query.Set("equipment", q.Equipment)
	}

	var resp searchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/classroom/search", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Classrooms, nil
}

// ClassroomDetails fetches a single classroom by identifier.
func (c *Client) ClassroomDetails(ctx context.Context, id int64) (Classroom, error) {
	var resp detailsResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/classroom/%d", id), nil, nil, &resp); err != nil {
		return Classroom{}, err
	}
	if len(resp.Details) == 0 {
		return Classroom{}, fmt.Errorf("booking api returned no details for classroom %d", id)
	}
	return resp.Details[0], nil
}

// CreateBooking submits a new reservation.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "/create-booking", nil, req, &resp)
}

// UserBookings fetches the session user's reservations.
func (c *Client) UserBookings(ctx context.Context) ([]Booking, error) {
	var resp bookingsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/bookings/user", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// UpdateBooking replaces a reservation's fields.
func (c *Client) UpdateBooking(ctx context.Context, id int64, req CreateBookingRequest) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/booking/%d", id), nil, req, &resp)
}

// DeleteBooking cancels a reservation.
func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/booking/%d", id), nil, nil, &resp)
}

// FinishUsage ends an active reservation ahead of its scheduled end.
func (c *Client) FinishUsage(ctx context.Context, id int64) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/finish-usage/%d", id), nil, nil, &resp)
}

// CurrentUser fetches the authenticated instructor's details.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var resp userResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/user", nil, nil, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Logout clears the upstream session.
func (c *Client) Logout(ctx context.Context) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodGet, "/auth/logout", nil, nil, &resp)
}

// UsageLogs fetches the recorded usage for a classroom.
func (c *Client) UsageLogs(ctx context.Context, classroomID int64) ([]UsageLog, error) {
	var resp usageLogsResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/usage-log/%d", classroomID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// AddUsageLog records classroom usage for a day.
func (c *Client) AddUsageLog(ctx context.Context, log UsageLog) error {
	var resp envelope
	return c.doJSON(ctx, http.MethodPost, "/usage-log", nil, log, &resp)
}
