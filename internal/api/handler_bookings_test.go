package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jabber-dashboard/config"
	"jabber-dashboard/internal/booking"
	"jabber-dashboard/internal/state"
	"jabber-dashboard/internal/upstream"
)

// newBookingFixture builds a router backed by a mock booking API and a
// fresh workspace. Tests register their upstream endpoints on mux.
func newBookingFixture(t *testing.T) (*gin.Engine, *state.Workspace, *http.ServeMux) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := upstream.NewClient(&config.UpstreamConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	ws := state.New()
	handler := NewHandler(client, ws, nil, nil)

	r := gin.Default()
	r.GET("/api/bookings", handler.ListBookings)
	r.POST("/api/bookings", handler.CreateBooking)
	r.PUT("/api/bookings/:id", handler.UpdateBooking)
	r.DELETE("/api/bookings/:id", handler.DeleteBooking)
	r.POST("/api/bookings/:id/finish", handler.FinishUsage)
	return r, ws, mux
}

func writeSuccess(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"Status": "Success"}
	for k, v := range extra {
		body[k] = v
	}
	json.NewEncoder(w).Encode(body)
}

func doJSONRequest(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedWorkspace(t *testing.T, ws *state.Workspace, records ...booking.Record) {
	t.Helper()
	require.True(t, ws.ReplaceBookings(ws.Seq(), records))
}

type listResponse struct {
	Bookings []booking.Record `json:"bookings"`
	Matched  int              `json:"matched"`
	Total    int              `json:"total"`
}

func TestListBookingsRefetchesAndFilters(t *testing.T) {
	router, _, mux := newBookingFixture(t)

	now := time.Now().UTC()
	mux.HandleFunc("/bookings/user", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]any{
			"Bookings": []upstream.Booking{
				{
					BookingID:  1,
					RoomNumber: "A101",
					StartTime:  now.Add(-time.Hour).Format(time.RFC3339),
					EndTime:    now.Add(time.Hour).Format(time.RFC3339),
					Purpose:    "Lecture",
				},
				{
					BookingID:  2,
					RoomNumber: "B201",
					StartTime:  now.Add(2 * time.Hour).Format(time.RFC3339),
					EndTime:    now.Add(3 * time.Hour).Format(time.RFC3339),
					Purpose:    "Lab",
				},
			},
		})
	})

	w := doJSONRequest(router, http.MethodGet, "/api/bookings?status=active", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].BookingID)
	assert.Equal(t, booking.StatusActive, resp.Bookings[0].Status)
	assert.Equal(t, 1, resp.Matched)
	assert.Equal(t, 2, resp.Total)
}

func TestListBookingsUnknownStatusFilter(t *testing.T) {
	router, _, mux := newBookingFixture(t)
	mux.HandleFunc("/bookings/user", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]any{"Bookings": []upstream.Booking{}})
	})

	w := doJSONRequest(router, http.MethodGet, "/api/bookings?status=finished", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown status filter")
}

func TestListBookingsUpstreamFailure(t *testing.T) {
	router, _, mux := newBookingFixture(t)
	mux.HandleFunc("/bookings/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	})

	w := doJSONRequest(router, http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCreateBookingValidationBlocksUpstream(t *testing.T) {
	router, _, mux := newBookingFixture(t)

	var upstreamCalls int
	mux.HandleFunc("/create-booking", func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		writeSuccess(w, nil)
	})

	w := doJSONRequest(router, http.MethodPost, "/api/bookings", map[string]any{
		"classroom_id": 3,
		"start_date":   "2025-01-01",
		"start_time":   "11:00",
		"end_date":     "2025-01-01",
		"end_time":     "10:00",
		"purpose":      "Backwards interval",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end time must be after start time")
	assert.Equal(t, 0, upstreamCalls, "an invalid form must never reach the backend")
}

func TestCreateBookingMissingFields(t *testing.T) {
	router, _, mux := newBookingFixture(t)

	var upstreamCalls int
	mux.HandleFunc("/create-booking", func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		writeSuccess(w, nil)
	})

	w := doJSONRequest(router, http.MethodPost, "/api/bookings", map[string]any{
		"classroom_id": 3,
		"start_date":   "2025-01-01",
		"start_time":   "10:00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "please fill in all required fields")
	assert.Equal(t, 0, upstreamCalls)
}

func TestCreateBookingSuccess(t *testing.T) {
	router, ws, mux := newBookingFixture(t)

	var got upstream.CreateBookingRequest
	mux.HandleFunc("/create-booking", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeSuccess(w, nil)
	})

	w := doJSONRequest(router, http.MethodPost, "/api/bookings", map[string]any{
		"classroom_id": 3,
		"start_date":   "2025-01-01",
		"start_time":   "10:00",
		"end_date":     "2025-01-01",
		"end_time":     "11:30",
		"purpose":      "Guest lecture",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, upstream.CreateBookingRequest{
		ClassroomID: 3,
		StartTime:   "2025-01-01T10:00:00",
		EndTime:     "2025-01-01T11:30:00",
		Purpose:     "Guest lecture",
	}, got)

	// Creation does not splice into the working copy; the next list
	// refresh picks the booking up.
	assert.Empty(t, ws.Bookings())
}

func TestUpdateBookingNotFound(t *testing.T) {
	router, _, mux := newBookingFixture(t)

	var upstreamCalls int
	mux.HandleFunc("/booking/", func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		writeSuccess(w, nil)
	})

	w := doJSONRequest(router, http.MethodPut, "/api/bookings/99", map[string]any{
		"start_time": "2025-01-01T10:00",
		"end_time":   "2025-01-01T11:00",
		"purpose":    "Moved",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, upstreamCalls)
}

func TestUpdateBookingAppliesEdit(t *testing.T) {
	router, ws, mux := newBookingFixture(t)
	seedWorkspace(t, ws, booking.Record{
		BookingID:   1,
		ClassroomID: 3,
		RoomNumber:  "B202",
		Status:      booking.StatusUpcoming,
	})

	var got upstream.CreateBookingRequest
	mux.HandleFunc("/booking/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeSuccess(w, nil)
	})

	start := time.Now().UTC().Add(-30 * time.Minute).Truncate(time.Minute)
	end := start.Add(2 * time.Hour)
	w := doJSONRequest(router, http.MethodPut, "/api/bookings/1", map[string]any{
		"start_time": start.Format("2006-01-02T15:04"),
		"end_time":   end.Format("2006-01-02T15:04"),
		"purpose":    "Extended session",
	})

	require.Equal(t, http.StatusOK, w.Code)
	// The classroom comes from the stored record, not the form.
	assert.Equal(t, int64(3), got.ClassroomID)

	rec, found := ws.Booking(1)
	require.True(t, found)
	assert.Equal(t, "Extended session", rec.Purpose)
	assert.Equal(t, booking.StatusActive, rec.Status, "status must follow the new interval")
}

func TestDeleteBookingRemovesRecord(t *testing.T) {
	router, ws, mux := newBookingFixture(t)
	seedWorkspace(t, ws,
		booking.Record{BookingID: 41},
		booking.Record{BookingID: 42},
		booking.Record{BookingID: 43},
	)

	mux.HandleFunc("/booking/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeSuccess(w, nil)
	})

	w := doJSONRequest(router, http.MethodDelete, "/api/bookings/42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	remaining := ws.Bookings()
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(41), remaining[0].BookingID)
	assert.Equal(t, int64(43), remaining[1].BookingID)
}

func TestDeleteBookingUpstreamFailureKeepsRecord(t *testing.T) {
	router, ws, mux := newBookingFixture(t)
	seedWorkspace(t, ws, booking.Record{BookingID: 7})

	mux.HandleFunc("/booking/7", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Status":  "Error",
			"Message": "Booking not found",
		})
	})

	w := doJSONRequest(router, http.MethodDelete, "/api/bookings/7", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Booking not found")

	_, found := ws.Booking(7)
	assert.True(t, found, "a rejected cancellation must not touch the working copy")
}

func TestFinishUsageReconciles(t *testing.T) {
	router, ws, mux := newBookingFixture(t)
	seedWorkspace(t, ws, booking.Record{BookingID: 1, Status: booking.StatusActive})

	mux.HandleFunc("/finish-usage/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeSuccess(w, nil)
	})
	mux.HandleFunc("/bookings/user", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]any{
			"Bookings": []upstream.Booking{
				{BookingID: 1, Status: "ended"},
				{BookingID: 2, Status: "upcoming"},
			},
		})
	})

	w := doJSONRequest(router, http.MethodPost, "/api/bookings/1/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The refetch after the optimistic mark must have been applied.
	all := ws.Bookings()
	require.Len(t, all, 2)
	rec, found := ws.Booking(1)
	require.True(t, found)
	assert.Equal(t, booking.StatusEnded, rec.Status)
}

func TestFinishUsageKeepsOptimisticMarkOnFailedRefetch(t *testing.T) {
	router, ws, mux := newBookingFixture(t)
	seedWorkspace(t, ws, booking.Record{BookingID: 1, Status: booking.StatusActive})

	mux.HandleFunc("/finish-usage/1", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, nil)
	})
	mux.HandleFunc("/bookings/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "flaky", http.StatusBadGateway)
	})

	w := doJSONRequest(router, http.MethodPost, "/api/bookings/1/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	rec, found := ws.Booking(1)
	require.True(t, found)
	assert.Equal(t, booking.StatusEnded, rec.Status)
}
