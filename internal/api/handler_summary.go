package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jabber-dashboard/internal/booking"
	"jabber-dashboard/internal/upstream"
)

// summaryBooking is a booking as shown on the dashboard overview, where an
// ended booking is labelled "completed".
type summaryBooking struct {
	BookingID  int64     `json:"booking_id"`
	RoomNumber string    `json:"room_number"`
	Purpose    string    `json:"purpose"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
}

// GetSummary handles GET /api/summary: the dashboard overview stats plus
// the recent-bookings and available-rooms panels. Bookings are refetched;
// classrooms come from the polled working copy.
func (h *Handler) GetSummary(c *gin.Context) {
	begin := h.workspace.Seq()
	wire, err := h.client.UserBookings(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.workspace.ReplaceBookings(begin, booking.FromWireAll(wire, time.Now()))

	bookings := h.workspace.Bookings()
	recent := make([]summaryBooking, 0, len(bookings))
	active := 0
	for _, b := range bookings {
		if b.Status == booking.StatusActive {
			active++
		}
		recent = append(recent, summaryBooking{
			BookingID:  b.BookingID,
			RoomNumber: b.RoomNumber,
			Purpose:    b.Purpose,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
			Status:     b.Status.DashboardLabel(),
		})
	}

	rooms := h.workspace.Classrooms()
	available := make([]upstream.Classroom, 0, len(rooms))
	for _, room := range rooms {
		if room.Status == upstream.RoomAvailable {
			available = append(available, room)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_bookings":  len(bookings),
		"active_bookings": active,
		"available_rooms": len(available),
		"total_rooms":     len(rooms),
		"recent_bookings": recent,
		"available":       available,
	})
}
