package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jabber-dashboard/internal/booking"
	"jabber-dashboard/internal/filter"
	"jabber-dashboard/internal/state"
	"jabber-dashboard/internal/upstream"
	"jabber-dashboard/internal/validate"
)

// wireTimeLayout is the timestamp shape the booking API accepts in request
// bodies.
const wireTimeLayout = "2006-01-02T15:04:05"

// ListBookings handles GET /api/bookings. The list is refetched from the
// backend on every call, then the filter set is applied to the working
// copy. A refetch that lost a race against a local mutation is discarded
// and the current copy is served instead.
func (h *Handler) ListBookings(c *gin.Context) {
	begin := h.workspace.Seq()
	wire, err := h.client.UserBookings(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.workspace.ReplaceBookings(begin, booking.FromWireAll(wire, time.Now()))

	f := filter.BookingFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" && status != "all" {
		parsed, ok := booking.ParseStatus(status)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
			return
		}
		f.Status = parsed
	}

	all := h.workspace.Bookings()
	matched := filter.Bookings(all, f)
	c.JSON(http.StatusOK, gin.H{
		"bookings": matched,
		"matched":  len(matched),
		"total":    len(all),
	})
}

// CreateBooking handles POST /api/bookings. Validation failures block the
// upstream call entirely. On success the form round-trip is done; the new
// booking shows up on the next list refresh rather than being spliced into
// the working copy here.
func (h *Handler) CreateBooking(c *gin.Context) {
	var form validate.BookingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	start, end, err := form.Validate()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := upstream.CreateBookingRequest{
		ClassroomID: form.ClassroomID,
		StartTime:   start.Format(wireTimeLayout),
		EndTime:     end.Format(wireTimeLayout),
		Purpose:     form.Purpose,
	}
	if err := h.client.CreateBooking(c.Request.Context(), req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully"})
}

// UpdateBooking handles PUT /api/bookings/:id. After the backend accepts
// the change, the matching record's mutable fields are replaced in place
// and its status re-derived from the new interval.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var form validate.EditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	start, end, err := form.Validate()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.workspace.Booking(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	req := upstream.CreateBookingRequest{
		ClassroomID: rec.ClassroomID,
		StartTime:   start.Format(wireTimeLayout),
		EndTime:     end.Format(wireTimeLayout),
		Purpose:     form.Purpose,
	}
	if err := h.client.UpdateBooking(c.Request.Context(), id, req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.workspace.ApplyEdit(id, state.EditPatch{
		StartTime: start,
		EndTime:   end,
		Purpose:   form.Purpose,
	}, time.Now())

	c.JSON(http.StatusOK, gin.H{"message": "Booking updated successfully"})
}

// DeleteBooking handles DELETE /api/bookings/:id. The record is removed
// from the working copy only after the backend confirms the cancellation.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := h.client.DeleteBooking(c.Request.Context(), id); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.workspace.Remove(id)

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// FinishUsage handles POST /api/bookings/:id/finish. The record is marked
// ended immediately, then a full refetch reconciles the working copy with
// whatever the backend actually recorded. A failed refetch keeps the
// optimistic update; the next list call repeats the reconciliation.
func (h *Handler) FinishUsage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := h.client.FinishUsage(c.Request.Context(), id); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.workspace.MarkEnded(id)

	begin := h.workspace.Seq()
	if wire, err := h.client.UserBookings(c.Request.Context()); err != nil {
		log.Printf("Reconciling refetch after finish-usage failed: %v", err)
	} else {
		h.workspace.ReplaceBookings(begin, booking.FromWireAll(wire, time.Now()))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking marked as ended"})
}
