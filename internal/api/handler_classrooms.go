package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jabber-dashboard/internal/filter"
	"jabber-dashboard/internal/upstream"
)

// classroomView is a classroom plus the "book now" affordance the dashboard
// renders for available rooms.
type classroomView struct {
	upstream.Classroom
	BookNow bool `json:"book_now"`
}

// ListClassrooms handles GET /api/classrooms. The list is served from the
// working copy kept fresh by the poller; the filter set from the query
// string is applied on top. When the copy is still empty (first request
// before any poll) the backend is fetched directly.
func (h *Handler) ListClassrooms(c *gin.Context) {
	f, ok := classroomFilterFromQuery(c)
	if !ok {
		return
	}

	rooms := h.workspace.Classrooms()
	if len(rooms) == 0 {
		begin := h.workspace.Seq()
		fetched, err := h.client.SearchClassrooms(c.Request.Context(), upstream.SearchQuery{})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		h.workspace.ReplaceClassrooms(begin, fetched)
		rooms = h.workspace.Classrooms()
	}

	matched := filter.Classrooms(rooms, f)
	views := make([]classroomView, 0, len(matched))
	for _, room := range matched {
		views = append(views, classroomView{
			Classroom: room,
			BookNow:   room.Status == upstream.RoomAvailable,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"classrooms": views,
		"matched":    len(views),
		"total":      len(rooms),
	})
}

// GetClassroom handles GET /api/classrooms/:id by proxying the detail
// lookup to the backend.
func (h *Handler) GetClassroom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid classroom ID"})
		return
	}

	room, err := h.client.ClassroomDetails(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, classroomView{
		Classroom: room,
		BookNow:   room.Status == upstream.RoomAvailable,
	})
}

// GetUsageLogs handles GET /api/classrooms/:id/usage.
func (h *Handler) GetUsageLogs(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid classroom ID"})
		return
	}

	logs, err := h.client.UsageLogs(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// AddUsageLog handles POST /api/usage.
func (h *Handler) AddUsageLog(c *gin.Context) {
	var entry upstream.UsageLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.client.AddUsageLog(c.Request.Context(), entry); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Usage log added"})
}

// classroomFilterFromQuery parses the filter parameters. On a malformed
// capacity bound it writes the error response and reports false.
func classroomFilterFromQuery(c *gin.Context) (filter.ClassroomFilter, bool) {
	f := filter.ClassroomFilter{
		Search:    c.Query("search"),
		Equipment: c.Query("equipment"),
	}
	if rt := c.Query("room_type"); rt != "" && rt != "all" {
		f.RoomType = rt
	}
	if status := c.Query("status"); status != "" && status != "all" {
		f.Status = status
	}

	var err error
	if raw := c.Query("min_capacity"); raw != "" {
		if f.MinCapacity, err = strconv.Atoi(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid min_capacity"})
			return filter.ClassroomFilter{}, false
		}
	}
	if raw := c.Query("max_capacity"); raw != "" {
		if f.MaxCapacity, err = strconv.Atoi(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid max_capacity"})
			return filter.ClassroomFilter{}, false
		}
	}
	return f, true
}
