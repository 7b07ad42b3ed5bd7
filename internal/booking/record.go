package booking

import (
	"time"

	"jabber-dashboard/internal/upstream"
)

// timeLayouts are the timestamp shapes the booking API has been seen to
// emit. Tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTime parses an API timestamp. A value that matches no known layout
// yields the zero time, which the resolver treats as an expired interval.
func ParseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Record is the working-copy form of a booking: wire timestamps parsed and
// the display status resolved.
type Record struct {
	BookingID   int64     `json:"booking_id"`
	ClassroomID int64     `json:"classroom_id"`
	RoomNumber  string    `json:"room_number"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Purpose     string    `json:"purpose"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromWire converts an API booking into a Record, resolving its status as
// of now.
func FromWire(b upstream.Booking, now time.Time) Record {
	start := ParseTime(b.StartTime)
	end := ParseTime(b.EndTime)
	created := ParseTime(b.CreatedAt)
	if created.IsZero() {
		created = now
	}
	return Record{
		BookingID:   b.BookingID,
		ClassroomID: b.ClassroomID,
		RoomNumber:  b.RoomNumber,
		StartTime:   start,
		EndTime:     end,
		Purpose:     b.Purpose,
		Status:      Resolve(b.Status, start, end, now),
		CreatedAt:   created,
	}
}

// FromWireAll converts a full API response in order.
func FromWireAll(bs []upstream.Booking, now time.Time) []Record {
	records := make([]Record, 0, len(bs))
	for _, b := range bs {
		records = append(records, FromWire(b, now))
	}
	return records
}
