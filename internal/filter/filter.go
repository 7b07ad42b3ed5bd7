// Package filter applies user-entered search predicates to in-memory
// collections. Filters never mutate the source slice; every predicate is
// AND-combined and a zero-value filter passes everything through unchanged.
package filter

import (
	"strings"

	"jabber-dashboard/internal/booking"
	"jabber-dashboard/internal/upstream"
)

// ClassroomFilter narrows the classroom list. Capacity bounds are
// inclusive; a zero bound is unconstrained.
type ClassroomFilter struct {
	Search      string
	RoomType    string
	Status      string
	MinCapacity int
	MaxCapacity int
	Equipment   string
}

// Classrooms returns the classrooms matching f, preserving order.
func Classrooms(src []upstream.Classroom, f ClassroomFilter) []upstream.Classroom {
	out := make([]upstream.Classroom, 0, len(src))
	for _, c := range src {
		if f.Search != "" && !containsFold(c.RoomNumber, f.Search) && !containsFold(c.Equipment, f.Search) {
			continue
		}
		if f.RoomType != "" && c.RoomType != f.RoomType {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.MinCapacity > 0 && c.Capacity < f.MinCapacity {
			continue
		}
		if f.MaxCapacity > 0 && c.Capacity > f.MaxCapacity {
			continue
		}
		if f.Equipment != "" && !containsFold(c.Equipment, f.Equipment) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// BookingFilter narrows the booking list.
type BookingFilter struct {
	Search string
	Status booking.Status
}

// Bookings returns the bookings matching f, preserving order. The free-text
// search covers room number and purpose.
func Bookings(src []booking.Record, f BookingFilter) []booking.Record {
	out := make([]booking.Record, 0, len(src))
	for _, b := range src {
		if f.Search != "" && !containsFold(b.RoomNumber, f.Search) && !containsFold(b.Purpose, f.Search) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
