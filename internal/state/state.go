// Package state holds the gateway's working copy of upstream data. The
// booking backend owns canonical state; this copy exists so the dashboard
// reflects mutations immediately instead of waiting for the next fetch.
package state

import (
	"sync"
	"time"

	"jabber-dashboard/internal/booking"
	"jabber-dashboard/internal/upstream"
)

// Workspace is the in-memory working copy of the classroom list and the
// user's bookings. Every write bumps a sequence number; snapshot
// replacements are applied compare-and-set style against a sequence
// observed before the fetch started, so a slow response that raced a newer
// mutation is discarded rather than applied over it.
type Workspace struct {
	mu         sync.RWMutex
	seq        uint64
	classrooms []upstream.Classroom
	bookings   []booking.Record
}

// New returns an empty workspace.
func New() *Workspace {
	return &Workspace{}
}

// Seq returns the current change sequence. Capture it before fetching a
// snapshot and pass it to the matching Replace call.
func (w *Workspace) Seq() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.seq
}

// Classrooms returns a copy of the classroom list.
func (w *Workspace) Classrooms() []upstream.Classroom {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]upstream.Classroom, len(w.classrooms))
	copy(out, w.classrooms)
	return out
}

// Bookings returns a copy of the booking list.
func (w *Workspace) Bookings() []booking.Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]booking.Record, len(w.bookings))
	copy(out, w.bookings)
	return out
}

// Booking returns the record with the given identifier.
func (w *Workspace) Booking(id int64) (booking.Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, b := range w.bookings {
		if b.BookingID == id {
			return b, true
		}
	}
	return booking.Record{}, false
}

// ReplaceBookings installs a freshly fetched booking snapshot. It reports
// false, leaving the copy untouched, when the workspace changed after begin
// was captured: the snapshot is stale and the next refresh supersedes it.
func (w *Workspace) ReplaceBookings(begin uint64, records []booking.Record) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seq != begin {
		return false
	}
	w.bookings = make([]booking.Record, len(records))
	copy(w.bookings, records)
	w.seq++
	return true
}

// ReplaceClassrooms installs a freshly fetched classroom snapshot under the
// same staleness rule, and reports which rooms transitioned into the
// available state since the previous snapshot. The first snapshot reports
// none; a room that merely appears is not a transition.
func (w *Workspace) ReplaceClassrooms(begin uint64, rooms []upstream.Classroom) (bool, []upstream.Classroom) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seq != begin {
		return false, nil
	}

	var freed []upstream.Classroom
	if w.classrooms != nil {
		previous := make(map[int64]string, len(w.classrooms))
		for _, c := range w.classrooms {
			previous[c.ClassroomID] = c.Status
		}
		for _, c := range rooms {
			old, seen := previous[c.ClassroomID]
			if seen && old != upstream.RoomAvailable && c.Status == upstream.RoomAvailable {
				freed = append(freed, c)
			}
		}
	}

	w.classrooms = make([]upstream.Classroom, len(rooms))
	copy(w.classrooms, rooms)
	w.seq++
	return true, freed
}

// EditPatch carries a booking's mutable fields after a successful update
// call. The explicit status is never part of a patch.
type EditPatch struct {
	StartTime time.Time
	EndTime   time.Time
	Purpose   string
}

// ApplyEdit replaces the record's mutable fields in place and re-derives
// its status from the new interval rather than copying anything from the
// request. Reports false when the booking is not in the copy.
func (w *Workspace) ApplyEdit(id int64, patch EditPatch, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.bookings {
		if w.bookings[i].BookingID != id {
			continue
		}
		w.bookings[i].StartTime = patch.StartTime
		w.bookings[i].EndTime = patch.EndTime
		w.bookings[i].Purpose = patch.Purpose
		w.bookings[i].Status = booking.Resolve("", patch.StartTime, patch.EndTime, now)
		w.seq++
		return true
	}
	return false
}

// Remove drops the record with the given identifier, leaving every other
// record untouched.
func (w *Workspace) Remove(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.bookings {
		if w.bookings[i].BookingID == id {
			w.bookings = append(w.bookings[:i], w.bookings[i+1:]...)
			w.seq++
			return true
		}
	}
	return false
}

// MarkEnded optimistically sets a booking's status to ended after a finish
// call; the caller follows with a full refetch to reconcile.
func (w *Workspace) MarkEnded(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.bookings {
		if w.bookings[i].BookingID == id {
			w.bookings[i].Status = booking.StatusEnded
			w.seq++
			return true
		}
	}
	return false
}
