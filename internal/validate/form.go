// Package validate enforces the client-side rules a booking form must pass
// before the gateway calls the booking API: required fields and
// chronological ordering. Overlap and capacity rules stay with the backend.
package validate

import (
	"errors"
	"time"

	val "github.com/go-playground/validator/v10"
)

var validate = val.New()

// Errors surfaced to the user verbatim.
var (
	ErrMissingFields    = errors.New("please fill in all required fields")
	ErrInvalidDateTime  = errors.New("invalid date or time")
	ErrEndNotAfterStart = errors.New("end time must be after start time")
)

// BookingForm is the creation form: a classroom, split start and end
// date/time inputs, and a purpose. Every field is required.
type BookingForm struct {
	ClassroomID int64  `json:"classroom_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Purpose     string `json:"purpose" validate:"required"`
}

// Validate checks the form and returns the combined start and end
// timestamps. The end must be strictly later than the start.
func (f BookingForm) Validate() (start, end time.Time, err error) {
	if err := validate.Struct(f); err != nil {
		return time.Time{}, time.Time{}, ErrMissingFields
	}

	start, err = combine(f.StartDate, f.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = combine(f.EndDate, f.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrEndNotAfterStart
	}
	return start, end, nil
}

// EditForm updates an existing booking's interval and purpose.
type EditForm struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Purpose   string `json:"purpose" validate:"required"`
}

// Validate checks the form and returns the parsed interval under the same
// chronological rule as creation.
func (f EditForm) Validate() (start, end time.Time, err error) {
	if err := validate.Struct(f); err != nil {
		return time.Time{}, time.Time{}, ErrMissingFields
	}

	start, err = parseLocal(f.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = parseLocal(f.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrEndNotAfterStart
	}
	return start, end, nil
}

// combine joins a date input ("2006-01-02") and a time input ("15:04").
func combine(date, clock string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04", date+"T"+clock)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return t, nil
}

// parseLocal parses a datetime-local input, with or without seconds.
func parseLocal(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}
