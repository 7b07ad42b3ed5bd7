package upstream

// Classroom availability states as reported by the booking API.
const (
	RoomAvailable   = "available"
	RoomBooked      = "booked"
	RoomMaintenance = "maintenance"
)

// Classroom is a bookable room record from the booking API.
type Classroom struct {
	ClassroomID int64  `json:"classroom_id"`
	RoomNumber  string `json:"room_number"`
	RoomType    string `json:"room_type"`
	Capacity    int    `json:"capacity"`
	Equipment   string `json:"equipment"`
	Status      string `json:"status"`
}

// Booking is a reservation record from the booking API. Timestamps arrive as
// strings in whatever layout the backend emits; parsing happens at the
// working-copy boundary so a malformed value degrades per record instead of
// failing the whole response.
type Booking struct {
	BookingID   int64  `json:"booking_id"`
	ClassroomID int64  `json:"classroom_id"`
	RoomNumber  string `json:"room_number"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// User is the authenticated instructor record.
type User struct {
	InstructorID int64  `json:"instructor_id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

// UsageLog is a classroom usage report row.
type UsageLog struct {
	ClassroomID    int64   `json:"classroom_id"`
	Date           string  `json:"date"`
	TotalHoursUsed float64 `json:"total_hours_used"`
}

// CreateBookingRequest is the body for create and update calls.
type CreateBookingRequest struct {
	ClassroomID int64  `json:"classroom_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose"`
}

// SearchQuery narrows a classroom search. Zero values are omitted from the
// request so the backend applies no constraint for them.
type SearchQuery struct {
	RoomType    string
	Status      string
	MinCapacity int
	MaxCapacity int
	Equipment   string
}

// envelope is the common wrapper on every booking API response.
type envelope struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
}

func (e envelope) ok() bool { return e.Status == statusSuccess }

func (e envelope) message() string { return e.Message }

type searchResponse struct {
	envelope
	Classrooms []Classroom `json:"Classrooms"`
}

type detailsResponse struct {
	envelope
	Details []Classroom `json:"Classroom Details"`
}

type bookingsResponse struct {
	envelope
	Bookings []Booking `json:"Bookings"`
}

type userResponse struct {
	envelope
	User User `json:"User"`
}

type usageLogsResponse struct {
	envelope
	Logs []UsageLog `json:"Logs"`
}
