package participant

import "time"

// Participant is a registered attendee. The ID comes from a monotonic counter
// at creation and never changes; Email doubles as the join key for the
// verification flow, so it is unique across participants.
type Participant struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Institution string    `json:"institution"`
	Confirmed   bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}
