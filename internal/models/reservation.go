package models

import "time"

// ReservationStatus is stored verbatim; comparisons are case-sensitive.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "Confirmed"
	StatusBlocked   ReservationStatus = "Blocked"
	StatusCancelled ReservationStatus = "Cancelled"
	StatusPending   ReservationStatus = "Pending"
)

// Reservation is one room of a booking group.
type Reservation struct {
	GroupID   string            `json:"booking_group_id"`
	ID        string            `json:"reservation_id"`
	Room      RoomKey           `json:"room"`
	GuestName string            `json:"guest_name"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	Checkin   time.Time         `json:"checkin"`
	Checkout  time.Time         `json:"checkout"` // exclusive
	Nights    int               `json:"nights"`
	Status    ReservationStatus `json:"status"`
	Source    string            `json:"source"`
	Adults    int               `json:"adults"`
	Children  int               `json:"children"`
	Plan      string            `json:"plan"`
	Rate      float64           `json:"rate"`
	Notes     string            `json:"notes"`
}

// CountsForOccupancy reports whether the reservation takes a room off sale
// in the availability matrix.
func (r *Reservation) CountsForOccupancy() bool {
	return r.Status == StatusConfirmed
}

// BlocksRoom reports whether the reservation makes its room unbookable.
func (r *Reservation) BlocksRoom() bool {
	return r.Status == StatusConfirmed || r.Status == StatusBlocked
}

// HasDates reports whether both stay dates are set.
func (r *Reservation) HasDates() bool {
	return !r.Checkin.IsZero() && !r.Checkout.IsZero()
}

// Stay returns the stay interval truncated to midnight in loc.
func (r *Reservation) Stay(loc *time.Location) (checkin, checkout time.Time) {
	return Midnight(r.Checkin, loc), Midnight(r.Checkout, loc)
}

// CoversDate reports whether the guest occupies the room on day.
func (r *Reservation) CoversDate(day time.Time, loc *time.Location) bool {
	in, out := r.Stay(loc)
	return Covers(in, out, Midnight(day, loc))
}

// OverlapsRange reports whether the stay intersects [checkin, checkout).
func (r *Reservation) OverlapsRange(checkin, checkout time.Time, loc *time.Location) bool {
	in, out := r.Stay(loc)
	return Overlaps(Midnight(checkin, loc), Midnight(checkout, loc), in, out)
}
