package calendar

import (
	"testing"
	"time"

	"frontdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

var rooms = []models.Room{
	{Number: "101", Category: "Deluxe non view", Status: "Available"},
	{Number: "102", Category: "Deluxe non view", Status: "Available"},
}

func res(id, number string, in, out time.Time, status models.ReservationStatus) models.Reservation {
	return models.Reservation{
		ID:        id,
		GroupID:   "G-" + id,
		Room:      models.RoomKey{Number: number, Category: "Deluxe non view"},
		GuestName: "Asha",
		Phone:     "98100",
		Checkin:   in,
		Checkout:  out,
		Nights:    models.NightsBetween(in, out, time.UTC),
		Status:    status,
		Adults:    2,
		Plan:      "CP",
		Rate:      3500,
		Source:    "Walk-in",
	}
}

func TestBuild(t *testing.T) {
	reservations := []models.Reservation{
		res("inside", "101", d(2025, 1, 3), d(2025, 1, 6), models.StatusConfirmed),
		res("before", "102", d(2024, 12, 28), d(2025, 1, 2), models.StatusConfirmed),
		res("after", "101", d(2025, 1, 9), d(2025, 1, 15), models.StatusConfirmed),
		res("pending", "101", d(2025, 1, 1), d(2025, 1, 2), models.StatusPending),
		res("outside", "102", d(2024, 12, 1), d(2025, 1, 1), models.StatusConfirmed),
		res("ghost", "999", d(2025, 1, 1), d(2025, 1, 2), models.StatusConfirmed),
	}

	g := Build(d(2025, 1, 1), 10, rooms, reservations, time.UTC)

	require.Len(t, g.Days, 10)
	assert.Equal(t, "01-Jan-25", g.Days[0])
	assert.Equal(t, "10-Jan-25", g.Days[9])
	require.Len(t, g.Rows, 2)

	row101 := g.Rows[0].Stays
	require.Len(t, row101, 2)
	assert.Equal(t, "inside", row101[0].ReservationID)
	assert.Equal(t, 2, row101[0].StartIndex)
	assert.Equal(t, 4, row101[0].EndIndex)
	assert.Equal(t, "after", row101[1].ReservationID)
	assert.Equal(t, 8, row101[1].StartIndex)
	assert.Equal(t, 9, row101[1].EndIndex)

	row102 := g.Rows[1].Stays
	require.Len(t, row102, 1)
	assert.Equal(t, "before", row102[0].ReservationID)
	assert.Equal(t, 0, row102[0].StartIndex)
	assert.Equal(t, 0, row102[0].EndIndex)
}

func TestBuild_DefaultWindow(t *testing.T) {
	g := Build(d(2025, 2, 1), 0, rooms, nil, time.UTC)
	assert.Len(t, g.Days, DefaultDays)
	assert.Empty(t, g.Rows[0].Stays)
}

func TestNote(t *testing.T) {
	r := res("x", "101", d(2025, 1, 3), d(2025, 1, 6), models.StatusConfirmed)
	assert.Equal(t, "Guest: Asha\nPhone: 98100\nNights: 3\nStatus: Confirmed\nAdults: 2\nChildren: 0\nPlan: CP\nRate: ₹3500\nSource: Walk-in", Note(&r))

	r.Rate = 1999.5
	assert.Contains(t, Note(&r), "Rate: ₹1999.50")
}
