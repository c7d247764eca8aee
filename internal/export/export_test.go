package export

import (
	"bytes"
	"testing"
	"time"

	"frontdesk/internal/availability"
	"frontdesk/internal/calendar"
	"frontdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, w Writer) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))
	require.NoError(t, w.Close())
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestAvailabilityWorkbook(t *testing.T) {
	jan := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	m := &availability.Matrix{
		Segments:   []availability.Segment{{From: jan(1), To: jan(1)}, {From: jan(2), To: jan(4)}},
		Categories: []string{"Deluxe non view", "Standard non view"},
		Counts: map[string][]int{
			"Deluxe non view":   {1, 2},
			"Standard non view": {4, 4},
		},
	}
	ota := availability.Aggregate(m, availability.Mapping{
		Name:    "test",
		Prefix:  "T-",
		Buckets: []availability.Bucket{{Name: "All", Categories: []string{"Deluxe non view", "Standard non view"}}},
	})

	wb, err := Availability(m, []*availability.OTAMatrix{ota})
	require.NoError(t, err)
	f := reopen(t, wb)

	rows, err := f.GetRows(AvailabilitySheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Category", m.Segments[0].Label(), m.Segments[1].Label()}, rows[0])
	assert.Equal(t, []string{"Deluxe non view", "1", "2"}, rows[1])
	assert.Empty(t, rows[3])
	assert.Equal(t, "T-Category", rows[4][0])
	assert.Equal(t, []string{"All", "5", "6"}, rows[5])
}

func TestCalendarWorkbook(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rooms := []models.Room{
		{Number: "101", Category: "Deluxe", Status: "Available"},
		{Number: "102", Category: "Deluxe", Status: "Available"},
	}
	reservations := []models.Reservation{
		{
			ID:        "r1",
			GroupID:   "g1",
			Room:      models.RoomKey{Number: "101", Category: "Deluxe"},
			GuestName: "Asha",
			Checkin:   start.AddDate(0, 0, 1),
			Checkout:  start.AddDate(0, 0, 4),
			Status:    models.StatusConfirmed,
		},
		{
			ID:        "r2",
			GroupID:   "g2",
			Room:      models.RoomKey{Number: "102", Category: "Deluxe"},
			GuestName: "Ravi",
			Checkin:   start,
			Checkout:  start.AddDate(0, 0, 1),
			Status:    models.StatusConfirmed,
		},
	}
	grid := calendar.Build(start, 7, rooms, reservations, time.UTC)

	wb, err := Calendar(grid)
	require.NoError(t, err)
	f := reopen(t, wb)

	rows, err := f.GetRows(CalendarSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Room", "Category", "01-Jan-25"}, rows[0][:3])
	assert.Len(t, rows[0], 9)
	assert.Equal(t, "Asha", rows[1][3])
	assert.Equal(t, "Ravi", rows[2][2])

	merges, err := f.GetMergeCells(CalendarSheet)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "D2", merges[0].GetStartAxis())
	assert.Equal(t, "F2", merges[0].GetEndAxis())

	comments, err := f.GetComments(CalendarSheet)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestFilename(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "calendar_2025-01-01_2025-01-30.xlsx", Filename("calendar", from, from.AddDate(0, 0, 29)))
}

func TestWorkbook_WriteRowWithoutSheet(t *testing.T) {
	wb, err := NewWorkbook()
	require.NoError(t, err)
	defer wb.Close()
	assert.Error(t, wb.WriteRow([]any{"x"}))
}
