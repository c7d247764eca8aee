// Package calendar lays confirmed stays out on a per-room day grid.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"frontdesk/internal/models"
)

// DefaultDays is the calendar window length.
const DefaultDays = 30

// HeaderLayout formats day column headers.
const HeaderLayout = "02-Jan-06"

// Stay is one reservation drawn across a row. Indexes are inclusive.
type Stay struct {
	ReservationID string `json:"reservation_id"`
	GroupID       string `json:"booking_group_id"`
	StartIndex    int    `json:"start_index"`
	EndIndex      int    `json:"end_index"`
	Note          string `json:"note"`
}

// Row is one inventory room.
type Row struct {
	Room     string `json:"room"`
	Category string `json:"category"`
	Stays    []Stay `json:"stays"`
}

// Grid is the calendar for [Start, Start+len(Days)).
type Grid struct {
	Start time.Time `json:"start"`
	Days  []string  `json:"days"`
	Rows  []Row     `json:"rows"`
}

// Build places every confirmed reservation on its room row, clamped to the
// window. Reservations for rooms missing from the inventory are ignored.
func Build(windowStart time.Time, days int, rooms []models.Room, reservations []models.Reservation, loc *time.Location) *Grid {
	if days <= 0 {
		days = DefaultDays
	}
	start := models.Midnight(windowStart, loc)
	end := start.AddDate(0, 0, days)

	g := &Grid{Start: start, Days: make([]string, days), Rows: make([]Row, len(rooms))}
	for i := range g.Days {
		g.Days[i] = start.AddDate(0, 0, i).Format(HeaderLayout)
	}

	rowOf := make(map[models.RoomKey]int, len(rooms))
	for i, r := range rooms {
		g.Rows[i] = Row{Room: r.Number, Category: r.Category}
		if _, dup := rowOf[r.Key()]; !dup {
			rowOf[r.Key()] = i
		}
	}

	for i := range reservations {
		res := &reservations[i]
		if res.Status != models.StatusConfirmed || !res.HasDates() {
			continue
		}
		row, ok := rowOf[res.Room]
		if !ok {
			continue
		}

		in, out := res.Stay(loc)
		if !out.After(start) || !in.Before(end) {
			continue
		}
		if in.Before(start) {
			in = start
		}
		if out.After(end) {
			out = end
		}
		first := dayIndex(start, in)
		last := dayIndex(start, out) - 1
		if last < first {
			continue
		}

		g.Rows[row].Stays = append(g.Rows[row].Stays, Stay{
			ReservationID: res.ID,
			GroupID:       res.GroupID,
			StartIndex:    first,
			EndIndex:      last,
			Note:          Note(res),
		})
	}
	return g
}

// dayIndex counts calendar days so DST shifts do not skew the result.
func dayIndex(start, d time.Time) int {
	n := 0
	for t := start; t.Before(d); t = t.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Note renders the hover text shown on a stay.
func Note(r *models.Reservation) string {
	lines := []string{
		"Guest: " + r.GuestName,
		"Phone: " + r.Phone,
		"Nights: " + strconv.Itoa(r.Nights),
		"Status: " + string(r.Status),
		"Adults: " + strconv.Itoa(r.Adults),
		"Children: " + strconv.Itoa(r.Children),
		"Plan: " + r.Plan,
		"Rate: ₹" + formatRate(r.Rate),
		"Source: " + r.Source,
	}
	return strings.Join(lines, "\n")
}

func formatRate(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%.2f", v)
}
