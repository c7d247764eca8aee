package availability

import (
	"sort"
	"strings"
	"time"

	"frontdesk/internal/models"
)

// DateLayout is the ISO day key used for occupancy table columns.
const DateLayout = "2006-01-02"

// Inventory is the set of sellable categories and their room counts.
type Inventory struct {
	Categories []string
	Totals     map[string]int
}

// NewInventory derives categories from the room list. Blank categories are
// skipped; the result is sorted so output order does not depend on row order.
func NewInventory(rooms []models.Room) Inventory {
	inv := Inventory{Totals: make(map[string]int)}
	for _, r := range rooms {
		cat := strings.TrimSpace(r.Category)
		if cat == "" {
			continue
		}
		if _, ok := inv.Totals[cat]; !ok {
			inv.Categories = append(inv.Categories, cat)
		}
		inv.Totals[cat]++
	}
	sort.Strings(inv.Categories)
	return inv
}

// Table holds free rooms per category per day. Values are aligned with Days.
type Table struct {
	Days       []time.Time
	Categories []string
	Values     map[string][]int
}

// Key returns the ISO date of day i.
func (t *Table) Key(i int) string {
	return t.Days[i].Format(DateLayout)
}

// Value returns the free count of category on day i.
func (t *Table) Value(category string, i int) int {
	return t.Values[category][i]
}

// SkipReport counts reservations the counter ignored.
type SkipReport struct {
	MalformedRoomKeys int `json:"malformed_room_keys"`
	UnknownCategories int `json:"unknown_categories"`
	MissingDates      int `json:"missing_dates"`
}

// Total returns the number of skipped reservations.
func (s SkipReport) Total() int {
	return s.MalformedRoomKeys + s.UnknownCategories + s.MissingDates
}

// CountOccupancy computes, for every category and day, the category total
// minus the confirmed reservations covering that day. Days must be midnights
// in loc.
func CountOccupancy(days []time.Time, inv Inventory, reservations []models.Reservation, loc *time.Location) (*Table, SkipReport) {
	t := &Table{
		Days:       days,
		Categories: inv.Categories,
		Values:     make(map[string][]int, len(inv.Categories)),
	}
	for _, cat := range inv.Categories {
		row := make([]int, len(days))
		for i := range row {
			row[i] = inv.Totals[cat]
		}
		t.Values[cat] = row
	}

	var skipped SkipReport
	for i := range reservations {
		r := &reservations[i]
		if !r.CountsForOccupancy() {
			continue
		}
		if !r.Room.Valid() {
			skipped.MalformedRoomKeys++
			continue
		}
		row, ok := t.Values[r.Room.Category]
		if !ok {
			skipped.UnknownCategories++
			continue
		}
		if !r.HasDates() {
			skipped.MissingDates++
			continue
		}

		checkin, checkout := r.Stay(loc)
		for d, day := range days {
			if models.Covers(checkin, checkout, day) {
				row[d]--
			}
		}
	}
	return t, skipped
}
