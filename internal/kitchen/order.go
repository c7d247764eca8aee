// Package kitchen forwards restaurant items of saved invoices to the
// kitchen chat.
package kitchen

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"frontdesk/internal/models"
)

var roomSuffix = regexp.MustCompile(`(?i) with.*`)

// Order is one kitchen ticket.
type Order struct {
	ID       string    `json:"order_id"`
	Service  string    `json:"service"`
	Quantity int       `json:"quantity"`
	Guest    string    `json:"guest"`
	Room     string    `json:"room"`
	Invoice  string    `json:"invoice"`
	Status   string    `json:"status"`
	PlacedAt time.Time `json:"placed_at"`
}

// Cancelled reports whether the ticket withdraws an order.
func (o Order) Cancelled() bool {
	return o.Status == models.ItemStatusCancelled
}

// NeedsKitchen reports whether an item must be sent to the kitchen:
// restaurant items that are new, pending or cancelled.
func NeedsKitchen(item models.InvoiceItem) bool {
	if item.Category != models.CategoryRestaurant {
		return false
	}
	switch item.Status {
	case "", models.ItemStatusPending, models.ItemStatusCancelled:
		return true
	}
	return false
}

// OrderID derives "KO-" plus the last six digits of the unix milli clock.
func OrderID(now time.Time) string {
	ms := fmt.Sprintf("%06d", now.UnixMilli())
	return "KO-" + ms[len(ms)-6:]
}

// CleanRoomName drops the view description, "204 — Deluxe with Mountain
// view" becomes "204 — Deluxe".
func CleanRoomName(rooms string) string {
	cleaned := strings.TrimSpace(roomSuffix.ReplaceAllString(rooms, ""))
	if cleaned == "" {
		return "N/A"
	}
	return cleaned
}

// OrdersFor builds the tickets for an invoice. Each ticket gets its own ID,
// offset from now by one millisecond per ticket.
func OrdersFor(inv *models.Invoice, now time.Time) []Order {
	var orders []Order
	for _, item := range inv.Items {
		if !NeedsKitchen(item) {
			continue
		}
		orders = append(orders, Order{
			ID:       OrderID(now.Add(time.Duration(len(orders)) * time.Millisecond)),
			Service:  item.Service,
			Quantity: item.Quantity,
			Guest:    inv.GuestName,
			Room:     CleanRoomName(inv.RoomNumbers),
			Invoice:  inv.Number,
			Status:   item.EffectiveStatus(),
			PlacedAt: now,
		})
	}
	return orders
}
