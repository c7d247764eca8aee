package models

import "time"

// Item categories and statuses used by the kitchen channel.
const (
	CategoryRestaurant = "Restaurant"

	ItemStatusPending   = "Pending"
	ItemStatusCancelled = "Cancelled"
	ItemStatusDelivered = "Delivered"
)

// Invoice is the billing header of a booking group.
type Invoice struct {
	GroupID       string        `json:"booking_group_id" validate:"required"`
	ID            string        `json:"invoice_id"`
	Number        string        `json:"invoice_number" validate:"required"`
	GuestName     string        `json:"guest_name"`
	RoomNumbers   string        `json:"room_numbers"`
	Date          time.Time     `json:"invoice_date"`
	Subtotal      float64       `json:"subtotal" validate:"gte=0"`
	TaxAmount     float64       `json:"tax_amount" validate:"gte=0"`
	Discount      float64       `json:"discount" validate:"gte=0"`
	GrandTotal    float64       `json:"grand_total"`
	PaidAmount    float64       `json:"paid_amount" validate:"gte=0"`
	BalanceDue    float64       `json:"balance_due"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus string        `json:"payment_status"`
	PaymentNotes  string        `json:"payment_notes"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []InvoiceItem `json:"items" validate:"dive"`
}

// InvoiceItem is a billed service or restaurant order.
type InvoiceItem struct {
	InvoiceID string    `json:"invoice_id"`
	ID        string    `json:"item_id"`
	Service   string    `json:"service" validate:"required"`
	Category  string    `json:"category"`
	Room      string    `json:"room"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
	UnitPrice float64   `json:"unit_price"`
	Total     float64   `json:"total"`
	Date      time.Time `json:"item_date"`
	Status    string    `json:"status"`
}

// EffectiveStatus returns the item status, defaulting to Pending.
func (i InvoiceItem) EffectiveStatus() string {
	if i.Status == "" {
		return ItemStatusPending
	}
	return i.Status
}
