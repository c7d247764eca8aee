package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"frontdesk/internal/models"

	sq "github.com/Masterminds/squirrel"
)

// InvoiceNumbers lists every issued invoice number.
func (db *DB) InvoiceNumbers(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT number FROM invoices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// InvoiceByGroup returns the first invoice of a booking group with its
// items, or nil when there is none.
func (db *DB) InvoiceByGroup(ctx context.Context, groupID string) (*models.Invoice, error) {
	query, args, err := builder.Select(
		"id", "group_id", "number", "guest_name", "room_numbers", "invoice_date",
		"subtotal", "tax_amount", "discount", "grand_total", "paid_amount", "balance_due",
		"payment_method", "payment_status", "payment_notes", "created_at",
	).
		From("invoices").
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("rowid").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: InvoiceByGroup: %v", ErrBuildQuery, err)
	}

	var (
		inv  models.Invoice
		date string
	)
	err = db.QueryRowContext(ctx, query, args...).Scan(
		&inv.ID, &inv.GroupID, &inv.Number, &inv.GuestName, &inv.RoomNumbers, &date,
		&inv.Subtotal, &inv.TaxAmount, &inv.Discount, &inv.GrandTotal, &inv.PaidAmount, &inv.BalanceDue,
		&inv.PaymentMethod, &inv.PaymentStatus, &inv.PaymentNotes, &inv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if inv.Date, err = db.parseDate(date); err != nil {
		return nil, fmt.Errorf("invoice %s date: %w", inv.ID, err)
	}

	items, err := db.invoiceItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func (db *DB) invoiceItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	query, args, err := builder.Select(
		"invoice_id", "id", "service", "category", "room", "quantity", "unit_price", "total", "item_date", "status",
	).
		From("invoice_items").
		Where(sq.Eq{"invoice_id": invoiceID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: invoiceItems: %v", ErrBuildQuery, err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var it models.InvoiceItem
		if err := rows.Scan(&it.InvoiceID, &it.ID, &it.Service, &it.Category, &it.Room,
			&it.Quantity, &it.UnitPrice, &it.Total, &it.Date, &it.Status); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// InsertInvoice stores a new invoice and its items.
func (db *DB) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := builder.Insert("invoices").
			Columns(
				"id", "group_id", "number", "guest_name", "room_numbers", "invoice_date",
				"subtotal", "tax_amount", "discount", "grand_total", "paid_amount", "balance_due",
				"payment_method", "payment_status", "payment_notes", "created_at",
			).
			Values(
				inv.ID, inv.GroupID, inv.Number, inv.GuestName, inv.RoomNumbers, db.formatDate(inv.Date),
				inv.Subtotal, inv.TaxAmount, inv.Discount, inv.GrandTotal, inv.PaidAmount, inv.BalanceDue,
				inv.PaymentMethod, inv.PaymentStatus, inv.PaymentNotes, inv.CreatedAt,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: InsertInvoice: %v", ErrBuildQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		return insertItems(ctx, tx, inv.Items)
	})
}

// UpdateInvoice rewrites the header and replaces the items.
func (db *DB) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := builder.Update("invoices").
			SetMap(map[string]any{
				"group_id":       inv.GroupID,
				"number":         inv.Number,
				"guest_name":     inv.GuestName,
				"room_numbers":   inv.RoomNumbers,
				"invoice_date":   db.formatDate(inv.Date),
				"subtotal":       inv.Subtotal,
				"tax_amount":     inv.TaxAmount,
				"discount":       inv.Discount,
				"grand_total":    inv.GrandTotal,
				"paid_amount":    inv.PaidAmount,
				"balance_due":    inv.BalanceDue,
				"payment_method": inv.PaymentMethod,
				"payment_status": inv.PaymentStatus,
				"payment_notes":  inv.PaymentNotes,
				"created_at":     inv.CreatedAt,
			}).
			Where(sq.Eq{"id": inv.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: UpdateInvoice: %v", ErrBuildQuery, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, inv.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, inv.Items)
	})
}

func insertItems(ctx context.Context, tx *sql.Tx, items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	insert := builder.Insert("invoice_items").
		Columns("id", "invoice_id", "position", "service", "category", "room", "quantity", "unit_price", "total", "item_date", "status")
	for i, it := range items {
		insert = insert.Values(it.ID, it.InvoiceID, i+1, it.Service, it.Category, it.Room,
			it.Quantity, it.UnitPrice, it.Total, it.Date, it.EffectiveStatus())
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertItems: %v", ErrBuildQuery, err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
