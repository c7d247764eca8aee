package database

import (
	"context"
	"database/sql"
	"fmt"

	"frontdesk/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var reservationColumns = []string{
	"id", "group_id", "room_number", "room_category", "guest_name", "phone", "address",
	"checkin", "checkout", "nights", "status", "source", "adults", "children", "plan", "rate", "notes",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanReservation(s rowScanner) (models.Reservation, error) {
	var (
		r                 models.Reservation
		checkin, checkout string
		status            string
	)
	err := s.Scan(&r.ID, &r.GroupID, &r.Room.Number, &r.Room.Category, &r.GuestName, &r.Phone, &r.Address,
		&checkin, &checkout, &r.Nights, &status, &r.Source, &r.Adults, &r.Children, &r.Plan, &r.Rate, &r.Notes)
	if err != nil {
		return r, err
	}
	r.Status = models.ReservationStatus(status)
	if r.Checkin, err = db.parseDate(checkin); err != nil {
		return r, fmt.Errorf("reservation %s checkin: %w", r.ID, err)
	}
	if r.Checkout, err = db.parseDate(checkout); err != nil {
		return r, fmt.Errorf("reservation %s checkout: %w", r.ID, err)
	}
	return r, nil
}

func (db *DB) queryReservations(ctx context.Context, q sq.SelectBuilder) ([]models.Reservation, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: reservations: %v", ErrBuildQuery, err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		r, err := db.scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListReservations returns every reservation in sheet order.
func (db *DB) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	return db.queryReservations(ctx, builder.Select(reservationColumns...).
		From("reservations").
		OrderBy("position", "id"))
}

// ReservationsByGroup returns the rows of one booking group in sheet order.
func (db *DB) ReservationsByGroup(ctx context.Context, groupID string) ([]models.Reservation, error) {
	return db.queryReservations(ctx, builder.Select(reservationColumns...).
		From("reservations").
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("position", "id"))
}

func (db *DB) insertReservations(ctx context.Context, tx *sql.Tx, firstPos int64, rows []models.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	insert := builder.Insert("reservations").Columns(append([]string{"position"}, reservationColumns...)...)
	for i, r := range rows {
		insert = insert.Values(firstPos+int64(i),
			r.ID, r.GroupID, r.Room.Number, r.Room.Category, r.GuestName, r.Phone, r.Address,
			db.formatDate(r.Checkin), db.formatDate(r.Checkout), r.Nights, string(r.Status), r.Source,
			r.Adults, r.Children, r.Plan, r.Rate, r.Notes)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insert reservations: %v", ErrBuildQuery, err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// ReplaceGroup deletes the group's rows and inserts rows where the first
// old row was. A group with no rows is appended at the end.
func (db *DB) ReplaceGroup(ctx context.Context, groupID string, rows []models.Reservation) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var first sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MIN(position) FROM reservations WHERE group_id = ?`, groupID).Scan(&first); err != nil {
			return err
		}

		pos := first.Int64
		if first.Valid {
			if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE group_id = ?`, groupID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE reservations SET position = position + ? WHERE position >= ?`, len(rows), pos); err != nil {
				return err
			}
		} else {
			var last sql.NullInt64
			if err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM reservations`).Scan(&last); err != nil {
				return err
			}
			pos = last.Int64 + 1
		}

		if err := db.insertReservations(ctx, tx, pos, rows); err != nil {
			return err
		}
		return bumpRevision(ctx, tx)
	})
}

// DeleteReservation removes one row.
func (db *DB) DeleteReservation(ctx context.Context, reservationID string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := builder.Delete("reservations").Where(sq.Eq{"id": reservationID}).ToSql()
		if err != nil {
			return fmt.Errorf("%w: DeleteReservation: %v", ErrBuildQuery, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
		}
		return bumpRevision(ctx, tx)
	})
}

// ReplaceReservations swaps every reservation, keeping the given order.
func (db *DB) ReplaceReservations(ctx context.Context, rows []models.Reservation) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := db.replaceReservations(ctx, tx, rows); err != nil {
			return err
		}
		return bumpRevision(ctx, tx)
	})
}

// ReplaceSnapshot swaps rooms and reservations in one transaction. Used when
// importing a sheet, so a failed reservation insert keeps the old inventory.
func (db *DB) ReplaceSnapshot(ctx context.Context, rooms []models.Room, rows []models.Reservation) error {
	if err := models.ValidateInventory(rooms); err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := replaceRooms(ctx, tx, rooms); err != nil {
			return fmt.Errorf("rooms: %w", err)
		}
		if err := db.replaceReservations(ctx, tx, rows); err != nil {
			return fmt.Errorf("reservations: %w", err)
		}
		return bumpRevision(ctx, tx)
	})
}

func (db *DB) replaceReservations(ctx context.Context, tx *sql.Tx, rows []models.Reservation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return err
	}
	// sqlite caps bound parameters per statement
	const chunk = 50
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		if err := db.insertReservations(ctx, tx, int64(start+1), rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
