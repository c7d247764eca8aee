package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"frontdesk/internal/models"

	sq "github.com/Masterminds/squirrel"
)

// ListRooms returns the inventory in sheet order.
func (db *DB) ListRooms(ctx context.Context) ([]models.Room, error) {
	query, args, err := builder.Select("number", "category", "status").
		From("rooms").
		OrderBy("position", "number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListRooms: %v", ErrBuildQuery, err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.Number, &r.Category, &r.Status); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// ReplaceRooms swaps the whole inventory. Duplicate keys are rejected.
func (db *DB) ReplaceRooms(ctx context.Context, rooms []models.Room) error {
	if err := models.ValidateInventory(rooms); err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := replaceRooms(ctx, tx, rooms); err != nil {
			return err
		}
		return bumpRevision(ctx, tx)
	})
}

func replaceRooms(ctx context.Context, tx *sql.Tx, rooms []models.Room) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return err
	}
	if len(rooms) == 0 {
		return nil
	}
	insert := builder.Insert("rooms").Columns("position", "number", "category", "status")
	for i, r := range rooms {
		key := r.Key()
		insert = insert.Values(i+1, key.Number, key.Category, strings.TrimSpace(r.Status))
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceRooms: %v", ErrBuildQuery, err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// SetRoomStatus changes the status of one room.
func (db *DB) SetRoomStatus(ctx context.Context, key models.RoomKey, status string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := builder.Update("rooms").
			Set("status", status).
			Where(sq.Eq{"number": key.Number, "category": key.Category}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: SetRoomStatus: %v", ErrBuildQuery, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("room %s: %w", key, ErrNotFound)
		}
		return bumpRevision(ctx, tx)
	})
}
