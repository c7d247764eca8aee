package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"frontdesk/internal/config"
	"frontdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), time.UTC, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func res(id, group, room, in, out string) models.Reservation {
	return models.Reservation{
		ID:       id,
		GroupID:  group,
		Room:     models.RoomKey{Number: room, Category: "Deluxe"},
		Checkin:  day(in),
		Checkout: day(out),
		Status:   models.StatusConfirmed,
		Adults:   2,
		Rate:     3500,
	}
}

func ids(rows []models.Reservation) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestRooms(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rooms := []models.Room{
		{Number: "102", Category: "Deluxe", Status: "Available"},
		{Number: " 101 ", Category: "Standard", Status: "Available"},
	}
	require.NoError(t, db.ReplaceRooms(ctx, rooms))

	got, err := db.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "102", got[0].Number)
	assert.Equal(t, "101", got[1].Number)

	require.NoError(t, db.SetRoomStatus(ctx, models.RoomKey{Number: "101", Category: "Standard"}, "Maintenance"))
	got, err = db.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Maintenance", got[1].Status)

	err = db.SetRoomStatus(ctx, models.RoomKey{Number: "999", Category: "Standard"}, "Available")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := append(rooms, models.Room{Number: "102", Category: "Deluxe"})
	assert.Error(t, db.ReplaceRooms(ctx, dup))
}

func TestReplaceGroup_KeepsPosition(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.ReplaceReservations(ctx, []models.Reservation{
		res("a1", "A", "101", "2025-01-01", "2025-01-03"),
		res("b1", "B", "102", "2025-01-02", "2025-01-04"),
		res("b2", "B", "103", "2025-01-02", "2025-01-04"),
		res("c1", "C", "104", "2025-01-05", "2025-01-06"),
	}))

	// Group B grows to three rows without moving.
	require.NoError(t, db.ReplaceGroup(ctx, "B", []models.Reservation{
		res("b3", "B", "102", "2025-01-02", "2025-01-05"),
		res("b4", "B", "103", "2025-01-02", "2025-01-05"),
		res("b5", "B", "105", "2025-01-02", "2025-01-05"),
	}))

	all, err := db.ListReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b3", "b4", "b5", "c1"}, ids(all))

	group, err := db.ReservationsByGroup(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"b3", "b4", "b5"}, ids(group))
	assert.True(t, group[0].Checkout.Equal(day("2025-01-05")))
	assert.Equal(t, models.StatusConfirmed, group[0].Status)
	assert.Equal(t, "Deluxe", group[0].Room.Category)

	// Unknown groups go to the end.
	require.NoError(t, db.ReplaceGroup(ctx, "D", []models.Reservation{res("d1", "D", "106", "2025-01-07", "2025-01-08")}))
	all, err = db.ListReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b3", "b4", "b5", "c1", "d1"}, ids(all))
}

func TestReservations_EmptyDates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := res("x", "X", "101", "2025-01-01", "2025-01-02")
	r.Checkout = time.Time{}
	require.NoError(t, db.ReplaceGroup(ctx, "X", []models.Reservation{r}))

	got, err := db.ReservationsByGroup(ctx, "X")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Checkout.IsZero())
	assert.False(t, got[0].HasDates())
}

func TestRevision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	start, err := db.Revision(ctx)
	require.NoError(t, err)

	require.NoError(t, db.ReplaceRooms(ctx, []models.Room{{Number: "101", Category: "Deluxe"}}))
	require.NoError(t, db.ReplaceGroup(ctx, "A", []models.Reservation{res("a1", "A", "101", "2025-01-01", "2025-01-02")}))
	require.NoError(t, db.DeleteReservation(ctx, "a1"))

	end, err := db.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, start+3, end)

	assert.ErrorIs(t, db.DeleteReservation(ctx, "a1"), ErrNotFound)
	unchanged, err := db.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, end, unchanged)
}

func TestInvoices(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inv, err := db.InvoiceByGroup(ctx, "G1")
	require.NoError(t, err)
	assert.Nil(t, inv)

	created := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	inv = &models.Invoice{
		ID:         "inv-1",
		GroupID:    "G1",
		Number:     "INV-2025-001",
		GuestName:  "Asha",
		Date:       day("2025-03-01"),
		Subtotal:   1000,
		GrandTotal: 1000,
		CreatedAt:  created,
		Items: []models.InvoiceItem{
			{ID: "i1", InvoiceID: "inv-1", Service: "Room", Quantity: 1, Total: 800, Date: created},
			{ID: "i2", InvoiceID: "inv-1", Service: "Thali", Category: models.CategoryRestaurant, Quantity: 2, Total: 200, Date: created},
		},
	}
	require.NoError(t, db.InsertInvoice(ctx, inv))

	got, err := db.InvoiceByGroup(ctx, "G1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "INV-2025-001", got.Number)
	assert.True(t, got.Date.Equal(day("2025-03-01")))
	assert.True(t, got.CreatedAt.Equal(created))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "i1", got.Items[0].ID)
	assert.Equal(t, models.ItemStatusPending, got.Items[1].Status)

	got.PaidAmount = 1000
	got.Items = got.Items[1:]
	got.Items[0].Status = models.ItemStatusDelivered
	require.NoError(t, db.UpdateInvoice(ctx, got))

	again, err := db.InvoiceByGroup(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, again.PaidAmount)
	require.Len(t, again.Items, 1)
	assert.Equal(t, models.ItemStatusDelivered, again.Items[0].Status)

	numbers, err := db.InvoiceNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-2025-001"}, numbers)

	missing := &models.Invoice{ID: "nope", GroupID: "G2", Number: "INV-2025-002"}
	assert.ErrorIs(t, db.UpdateInvoice(ctx, missing), ErrNotFound)
}

func TestReplaceSnapshot_Atomic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	jan := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	oldRooms := []models.Room{{Number: "101", Category: "Deluxe", Status: "Available"}}
	oldRows := []models.Reservation{{ID: "r1", GroupID: "G1", Room: models.RoomKey{Number: "101", Category: "Deluxe"},
		Checkin: jan(1), Checkout: jan(2), Status: models.StatusConfirmed}}
	require.NoError(t, db.ReplaceSnapshot(ctx, oldRooms, oldRows))
	rev, err := db.Revision(ctx)
	require.NoError(t, err)

	newRooms := []models.Room{
		{Number: "201", Category: "Standard", Status: "Available"},
		{Number: "202", Category: "Standard", Status: "Available"},
	}
	dupRows := []models.Reservation{
		{ID: "x", GroupID: "G2", Room: models.RoomKey{Number: "201", Category: "Standard"}},
		{ID: "x", GroupID: "G2", Room: models.RoomKey{Number: "202", Category: "Standard"}},
	}
	assert.Error(t, db.ReplaceSnapshot(ctx, newRooms, dupRows))

	rooms, err := db.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].Number)
	rows, err := db.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0].ID)
	after, err := db.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev, after)

	require.NoError(t, db.ReplaceSnapshot(ctx, newRooms, dupRows[:1]))
	rooms, err = db.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	after, err = db.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev+1, after)
}

func TestBackupService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.ReplaceRooms(ctx, []models.Room{{Number: "101", Category: "Deluxe", Status: "Available"}}))

	dir := filepath.Join(t.TempDir(), "backups")
	logger := zerolog.New(io.Discard)
	svc := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: dir, RetentionDays: 7}, &logger)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }

	path, err := svc.PerformBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frontdesk_20250501_120000.db"), path)

	restored, err := NewDB(path, time.UTC, &logger)
	require.NoError(t, err)
	defer restored.Close()
	rooms, err := restored.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	_, err = svc.PerformBackup(ctx)
	assert.Error(t, err, "same timestamp must not overwrite")

	old := filepath.Join(dir, "frontdesk_20240101_000000.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(old, stale, stale))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "notes.txt"), stale, stale))

	assert.Equal(t, 1, svc.CleanupOldBackups())
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}
