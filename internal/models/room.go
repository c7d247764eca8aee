package models

import (
	"errors"
	"fmt"
	"strings"
)

// RoomKeyDelimiter joins room number and category in stored room keys.
const RoomKeyDelimiter = " — "

// ErrMalformedRoomKey is returned when stored room text has no category part.
var ErrMalformedRoomKey = errors.New("malformed room key")

// Room is one row of the room inventory.
type Room struct {
	Number   string `json:"room_number"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// Key returns the composite key reservations use to reference the room.
func (r Room) Key() RoomKey {
	return RoomKey{Number: strings.TrimSpace(r.Number), Category: strings.TrimSpace(r.Category)}
}

// IsAvailable reports whether the room can be offered at all.
func (r Room) IsAvailable() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), "available")
}

// RoomKey identifies a room by number and category.
type RoomKey struct {
	Number   string `json:"number"`
	Category string `json:"category"`
}

// ParseRoomKey parses "106 — Deluxe with Mountain view".
// Text without the delimiter is returned as a key holding only the number
// together with ErrMalformedRoomKey, so callers can keep the original value.
func ParseRoomKey(s string) (RoomKey, error) {
	s = strings.TrimSpace(s)
	number, category, found := strings.Cut(s, "—")
	if !found {
		return RoomKey{Number: s}, fmt.Errorf("%w: %q", ErrMalformedRoomKey, s)
	}
	key := RoomKey{Number: strings.TrimSpace(number), Category: strings.TrimSpace(category)}
	if key.Category == "" {
		return key, fmt.Errorf("%w: %q", ErrMalformedRoomKey, s)
	}
	return key, nil
}

// Valid reports whether both parts of the key are present.
func (k RoomKey) Valid() bool {
	return k.Number != "" && k.Category != ""
}

// IsZero reports whether the key is empty.
func (k RoomKey) IsZero() bool {
	return k.Number == "" && k.Category == ""
}

func (k RoomKey) String() string {
	if k.Category == "" {
		return k.Number
	}
	return k.Number + RoomKeyDelimiter + k.Category
}

// ValidateInventory checks that no two rooms share a key.
func ValidateInventory(rooms []Room) error {
	seen := make(map[RoomKey]int, len(rooms))
	for i, r := range rooms {
		key := r.Key()
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("room %q duplicated at rows %d and %d", key.String(), prev+1, i+1)
		}
		seen[key] = i
	}
	return nil
}
