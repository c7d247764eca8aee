// Package service composes the store, the availability engine and the
// cache into the read-side operations the API serves.
package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strconv"
	"time"

	"frontdesk/internal/availability"
	"frontdesk/internal/cache"
	"frontdesk/internal/calendar"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"

	"github.com/rs/zerolog"
)

// Snapshot is the read view of the reservation store.
type Snapshot interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	Revision(ctx context.Context) (int64, error)
}

// Result is a category matrix plus one re-aggregation per channel.
type Result struct {
	Matrix *availability.Matrix      `json:"matrix"`
	OTA    []*availability.OTAMatrix `json:"ota"`
}

// AvailabilityService answers availability and calendar queries from a store
// snapshot, caching results per store revision.
type AvailabilityService struct {
	store    Snapshot
	engine   *availability.Engine
	mappings []availability.Mapping
	variant  string
	cache    *cache.Cache
	logger   *zerolog.Logger
}

// NewAvailabilityService builds the service. c may be nil.
func NewAvailabilityService(
	store Snapshot,
	engine *availability.Engine,
	mappings []availability.Mapping,
	c *cache.Cache,
	logger *zerolog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		store:    store,
		engine:   engine,
		mappings: mappings,
		variant:  fingerprint(mappings),
		cache:    c,
		logger:   logger,
	}
}

// fingerprint changes whenever a mapping's buckets change.
func fingerprint(mappings []availability.Mapping) string {
	data, _ := json.Marshal(mappings)
	h := fnv.New64a()
	h.Write(data)
	return strconv.FormatUint(h.Sum64(), 36)
}

// Mappings returns the channel mappings in output order.
func (s *AvailabilityService) Mappings() []availability.Mapping {
	return s.mappings
}

// Availability computes the matrix for [start, end] from a fresh snapshot.
// Results are cached per store revision.
func (s *AvailabilityService) Availability(ctx context.Context, start, end time.Time) (*Result, error) {
	key, cacheable := s.cacheKey(ctx, start, end)
	if cacheable {
		var cached Result
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	rooms, reservations, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.engine.Compute(start, end, rooms, reservations)
	if err != nil {
		return nil, err
	}

	res := &Result{Matrix: m, OTA: make([]*availability.OTAMatrix, 0, len(s.mappings))}
	for _, mapping := range s.mappings {
		ota := availability.Aggregate(m, mapping)
		if len(ota.Unmapped) > 0 {
			s.logger.Debug().Str("mapping", mapping.Name).Strs("categories", ota.Unmapped).Msg("Mapped categories missing from inventory")
			metrics.AddSkipped("unmapped_category", len(ota.Unmapped))
		}
		res.OTA = append(res.OTA, ota)
	}

	if cacheable {
		s.cache.Set(ctx, key, res)
	}
	return res, nil
}

// Calendar lays out confirmed stays for days starting at start.
func (s *AvailabilityService) Calendar(ctx context.Context, start time.Time, days int) (*calendar.Grid, error) {
	rooms, reservations, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.Build(start, days, rooms, reservations, s.engine.Location()), nil
}

func (s *AvailabilityService) load(ctx context.Context) ([]models.Room, []models.Reservation, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, nil, err
	}
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rooms, reservations, nil
}

func (s *AvailabilityService) cacheKey(ctx context.Context, start, end time.Time) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	rev, err := s.store.Revision(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Store revision unavailable, skipping cache")
		return "", false
	}
	loc := s.engine.Location()
	return cache.Key(rev, models.Midnight(start, loc), models.Midnight(end, loc), s.variant), true
}
