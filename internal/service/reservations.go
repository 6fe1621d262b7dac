package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/kits"
)

// ReservationEntry is one active kit's standing claim on a part.
type ReservationEntry struct {
	KitID            int64
	KitName          string
	Status           kits.Status
	BuildTarget      int
	RequiredPerUnit  int
	ReservedQuantity int
	UpdatedAt        time.Time
}

// ReservationCalculator answers how much of a part the build targets of
// active kits claim. It caches per part id for its own lifetime and has no
// invalidation, so create one per service call.
type ReservationCalculator struct {
	kits  kits.Repository
	cache map[int64][]ReservationEntry
}

func NewReservationCalculator(repo kits.Repository) *ReservationCalculator {
	return &ReservationCalculator{kits: repo, cache: map[int64][]ReservationEntry{}}
}

// ReservationsForParts returns the reservation entries of every requested
// part; parts no active kit uses map to an empty slice.
func (c *ReservationCalculator) ReservationsForParts(ctx context.Context, partIDs []int64) (map[int64][]ReservationEntry, error) {
	out := make(map[int64][]ReservationEntry, len(partIDs))
	if len(partIDs) == 0 {
		return out, nil
	}

	ids := slices.Clone(partIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var missing []int64
	for _, id := range ids {
		if _, ok := c.cache[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		rows, err := c.kits.ActiveReservations(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("load reservations: %w", err)
		}
		for _, id := range missing {
			c.cache[id] = []ReservationEntry{}
		}
		for _, row := range rows {
			if row.Status != kits.StatusActive {
				continue
			}
			c.cache[row.PartID] = append(c.cache[row.PartID], ReservationEntry{
				KitID:            row.KitID,
				KitName:          row.KitName,
				Status:           row.Status,
				BuildTarget:      row.BuildTarget,
				RequiredPerUnit:  row.RequiredPerUnit,
				ReservedQuantity: row.RequiredPerUnit * row.BuildTarget,
				UpdatedAt:        row.UpdatedAt,
			})
		}
	}

	for _, id := range ids {
		out[id] = c.cache[id]
	}
	return out, nil
}

// ReservedQuantityForPart sums the reservations on a part. A non-zero
// excludeKitID drops that kit's own contribution only.
func (c *ReservationCalculator) ReservedQuantityForPart(ctx context.Context, partID, excludeKitID int64) (int, error) {
	m, err := c.ReservationsForParts(ctx, []int64{partID})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range m[partID] {
		if excludeKitID != 0 && e.KitID == excludeKitID {
			continue
		}
		total += e.ReservedQuantity
	}
	return total, nil
}
