package zoning

import (
	"context"
	"sync"

	"permitdesk/pkg/platform/sentinel"
)

// Resolver maps a zone id to its classification. Polygon containment happens
// upstream; by the time this service sees a request the zone id is already
// known.
type Resolver interface {
	Resolve(ctx context.Context, zoneID string) (Classification, error)
}

// StaticResolver serves classifications from an in-process table. Zone data
// changes through redeployment, not at runtime.
type StaticResolver struct {
	mu    sync.RWMutex
	zones map[string]Classification
}

// NewStaticResolver builds a resolver over the given zone table.
func NewStaticResolver(zones map[string]Classification) *StaticResolver {
	table := make(map[string]Classification, len(zones))
	for k, v := range zones {
		table[k] = v
	}
	return &StaticResolver{zones: table}
}

// DefaultZoneTable is the seed mapping used when no external zone service is
// wired. Keys are zone ids as supplied by the mapping layer.
func DefaultZoneTable() map[string]Classification {
	return map[string]Classification{
		"zone-r1": {Code: "R1", Name: "Low Density Residential", Category: CategoryResidentialHouse},
		"zone-r2": {Code: "R2", Name: "Medium Density Residential", Category: CategoryResidentialApartment},
		"zone-r3": {Code: "R3", Name: "High Density Residential", Category: CategoryResidentialApartment},
		"zone-c1": {Code: "C1", Name: "Light Commercial", Category: CategoryCommercial},
		"zone-c2": {Code: "C2", Name: "Major Commercial", Category: CategoryCommercial},
		"zone-i1": {Code: "I1", Name: "Light Industrial", Category: CategoryIndustrial},
		"zone-i2": {Code: "I2", Name: "Heavy Industrial", Category: CategoryIndustrial},
	}
}

func (r *StaticResolver) Resolve(_ context.Context, zoneID string) (Classification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.zones[zoneID]
	if !ok {
		return Classification{}, sentinel.ErrNotFound
	}
	return c, nil
}
