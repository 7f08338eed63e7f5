package seed

import (
	"context"
	"fmt"

	"github.com/Simplici0/threedcost/internal/material"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// starterProfiles are offered to a fresh installation.
var starterProfiles = []material.Profile{
	{Name: "PLA", CostPerGram: 0.08, Density: 1.24, EnergyConsumption: 0.03},
	{Name: "PETG", CostPerGram: 0.10, Density: 1.27, EnergyConsumption: 0.035},
	{Name: "ABS", CostPerGram: 0.09, Density: 1.04, EnergyConsumption: 0.045},
}

// Run adds the starter profiles when the profile list is empty. A list the
// user has already touched is left alone, so running it again is a no-op.
func Run(ctx context.Context, profiles *material.Store) (Stats, error) {
	stats := Stats{}
	if len(profiles.Profiles()) > 0 {
		return stats, nil
	}

	for _, p := range starterProfiles {
		if err := ensureProfile(ctx, profiles, p, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func ensureProfile(ctx context.Context, profiles *material.Store, p material.Profile, stats *Stats) error {
	for _, existing := range profiles.Profiles() {
		if existing.Name == p.Name {
			return nil
		}
	}

	if _, err := profiles.Add(ctx, p); err != nil {
		return fmt.Errorf("insert starter profile %q: %w", p.Name, err)
	}
	stats.Inserts++
	return nil
}
