package ecs

import (
	"sort"
)

// ArchetypeStats describes one archetype for storage statistics.
type ArchetypeStats struct {
	ID             uint32
	ComponentTypes []string
	EntityCount    int
}

// StorageStats is a point-in-time summary of storage contents, consumed by the
// debug inspector and the stress report.
type StorageStats struct {
	TotalEntityCount   int
	ArchetypeCount     int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// CollectStats walks all archetypes and singletons and returns a summary.
// The breakdown is sorted by archetype ID and singleton type name so repeated
// collections compare stably.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		ArchetypeCount: len(s.archetypes),
		SingletonCount: len(s.singletons),
	}

	for id, archetype := range s.archetypes {
		count := archetype.Count()
		stats.TotalEntityCount += count

		typeNames := make([]string, 0, len(archetype.types))
		for _, typ := range archetype.types {
			typeNames = append(typeNames, typ.String())
		}

		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:             id,
			ComponentTypes: typeNames,
			EntityCount:    count,
		})
	}
	sort.Slice(stats.ArchetypeBreakdown, func(i, j int) bool {
		return stats.ArchetypeBreakdown[i].ID < stats.ArchetypeBreakdown[j].ID
	})

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
