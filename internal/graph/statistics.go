package graph

import "time"

// Statistics summarizes graph contents. Each counter is snapshot-consistent
// per index; the aggregate is not globally transactional, which is
// acceptable for the load-then-query workflow.
type Statistics struct {
	LicenseCount     int              `json:"license_count"`
	ObligationCount  int              `json:"obligation_count"`
	EdgeCount        int              `json:"edge_count"`
	EdgesByKind      map[EdgeKind]int `json:"edges_by_kind"`
	LicensesByCat    map[Category]int `json:"licenses_by_category"`
	FamilyCount      int              `json:"family_count"`
	CompatIndexSize  int              `json:"compatibility_index_size"`
	LastUpdated      time.Time        `json:"last_updated"`
	DeprecatedCount  int              `json:"deprecated_count"`
	OSIApprovedCount int              `json:"osi_approved_count"`
}

// GetStatistics returns summary counters for the graph.
func (s *Store) GetStatistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		LicenseCount:    len(s.licenses),
		ObligationCount: len(s.obligations),
		EdgeCount:       len(s.edges),
		EdgesByKind:     make(map[EdgeKind]int),
		LicensesByCat:   make(map[Category]int),
		FamilyCount:     len(s.familyIndex),
		CompatIndexSize: len(s.compatIndex),
		LastUpdated:     s.lastUpdated,
	}
	for _, e := range s.edges {
		stats.EdgesByKind[e.Kind()]++
	}
	for _, node := range s.licenses {
		stats.LicensesByCat[node.Category]++
		if node.IsDeprecated {
			stats.DeprecatedCount++
		}
		if node.IsOSIApproved {
			stats.OSIApprovedCount++
		}
	}
	return stats
}
