package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLicenseCanonicalizesAndIndexes(t *testing.T) {
	store := NewStore()

	err := store.AddLicense(&LicenseNode{
		ID:       "gpl-3.0-only",
		Name:     "GNU General Public License v3.0 only",
		Category: CategoryStrongCopyleft,
		Family:   "GPL",
		Version:  "3.0",
	})
	require.NoError(t, err)

	node, ok := store.GetLicense("GPL-3.0-ONLY")
	require.True(t, ok)
	assert.Equal(t, "GPL-3.0-ONLY", node.ID)

	// lookups are case-insensitive
	_, ok = store.GetLicense("gPl-3.0-OnLy")
	assert.True(t, ok)

	assert.Contains(t, store.LicensesInFamily("GPL"), "GPL-3.0-ONLY")
	assert.Contains(t, store.LicensesInCategory(CategoryStrongCopyleft), "GPL-3.0-ONLY")
}

func TestAddLicenseReplacePriorUpdatesIndexes(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddLicense(&LicenseNode{
		ID: "MIT", Category: CategoryPermissive, Family: "MIT",
	}))
	require.NoError(t, store.AddLicense(&LicenseNode{
		ID: "MIT", Category: CategoryPublicDomain,
	}))

	node, ok := store.GetLicense("MIT")
	require.True(t, ok)
	assert.Equal(t, CategoryPublicDomain, node.Category)

	assert.Empty(t, store.LicensesInCategory(CategoryPermissive))
	assert.Empty(t, store.LicensesInFamily("MIT"))
	assert.Contains(t, store.LicensesInCategory(CategoryPublicDomain), "MIT")
}

func TestAddLicenseRejectsEmptyID(t *testing.T) {
	store := NewStore()
	assert.Error(t, store.AddLicense(&LicenseNode{}))
	assert.Error(t, store.AddLicense(nil))
}

func TestBidirectionalEdgeStoresReverseEntry(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID:            "mit-bsd",
		Source:        "MIT",
		Target:        "BSD-3-CLAUSE",
		Compatibility: CompatibilityFull,
		Direction:     DirectionBidirectional,
		Conditions:    []string{"keep notices"},
	}))

	forward, ok := store.GetCompatibilityEdge("MIT", "BSD-3-CLAUSE")
	require.True(t, ok)
	assert.Equal(t, "mit-bsd", forward.ID)

	reverse, ok := store.GetCompatibilityEdge("BSD-3-CLAUSE", "MIT")
	require.True(t, ok)
	assert.Equal(t, "mit-bsd-reverse", reverse.ID)
	assert.Equal(t, "BSD-3-CLAUSE", reverse.Source)
	assert.Equal(t, "MIT", reverse.Target)
	assert.Equal(t, forward.Compatibility, reverse.Compatibility)
	assert.Equal(t, forward.Conditions, reverse.Conditions)
}

func TestForwardEdgeHasNoReverseEntry(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID:            "apache-gpl3",
		Source:        "APACHE-2.0",
		Target:        "GPL-3.0-ONLY",
		Compatibility: CompatibilityOneWay,
		Direction:     DirectionForward,
	}))

	_, ok := store.GetCompatibilityEdge("APACHE-2.0", "GPL-3.0-ONLY")
	assert.True(t, ok)
	_, ok = store.GetCompatibilityEdge("GPL-3.0-ONLY", "APACHE-2.0")
	assert.False(t, ok)
}

func TestDuplicateEdgeReplacesPrior(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "first", Source: "A", Target: "B",
		Compatibility: CompatibilityFull, Direction: DirectionForward,
	}))
	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "second", Source: "A", Target: "B",
		Compatibility: CompatibilityIncompatible, Direction: DirectionForward,
	}))

	edge, ok := store.GetCompatibilityEdge("A", "B")
	require.True(t, ok)
	assert.Equal(t, "second", edge.ID)
	assert.Equal(t, CompatibilityIncompatible, edge.Compatibility)

	// adjacency lists hold exactly one edge for the slot
	assert.Len(t, store.OutgoingEdges("A", EdgeKindCompatibility), 1)
	assert.Len(t, store.IncomingEdges("B", EdgeKindCompatibility), 1)
}

func TestReplacingBidirectionalEdgeDropsStaleReverse(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "ab", Source: "A", Target: "B",
		Compatibility: CompatibilityFull, Direction: DirectionBidirectional,
	}))
	_, ok := store.GetCompatibilityEdge("B", "A")
	require.True(t, ok)

	// replacing the slot with a forward edge removes the derived entry
	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "ab2", Source: "A", Target: "B",
		Compatibility: CompatibilityOneWay, Direction: DirectionForward,
	}))
	_, ok = store.GetCompatibilityEdge("B", "A")
	assert.False(t, ok)
}

func TestExplicitReverseEdgeBeatsDerivedEntry(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "ba", Source: "B", Target: "A",
		Compatibility: CompatibilityConditional, Direction: DirectionForward,
	}))
	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "ab", Source: "A", Target: "B",
		Compatibility: CompatibilityFull, Direction: DirectionBidirectional,
	}))

	reverse, ok := store.GetCompatibilityEdge("B", "A")
	require.True(t, ok)
	assert.Equal(t, "ba", reverse.ID, "explicit edge keeps the reverse slot")
}

func TestObligationEdgesAndFiltering(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddObligation(&ObligationNode{
		ID: "attribution", Name: "Attribution",
		Trigger: TriggerOnDistribution, Effort: EffortLow,
	}))
	require.NoError(t, store.AddEdge(&ObligationEdge{
		ID: "mit-attr", Source: "MIT", Target: "attribution", Scope: ScopeComponent,
	}))
	require.NoError(t, store.AddEdge(&AnnotationEdge{
		ID: "mit-commercial", Relation: EdgeKindRight, Source: "MIT", Target: "commercial-use",
	}))

	assert.Len(t, store.OutgoingEdges("MIT"), 2)
	assert.Len(t, store.OutgoingEdges("MIT", EdgeKindObligation), 1)
	assert.Len(t, store.OutgoingEdges("MIT", EdgeKindRight), 1)
	assert.Len(t, store.IncomingEdges("attribution", EdgeKindObligation), 1)
}

func TestCompatibilityNeighborsIncludesReverseEntries(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "ab", Source: "A", Target: "B",
		Compatibility: CompatibilityFull, Direction: DirectionBidirectional,
	}))
	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "cb", Source: "C", Target: "B",
		Compatibility: CompatibilityFull, Direction: DirectionBidirectional,
	}))

	neighbors := store.CompatibilityNeighbors("B")
	require.Len(t, neighbors, 2)
	// ordered by target id
	assert.Equal(t, "A", neighbors[0].Target)
	assert.Equal(t, "C", neighbors[1].Target)
}

func TestClearEmptiesEverything(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddLicense(&LicenseNode{ID: "MIT", Category: CategoryPermissive}))
	require.NoError(t, store.AddObligation(&ObligationNode{ID: "attribution"}))
	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "ab", Source: "MIT", Target: "ISC",
		Compatibility: CompatibilityFull, Direction: DirectionBidirectional,
	}))

	store.Clear()

	stats := store.GetStatistics()
	assert.Zero(t, stats.LicenseCount)
	assert.Zero(t, stats.ObligationCount)
	assert.Zero(t, stats.EdgeCount)
	assert.Zero(t, stats.CompatIndexSize)
	assert.Empty(t, store.LicenseIDs())
}

func TestLastUpdatedRefreshesOnMutation(t *testing.T) {
	store := NewStore()
	before := store.LastUpdated()

	require.NoError(t, store.AddLicense(&LicenseNode{ID: "MIT", Category: CategoryPermissive}))
	assert.False(t, store.LastUpdated().Before(before))
}

func TestGetStatistics(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddLicense(&LicenseNode{ID: "MIT", Category: CategoryPermissive, IsOSIApproved: true}))
	require.NoError(t, store.AddLicense(&LicenseNode{ID: "GPL-3.0-ONLY", Category: CategoryStrongCopyleft, Family: "GPL", IsOSIApproved: true}))
	require.NoError(t, store.AddLicense(&LicenseNode{ID: "OLD-LICENSE", Category: CategoryUnknown, IsDeprecated: true}))
	require.NoError(t, store.AddObligation(&ObligationNode{ID: "attribution"}))
	require.NoError(t, store.AddEdge(&CompatibilityEdge{
		ID: "e1", Source: "MIT", Target: "GPL-3.0-ONLY",
		Compatibility: CompatibilityConditional, Direction: DirectionBidirectional,
	}))

	stats := store.GetStatistics()
	assert.Equal(t, 3, stats.LicenseCount)
	assert.Equal(t, 1, stats.ObligationCount)
	assert.Equal(t, 1, stats.EdgeCount)
	assert.Equal(t, 2, stats.CompatIndexSize) // forward + derived reverse
	assert.Equal(t, 1, stats.LicensesByCat[CategoryPermissive])
	assert.Equal(t, 1, stats.FamilyCount)
	assert.Equal(t, 1, stats.DeprecatedCount)
	assert.Equal(t, 2, stats.OSIApprovedCount)
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("LICENSE-%d", n)
			_ = store.AddLicense(&LicenseNode{ID: id, Category: CategoryPermissive})
			_ = store.AddEdge(&CompatibilityEdge{
				ID: id + "-mit", Source: id, Target: "MIT",
				Compatibility: CompatibilityFull, Direction: DirectionBidirectional,
			})
		}(i)
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.GetLicense(fmt.Sprintf("LICENSE-%d", n))
			store.CompatibilityNeighbors("MIT")
			store.GetStatistics()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, store.GetStatistics().LicenseCount)
}
