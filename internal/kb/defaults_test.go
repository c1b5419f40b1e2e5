package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

func TestNewStoreLoadsBuiltins(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	stats := store.GetStatistics()
	assert.GreaterOrEqual(t, stats.LicenseCount, 17)
	assert.GreaterOrEqual(t, stats.ObligationCount, 8)
	assert.NotZero(t, stats.CompatIndexSize)
}

func TestBuiltinCategories(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	tests := []struct {
		id       string
		category graph.Category
		strength graph.CopyleftStrength
		family   string
	}{
		{"MIT", graph.CategoryPermissive, graph.CopyleftNone, ""},
		{"APACHE-2.0", graph.CategoryPermissive, graph.CopyleftNone, "Apache"},
		{"CC0-1.0", graph.CategoryPublicDomain, graph.CopyleftNone, ""},
		{"MPL-2.0", graph.CategoryWeakCopyleft, graph.CopyleftFile, "MPL"},
		{"LGPL-3.0-ONLY", graph.CategoryWeakCopyleft, graph.CopyleftLibrary, "LGPL"},
		{"GPL-3.0-ONLY", graph.CategoryStrongCopyleft, graph.CopyleftStrong, "GPL"},
		{"AGPL-3.0-ONLY", graph.CategoryNetworkCopyleft, graph.CopyleftNetwork, "AGPL"},
		{"BUSL-1.1", graph.CategorySourceAvailable, graph.CopyleftNone, ""},
	}

	for _, tt := range tests {
		node, ok := store.GetLicense(tt.id)
		require.True(t, ok, "license %s missing", tt.id)
		assert.Equal(t, tt.category, node.Category, tt.id)
		assert.Equal(t, tt.strength, node.CopyleftStrength, tt.id)
		assert.Equal(t, tt.family, node.Family, tt.id)
	}
}

func TestBuiltinOrLaterVariants(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	node, ok := store.GetLicense("GPL-2.0-OR-LATER")
	require.True(t, ok)
	assert.True(t, node.OrLater)
	assert.Equal(t, "2.0", node.Version)

	node, ok = store.GetLicense("GPL-2.0-ONLY")
	require.True(t, ok)
	assert.False(t, node.OrLater)
}

func TestBuiltinObligationBindings(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	mitEdges := store.OutgoingEdges("MIT", graph.EdgeKindObligation)
	assert.Len(t, mitEdges, 2)

	agplEdges := store.OutgoingEdges("AGPL-3.0-ONLY", graph.EdgeKindObligation)
	targets := make(map[string]bool)
	for _, edge := range agplEdges {
		targets[edge.To()] = true
	}
	assert.True(t, targets[ObligationNetworkDisclosure])
	assert.True(t, targets[ObligationDiscloseSource])
}

func TestBuiltinCompatibilityEdges(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)

	edge, ok := store.GetCompatibilityEdge("APACHE-2.0", "GPL-3.0-ONLY")
	require.True(t, ok)
	assert.Equal(t, graph.CompatibilityOneWay, edge.Compatibility)
	assert.Equal(t, graph.DirectionForward, edge.Direction)

	// bidirectional incompatibility answers both directions
	_, ok = store.GetCompatibilityEdge("GPL-2.0-ONLY", "APACHE-2.0")
	assert.True(t, ok)
}

func TestRegisterIsIdempotent(t *testing.T) {
	store := graph.NewStore()
	require.NoError(t, Register(store))
	first := store.GetStatistics()

	require.NoError(t, Register(store))
	second := store.GetStatistics()

	assert.Equal(t, first.LicenseCount, second.LicenseCount)
	assert.Equal(t, first.EdgeCount, second.EdgeCount)
	assert.Equal(t, first.CompatIndexSize, second.CompatIndexSize)
}
