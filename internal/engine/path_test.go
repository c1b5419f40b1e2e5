package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

func pathTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := graph.NewStore()
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, store.AddLicense(&graph.LicenseNode{ID: id, Category: graph.CategoryPermissive}))
	}

	edges := []graph.CompatibilityEdge{
		{ID: "ab", Source: "A", Target: "B", Compatibility: graph.CompatibilityFull, Direction: graph.DirectionForward, Conditions: []string{"keep notices"}},
		{ID: "bc", Source: "B", Target: "C", Compatibility: graph.CompatibilityConditional, Direction: graph.DirectionForward, Conditions: []string{"keep notices", "combined work follows C"}},
		{ID: "cd", Source: "C", Target: "D", Compatibility: graph.CompatibilityOneWay, Direction: graph.DirectionForward},
		{ID: "ae", Source: "A", Target: "E", Compatibility: graph.CompatibilityIncompatible, Direction: graph.DirectionForward},
	}
	for i := range edges {
		require.NoError(t, store.AddEdge(&edges[i]))
	}
	return New(store, nil, Options{})
}

func TestFindCompatibilityPath(t *testing.T) {
	e := pathTestEngine(t)

	path := e.FindCompatibilityPath("A", "C", 3)
	require.NotNil(t, path)
	assert.Equal(t, []string{"A", "B", "C"}, path.Path)
	require.Len(t, path.Steps, 2)

	// k nodes, k-1 edges, every step compatible
	assert.Len(t, path.Steps, len(path.Path)-1)
	for _, step := range path.Steps {
		assert.True(t, step.IsCompatible())
	}

	// minimum step level under the ordinal full < conditional < one-way
	assert.Equal(t, graph.CompatibilityFull, path.OverallCompatibility)

	// conditions are the deduplicated union
	assert.Equal(t, []string{"keep notices", "combined work follows C"}, path.AllConditions)
}

func TestFindCompatibilityPathRespectsMaxDepth(t *testing.T) {
	e := pathTestEngine(t)

	assert.Nil(t, e.FindCompatibilityPath("A", "D", 2))
	require.NotNil(t, e.FindCompatibilityPath("A", "D", 3))
}

func TestFindCompatibilityPathSkipsIncompatibleEdges(t *testing.T) {
	e := pathTestEngine(t)

	// the only edge into E is incompatible, so it is never traversed
	assert.Nil(t, e.FindCompatibilityPath("A", "E", 5))
}

func TestFindCompatibilityPathIdentity(t *testing.T) {
	e := pathTestEngine(t)

	path := e.FindCompatibilityPath("A", "A", 3)
	require.NotNil(t, path)
	assert.Equal(t, []string{"A"}, path.Path)
	assert.Empty(t, path.Steps)
	assert.Equal(t, graph.CompatibilityFull, path.OverallCompatibility)
}

func TestFindCompatibilityPathUnknownEndpoints(t *testing.T) {
	e := pathTestEngine(t)

	assert.Nil(t, e.FindCompatibilityPath("A", "no-such-license", 3))
	assert.Nil(t, e.FindCompatibilityPath("no-such-license", "A", 3))
}

func TestFindCompatibilityPathFollowsReverseEntries(t *testing.T) {
	store := graph.NewStore()
	require.NoError(t, store.AddLicense(&graph.LicenseNode{ID: "X", Category: graph.CategoryPermissive}))
	require.NoError(t, store.AddLicense(&graph.LicenseNode{ID: "Y", Category: graph.CategoryPermissive}))
	require.NoError(t, store.AddEdge(&graph.CompatibilityEdge{
		ID: "xy", Source: "X", Target: "Y",
		Compatibility: graph.CompatibilityFull, Direction: graph.DirectionBidirectional,
	}))
	e := New(store, nil, Options{})

	path := e.FindCompatibilityPath("Y", "X", 3)
	require.NotNil(t, path)
	assert.Equal(t, []string{"Y", "X"}, path.Path)
}

func TestFindCompatibilityPathDefaultDepth(t *testing.T) {
	e := pathTestEngine(t)

	// maxDepth <= 0 falls back to the engine default of 3
	require.NotNil(t, e.FindCompatibilityPath("A", "D", 0))
}
