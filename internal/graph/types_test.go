package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRiskLevels(t *testing.T) {
	tests := []struct {
		category Category
		risk     int
	}{
		{CategoryPublicDomain, 1},
		{CategoryPermissive, 2},
		{CategoryWeakCopyleft, 3},
		{CategoryStrongCopyleft, 4},
		{CategoryNetworkCopyleft, 5},
		{CategoryProprietary, 5},
		{CategorySourceAvailable, 5},
		{CategoryUnknown, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.risk, tt.category.RiskLevel(), "category %s", tt.category)
	}
}

func TestCategoryIsCopyleft(t *testing.T) {
	assert.True(t, CategoryWeakCopyleft.IsCopyleft())
	assert.True(t, CategoryStrongCopyleft.IsCopyleft())
	assert.True(t, CategoryNetworkCopyleft.IsCopyleft())
	assert.False(t, CategoryPermissive.IsCopyleft())
	assert.False(t, CategoryPublicDomain.IsCopyleft())
	assert.False(t, CategoryProprietary.IsCopyleft())
}

func TestCopyleftPropagationLevels(t *testing.T) {
	levels := []CopyleftStrength{CopyleftNone, CopyleftFile, CopyleftLibrary, CopyleftStrong, CopyleftNetwork}
	for i, strength := range levels {
		assert.Equal(t, i, strength.PropagationLevel(), "strength %s", strength)
	}
}

func TestEffortLevels(t *testing.T) {
	levels := []EffortLevel{EffortTrivial, EffortLow, EffortMedium, EffortHigh, EffortVeryHigh}
	for i, effort := range levels {
		assert.Equal(t, i, effort.Level(), "effort %s", effort)
	}
}

func TestScopeRestrictiveness(t *testing.T) {
	scopes := []ObligationScope{ScopeModifiedFiles, ScopeComponent, ScopeDerivativeWork, ScopeDistributedWork}
	for i, scope := range scopes {
		assert.Equal(t, i+1, scope.Restrictiveness(), "scope %s", scope)
	}
}

func TestCompatibilityOrdinalAndFlag(t *testing.T) {
	levels := []CompatibilityLevel{
		CompatibilityFull, CompatibilityConditional, CompatibilityOneWay,
		CompatibilityIncompatible, CompatibilityUnknown,
	}
	for i, level := range levels {
		assert.Equal(t, i, level.Ordinal(), "level %s", level)
	}

	assert.False(t, CompatibilityIncompatible.IsCompatible())
	for _, level := range []CompatibilityLevel{
		CompatibilityFull, CompatibilityConditional, CompatibilityOneWay, CompatibilityUnknown,
	} {
		assert.True(t, level.IsCompatible(), "level %s", level)
	}
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"mit", "MIT"},
		{"  Apache-2.0 ", "APACHE-2.0"},
		{"GPL 3.0 only", "GPL3.0ONLY"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalID(tt.input))
	}
}

func TestReversedEdge(t *testing.T) {
	edge := &CompatibilityEdge{
		ID: "ab", Source: "A", Target: "B",
		Compatibility: CompatibilityConditional,
		Direction:     DirectionBidirectional,
		Conditions:    []string{"c1"},
		Sources:       []string{"s1"},
	}
	rev := edge.Reversed()
	assert.Equal(t, "ab-reverse", rev.ID)
	assert.Equal(t, "B", rev.Source)
	assert.Equal(t, "A", rev.Target)
	assert.Equal(t, edge.Compatibility, rev.Compatibility)
	assert.Equal(t, edge.Conditions, rev.Conditions)
	assert.Equal(t, edge.Sources, rev.Sources)
}
