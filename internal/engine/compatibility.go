package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

// Inference rule tags. The cascade tries rules in a fixed order; the tag of
// the first matching rule is part of the observable contract.
const (
	RuleMissingLicense         = "missing-license"
	RulePermissivePair         = "permissive-permissive"
	RulePublicDomain           = "public-domain"
	RulePermissiveCopyleft     = "permissive-copyleft"
	RuleStrongCopyleftConflict = "strong-copyleft-cross-family"
	RuleGPLVersionConflict     = "gpl-version-conflict"
	RuleSameFamilyOrLater      = "same-family-or-later"
	RuleSameFamilySameVersion  = "same-family-same-version"
	RuleSameFamilyUnresolved   = "same-family-unresolved"
	RuleWeakStrongCopyleft     = "weak-strong-copyleft"
	RuleNetworkCopyleft        = "network-copyleft"
	RuleUnresolved             = "unresolved"
)

// CompatibilityResult is the outcome of one pairwise compatibility query.
type CompatibilityResult struct {
	License1        string                   `json:"license1"`
	License2        string                   `json:"license2"`
	Compatible      bool                     `json:"compatible"`
	Level           graph.CompatibilityLevel `json:"level"`
	Reason          string                   `json:"reason"`
	Conditions      []string                 `json:"conditions,omitempty"`
	Notes           []string                 `json:"notes,omitempty"`
	Suggestions     []string                 `json:"suggestions,omitempty"`
	Sources         []string                 `json:"sources,omitempty"`
	DominantLicense string                   `json:"dominant_license,omitempty"`
	InferredRule    string                   `json:"inferred_rule,omitempty"`
	RequiresReview  bool                     `json:"requires_review"`
	Path            []string                 `json:"path,omitempty"`
}

// CheckCompatibility decides whether two licenses can coexist in one
// combined work. The decision cascade is: identity, then a direct edge in
// the compatibility index, then property-based inference. useCase is
// recorded on the result when provided.
func (e *Engine) CheckCompatibility(licenseA, licenseB, useCase string) *CompatibilityResult {
	a := e.Canonicalize(licenseA)
	b := e.Canonicalize(licenseB)

	key := a.ID + "|" + b.ID + "|" + useCase
	if cached, ok := e.cachedResult(key); ok {
		return cached
	}

	result := e.decide(a, b)
	if useCase != "" {
		result.Notes = append(result.Notes, fmt.Sprintf("evaluated for use case %q", useCase))
	}

	e.storeResult(key, result)
	return result
}

func (e *Engine) decide(a, b CanonicalLicense) *CompatibilityResult {
	result := &CompatibilityResult{License1: a.ID, License2: b.ID}

	// Identity short-circuits everything. Two unresolvable tokens share the
	// Unknown key but are not identical licenses, so they fall through.
	if a.ID == b.ID && a.Known {
		result.Compatible = true
		result.Level = graph.CompatibilityFull
		result.Reason = "identical licenses are always compatible"
		result.Path = []string{a.ID}
		return result
	}

	// Direct curated edge wins over inference.
	if edge, ok := e.store.GetCompatibilityEdge(a.ID, b.ID); ok && a.Known && b.Known {
		result.Level = edge.Compatibility
		result.Compatible = edge.Compatibility.IsCompatible()
		result.Conditions = append(result.Conditions, edge.Conditions...)
		result.Sources = append(result.Sources, edge.Sources...)
		result.Reason = fmt.Sprintf("curated compatibility entry %s", edge.ID)
		if edge.Direction == graph.DirectionForward {
			result.DominantLicense = b.ID
		}
		result.Path = []string{a.ID, b.ID}
		return result
	}

	return e.infer(a, b, result)
}

// infer runs the property-based rule cascade. Rules are tried in a strict
// order; the first match wins and stamps its tag on the result.
func (e *Engine) infer(a, b CanonicalLicense, result *CompatibilityResult) *CompatibilityResult {
	nodeA, okA := e.store.GetLicense(a.ID)
	nodeB, okB := e.store.GetLicense(b.ID)
	if !a.Known {
		okA = false
	}
	if !b.Known {
		okB = false
	}

	if !okA || !okB {
		var missing []string
		if !okA {
			missing = append(missing, displayToken(a))
		}
		if !okB {
			missing = append(missing, displayToken(b))
		}
		result.Level = graph.CompatibilityUnknown
		result.Compatible = true
		result.RequiresReview = true
		result.InferredRule = RuleMissingLicense
		result.Reason = fmt.Sprintf("not in the knowledge graph: %s", strings.Join(missing, ", "))
		return result
	}

	catA, catB := nodeA.Category, nodeB.Category

	if catA == graph.CategoryPermissive && catB == graph.CategoryPermissive {
		result.Level = graph.CompatibilityFull
		result.Compatible = true
		result.InferredRule = RulePermissivePair
		result.Reason = "permissive licenses combine freely"
		result.Conditions = []string{"maintain attribution notices from both licenses"}
		result.Path = []string{a.ID, b.ID}
		return result
	}

	if catA == graph.CategoryPublicDomain || catB == graph.CategoryPublicDomain {
		result.Level = graph.CompatibilityFull
		result.Compatible = true
		result.InferredRule = RulePublicDomain
		result.Reason = "public-domain material imposes no terms on the combination"
		result.Path = []string{a.ID, b.ID}
		return result
	}

	if permissive, copyleft, ok := splitPermissiveCopyleft(nodeA, nodeB); ok {
		result.Level = graph.CompatibilityConditional
		result.Compatible = true
		result.InferredRule = RulePermissiveCopyleft
		result.DominantLicense = copyleft.ID
		result.Reason = fmt.Sprintf("%s code can be incorporated under the terms of %s", permissive.ID, copyleft.ID)
		result.Conditions = []string{
			fmt.Sprintf("the combined work must follow the terms of %s", copyleft.ID),
			fmt.Sprintf("obligations of %s apply to the derivative work", copyleft.ID),
		}
		result.Path = []string{a.ID, b.ID}
		return result
	}

	if catA == graph.CategoryStrongCopyleft && catB == graph.CategoryStrongCopyleft &&
		(nodeA.Family == "" || nodeB.Family == "" || nodeA.Family != nodeB.Family) {
		result.Level = graph.CompatibilityIncompatible
		result.Compatible = false
		result.InferredRule = RuleStrongCopyleftConflict
		result.Reason = "strong copyleft licenses from different families each demand the combined work follow their own terms"
		result.Suggestions = []string{
			"replace one dependency with a compatibly licensed alternative",
			"seek a dual-licensing arrangement from the upstream authors",
		}
		return result
	}

	if nodeA.Family != "" && nodeA.Family == nodeB.Family &&
		catA.IsCopyleft() && catB.IsCopyleft() {
		return e.decideSameFamily(nodeA, nodeB, result)
	}

	if isWeakStrongPair(nodeA, nodeB) {
		strong := nodeA
		if catB == graph.CategoryStrongCopyleft {
			strong = nodeB
		}
		result.Level = graph.CompatibilityConditional
		result.Compatible = true
		result.InferredRule = RuleWeakStrongCopyleft
		result.DominantLicense = strong.ID
		result.RequiresReview = true
		result.Reason = fmt.Sprintf("weak copyleft material can usually be relicensed under %s; confirm the upgrade clause applies", strong.ID)
		return result
	}

	if catA == graph.CategoryNetworkCopyleft || catB == graph.CategoryNetworkCopyleft {
		network := nodeA
		if catB == graph.CategoryNetworkCopyleft {
			network = nodeB
		}
		if catA == graph.CategoryNetworkCopyleft && catB == graph.CategoryNetworkCopyleft {
			network = dominantNode(nodeA, nodeB)
		}
		result.Level = graph.CompatibilityConditional
		result.Compatible = true
		result.InferredRule = RuleNetworkCopyleft
		result.DominantLicense = network.ID
		result.RequiresReview = true
		result.Reason = fmt.Sprintf("%s extends its terms to network use; the combination must honor them", network.ID)
		return result
	}

	result.Level = graph.CompatibilityUnknown
	result.Compatible = true
	result.RequiresReview = true
	result.InferredRule = RuleUnresolved
	result.Reason = fmt.Sprintf("no rule covers the combination %s + %s", catA, catB)
	return result
}

// decideSameFamily resolves two copyleft licenses of one family by version.
func (e *Engine) decideSameFamily(nodeA, nodeB *graph.LicenseNode, result *CompatibilityResult) *CompatibilityResult {
	verA, okVA := parseVersion(nodeA.Version)
	verB, okVB := parseVersion(nodeB.Version)

	if okVA && okVB && compareVersions(verA, verB) != 0 {
		lower, higher := nodeA, nodeB
		if compareVersions(verA, verB) > 0 {
			lower, higher = nodeB, nodeA
		}
		if !lower.OrLater {
			result.Level = graph.CompatibilityIncompatible
			result.Compatible = false
			result.InferredRule = RuleGPLVersionConflict
			result.Reason = fmt.Sprintf("%s is pinned to version %s and cannot be combined under the newer %s", lower.ID, lower.Version, higher.ID)
			result.Suggestions = []string{
				fmt.Sprintf("replace the %s dependency with one available under %s", lower.ID, higher.ID),
			}
			return result
		}
		result.Level = graph.CompatibilityConditional
		result.Compatible = true
		result.InferredRule = RuleSameFamilyOrLater
		result.DominantLicense = higher.ID
		result.Conditions = []string{fmt.Sprintf("the combined work follows %s", higher.ID)}
		result.Reason = fmt.Sprintf("%s permits upgrading to a later version of the family", lower.ID)
		return result
	}

	if okVA && okVB {
		if nodeA.OrLater || nodeB.OrLater {
			dominant := dominantNode(nodeA, nodeB)
			result.Level = graph.CompatibilityConditional
			result.Compatible = true
			result.InferredRule = RuleSameFamilyOrLater
			result.DominantLicense = dominant.ID
			result.Conditions = []string{fmt.Sprintf("the combined work follows %s", dominant.ID)}
			result.Reason = "an or-later grant covers the shared version"
			return result
		}
		result.Level = graph.CompatibilityFull
		result.Compatible = true
		result.InferredRule = RuleSameFamilySameVersion
		result.Reason = "same family and version"
		result.Path = []string{nodeA.ID, nodeB.ID}
		return result
	}

	result.Level = graph.CompatibilityConditional
	result.Compatible = true
	result.InferredRule = RuleSameFamilyUnresolved
	result.RequiresReview = true
	result.Reason = "same family but versions cannot be compared"
	return result
}

// splitPermissiveCopyleft returns the (permissive, copyleft) pair when
// exactly one side is permissive and the other is any copyleft category.
func splitPermissiveCopyleft(a, b *graph.LicenseNode) (permissive, copyleft *graph.LicenseNode, ok bool) {
	if a.Category == graph.CategoryPermissive && b.Category.IsCopyleft() {
		return a, b, true
	}
	if b.Category == graph.CategoryPermissive && a.Category.IsCopyleft() {
		return b, a, true
	}
	return nil, nil, false
}

func isWeakStrongPair(a, b *graph.LicenseNode) bool {
	weakStrong := func(weak, strong *graph.LicenseNode) bool {
		return weak.Category == graph.CategoryWeakCopyleft &&
			(weak.CopyleftStrength == graph.CopyleftLibrary || weak.CopyleftStrength == graph.CopyleftFile) &&
			strong.Category == graph.CategoryStrongCopyleft
	}
	return weakStrong(a, b) || weakStrong(b, a)
}

// dominantNode breaks ties between candidate dominant licenses: higher
// copyleft propagation, then higher category risk, then the
// lexicographically larger id.
func dominantNode(a, b *graph.LicenseNode) *graph.LicenseNode {
	pa, pb := a.CopyleftStrength.PropagationLevel(), b.CopyleftStrength.PropagationLevel()
	if pa != pb {
		if pa > pb {
			return a
		}
		return b
	}
	ra, rb := a.Category.RiskLevel(), b.Category.RiskLevel()
	if ra != rb {
		if ra > rb {
			return a
		}
		return b
	}
	if a.ID > b.ID {
		return a
	}
	return b
}

func displayToken(lic CanonicalLicense) string {
	if lic.Original != "" && graph.CanonicalID(lic.Original) != lic.ID {
		return fmt.Sprintf("%s (%s)", lic.Original, lic.ID)
	}
	if lic.Original != "" {
		return lic.Original
	}
	return lic.ID
}

// parseVersion splits a dotted decimal version into numeric segments.
func parseVersion(version string) ([]int, bool) {
	if version == "" {
		return nil, false
	}
	parts := strings.Split(version, ".")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func compareVersions(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		va, vb := 0, 0
		if i < len(a) {
			va = a[i]
		}
		if i < len(b) {
			vb = b[i]
		}
		if va != vb {
			if va < vb {
				return -1
			}
			return 1
		}
	}
	return 0
}
