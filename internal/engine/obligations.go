package engine

import (
	"sort"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

// LicenseObligation is one obligation a license imposes, with the scope and
// trigger carried by the connecting edge. The edge trigger, when set,
// overrides the obligation node's default.
type LicenseObligation struct {
	Obligation *graph.ObligationNode   `json:"obligation"`
	Scope      graph.ObligationScope   `json:"scope"`
	Trigger    graph.ObligationTrigger `json:"trigger"`
}

// ObligationSource records which license contributed an obligation and
// under what trigger and scope.
type ObligationSource struct {
	LicenseID string                  `json:"license_id"`
	Trigger   graph.ObligationTrigger `json:"trigger"`
	Scope     graph.ObligationScope   `json:"scope"`
}

// AggregatedObligation is one obligation reduced across a license set.
// MostRestrictiveScope is the argmax of the source scopes by
// restrictiveness.
type AggregatedObligation struct {
	Obligation           *graph.ObligationNode `json:"obligation"`
	Sources              []ObligationSource    `json:"sources"`
	MostRestrictiveScope graph.ObligationScope `json:"most_restrictive_scope"`
	Effort               graph.EffortLevel     `json:"effort"`
}

// AggregatedObligations is the reduced obligation set for a group of
// licenses, ordered by effort descending then obligation id ascending.
type AggregatedObligations struct {
	Obligations           []AggregatedObligation `json:"obligations"`
	HighestEffort         graph.EffortLevel      `json:"highest_effort"`
	UniqueObligationCount int                    `json:"unique_obligation_count"`
}

// DistributionScope is the operational context in which the combined work
// reaches users. It determines which obligation triggers fire.
type DistributionScope string

const (
	DistributionInternal DistributionScope = "internal"
	DistributionBinary   DistributionScope = "binary"
	DistributionSource   DistributionScope = "source"
	DistributionSaaS     DistributionScope = "saas"
	DistributionEmbedded DistributionScope = "embedded"
)

// DistributionObligation is an obligation that applies under a distribution
// scope, with its effort adjusted for that context.
type DistributionObligation struct {
	LicenseObligation
	AdjustedEffort graph.EffortLevel `json:"adjusted_effort"`
}

// GetObligationsForLicense enumerates the obligations a license imposes,
// ordered by obligation id.
func (e *Engine) GetObligationsForLicense(licenseID string) []LicenseObligation {
	canonical := e.Canonicalize(licenseID)
	if !canonical.Known {
		return nil
	}

	var out []LicenseObligation
	for _, edge := range e.store.OutgoingEdges(canonical.ID, graph.EdgeKindObligation) {
		oe, ok := edge.(*graph.ObligationEdge)
		if !ok {
			continue
		}
		node, ok := e.store.GetObligation(oe.Target)
		if !ok {
			continue
		}
		trigger := node.Trigger
		if oe.Trigger != "" {
			trigger = oe.Trigger
		}
		out = append(out, LicenseObligation{Obligation: node, Scope: oe.Scope, Trigger: trigger})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Obligation.ID < out[j].Obligation.ID })
	return out
}

// AggregateObligations reduces the obligations of a license set to a single
// de-duplicated list. Each distinct obligation keeps every contributing
// (license, trigger, scope) source and the most restrictive scope wins.
func (e *Engine) AggregateObligations(licenseIDs []string) AggregatedObligations {
	byID := make(map[string]*AggregatedObligation)

	for _, licenseID := range licenseIDs {
		canonical := e.Canonicalize(licenseID)
		for _, lo := range e.GetObligationsForLicense(canonical.ID) {
			agg, ok := byID[lo.Obligation.ID]
			if !ok {
				agg = &AggregatedObligation{
					Obligation:           lo.Obligation,
					MostRestrictiveScope: lo.Scope,
					Effort:               lo.Obligation.Effort,
				}
				byID[lo.Obligation.ID] = agg
			}
			agg.Sources = append(agg.Sources, ObligationSource{
				LicenseID: canonical.ID,
				Trigger:   lo.Trigger,
				Scope:     lo.Scope,
			})
			if lo.Scope.Restrictiveness() > agg.MostRestrictiveScope.Restrictiveness() {
				agg.MostRestrictiveScope = lo.Scope
			}
		}
	}

	result := AggregatedObligations{UniqueObligationCount: len(byID)}
	for _, agg := range byID {
		sort.Slice(agg.Sources, func(i, j int) bool {
			return agg.Sources[i].LicenseID < agg.Sources[j].LicenseID
		})
		result.Obligations = append(result.Obligations, *agg)
	}

	sort.Slice(result.Obligations, func(i, j int) bool {
		a, b := result.Obligations[i], result.Obligations[j]
		if a.Effort.Level() != b.Effort.Level() {
			return a.Effort.Level() > b.Effort.Level()
		}
		return a.Obligation.ID < b.Obligation.ID
	})

	result.HighestEffort = graph.EffortTrivial
	for _, agg := range result.Obligations {
		if agg.Effort.Level() > result.HighestEffort.Level() {
			result.HighestEffort = agg.Effort
		}
	}
	return result
}

// admittedTriggers returns the trigger admit-set for a distribution scope.
// networkCopyleft widens the SaaS set to every trigger.
func admittedTriggers(scope DistributionScope, networkCopyleft bool) map[graph.ObligationTrigger]bool {
	switch scope {
	case DistributionInternal:
		return map[graph.ObligationTrigger]bool{graph.TriggerAlways: true}
	case DistributionBinary:
		return map[graph.ObligationTrigger]bool{
			graph.TriggerAlways:         true,
			graph.TriggerOnDistribution: true,
			graph.TriggerOnStaticLink:   true,
			graph.TriggerOnDynamicLink:  true,
		}
	case DistributionSource:
		return map[graph.ObligationTrigger]bool{
			graph.TriggerAlways:         true,
			graph.TriggerOnDistribution: true,
			graph.TriggerOnModification: true,
			graph.TriggerOnDerivative:   true,
			graph.TriggerOnStaticLink:   true,
			graph.TriggerOnDynamicLink:  true,
		}
	case DistributionSaaS:
		if networkCopyleft {
			return nil // nil admits everything
		}
		return map[graph.ObligationTrigger]bool{
			graph.TriggerAlways:       true,
			graph.TriggerOnNetworkUse: true,
		}
	default: // embedded
		return nil
	}
}

// adjustEffort applies the distribution-context effort adjustments.
func adjustEffort(effort graph.EffortLevel, scope DistributionScope, strength graph.CopyleftStrength) graph.EffortLevel {
	switch scope {
	case DistributionInternal:
		switch effort {
		case graph.EffortHigh:
			return graph.EffortMedium
		case graph.EffortVeryHigh:
			return graph.EffortHigh
		}
	case DistributionSaaS:
		if strength == graph.CopyleftNetwork {
			return graph.EffortVeryHigh
		}
	case DistributionEmbedded:
		if strength != graph.CopyleftNone {
			switch effort {
			case graph.EffortMedium:
				return graph.EffortHigh
			case graph.EffortHigh:
				return graph.EffortVeryHigh
			}
		}
	}
	return effort
}

// GetObligationsForDistribution filters a license's obligations down to
// those whose trigger fires under the distribution scope, with efforts
// adjusted for the context.
func (e *Engine) GetObligationsForDistribution(licenseID string, scope DistributionScope) []DistributionObligation {
	canonical := e.Canonicalize(licenseID)
	if !canonical.Known {
		return nil
	}
	node, ok := e.store.GetLicense(canonical.ID)
	if !ok {
		return nil
	}

	admitted := admittedTriggers(scope, node.CopyleftStrength == graph.CopyleftNetwork)

	var out []DistributionObligation
	for _, lo := range e.GetObligationsForLicense(canonical.ID) {
		if admitted != nil && !admitted[lo.Trigger] {
			continue
		}
		out = append(out, DistributionObligation{
			LicenseObligation: lo,
			AdjustedEffort:    adjustEffort(lo.Obligation.Effort, scope, node.CopyleftStrength),
		})
	}
	return out
}
