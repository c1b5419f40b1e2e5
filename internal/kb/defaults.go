// Package kb ships the built-in license knowledge base and a YAML loader
// for curated extensions. The built-ins cover the licenses, obligations,
// and curated compatibility entries the engine needs for common open-source
// dependency trees.
package kb

import (
	"fmt"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

// Obligation ids shared between the built-ins and the loader.
const (
	ObligationAttribution       = "attribution"
	ObligationIncludeLicense    = "include-license-text"
	ObligationStateChanges      = "state-changes"
	ObligationDiscloseSource    = "disclose-source"
	ObligationSameLicense       = "same-license"
	ObligationNetworkDisclosure = "network-source-disclosure"
	ObligationPatentRetaliation = "patent-retaliation"
	ObligationRelinkCapability  = "relink-capability"
)

func defaultLicenses() []graph.LicenseNode {
	return []graph.LicenseNode{
		{
			ID: "MIT", Name: "MIT License",
			Category: graph.CategoryPermissive, CopyleftStrength: graph.CopyleftNone,
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "APACHE-2.0", Name: "Apache License 2.0",
			Category: graph.CategoryPermissive, CopyleftStrength: graph.CopyleftNone,
			Family: "Apache", Version: "2.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "BSD-2-CLAUSE", Name: "BSD 2-Clause \"Simplified\" License",
			Category: graph.CategoryPermissive, CopyleftStrength: graph.CopyleftNone,
			Family: "BSD", IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "BSD-3-CLAUSE", Name: "BSD 3-Clause \"New\" or \"Revised\" License",
			Category: graph.CategoryPermissive, CopyleftStrength: graph.CopyleftNone,
			Family: "BSD", IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "ISC", Name: "ISC License",
			Category: graph.CategoryPermissive, CopyleftStrength: graph.CopyleftNone,
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "ZLIB", Name: "zlib License",
			Category: graph.CategoryPermissive, CopyleftStrength: graph.CopyleftNone,
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "UNLICENSE", Name: "The Unlicense",
			Category: graph.CategoryPublicDomain, CopyleftStrength: graph.CopyleftNone,
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "CC0-1.0", Name: "Creative Commons Zero v1.0 Universal",
			Category: graph.CategoryPublicDomain, CopyleftStrength: graph.CopyleftNone,
			IsFSFFree: true,
		},
		{
			ID: "MPL-2.0", Name: "Mozilla Public License 2.0",
			Category: graph.CategoryWeakCopyleft, CopyleftStrength: graph.CopyleftFile,
			Family: "MPL", Version: "2.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "EPL-2.0", Name: "Eclipse Public License 2.0",
			Category: graph.CategoryWeakCopyleft, CopyleftStrength: graph.CopyleftLibrary,
			Family: "EPL", Version: "2.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "LGPL-2.1-ONLY", Name: "GNU Lesser General Public License v2.1 only",
			Category: graph.CategoryWeakCopyleft, CopyleftStrength: graph.CopyleftLibrary,
			Family: "LGPL", Version: "2.1",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "LGPL-3.0-ONLY", Name: "GNU Lesser General Public License v3.0 only",
			Category: graph.CategoryWeakCopyleft, CopyleftStrength: graph.CopyleftLibrary,
			Family: "LGPL", Version: "3.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "GPL-2.0-ONLY", Name: "GNU General Public License v2.0 only",
			Category: graph.CategoryStrongCopyleft, CopyleftStrength: graph.CopyleftStrong,
			Family: "GPL", Version: "2.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "GPL-2.0-OR-LATER", Name: "GNU General Public License v2.0 or later",
			Category: graph.CategoryStrongCopyleft, CopyleftStrength: graph.CopyleftStrong,
			Family: "GPL", Version: "2.0", OrLater: true,
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "GPL-3.0-ONLY", Name: "GNU General Public License v3.0 only",
			Category: graph.CategoryStrongCopyleft, CopyleftStrength: graph.CopyleftStrong,
			Family: "GPL", Version: "3.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "GPL-3.0-OR-LATER", Name: "GNU General Public License v3.0 or later",
			Category: graph.CategoryStrongCopyleft, CopyleftStrength: graph.CopyleftStrong,
			Family: "GPL", Version: "3.0", OrLater: true,
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "AGPL-3.0-ONLY", Name: "GNU Affero General Public License v3.0 only",
			Category: graph.CategoryNetworkCopyleft, CopyleftStrength: graph.CopyleftNetwork,
			Family: "AGPL", Version: "3.0",
			IsOSIApproved: true, IsFSFFree: true,
		},
		{
			ID: "BUSL-1.1", Name: "Business Source License 1.1",
			Category: graph.CategorySourceAvailable, CopyleftStrength: graph.CopyleftNone,
			Version: "1.1",
		},
	}
}

func defaultObligations() []graph.ObligationNode {
	return []graph.ObligationNode{
		{
			ID: ObligationAttribution, Name: "Attribution",
			Description: "Give credit to the original authors in distributed copies.",
			Trigger:     graph.TriggerOnDistribution, Effort: graph.EffortLow,
		},
		{
			ID: ObligationIncludeLicense, Name: "Include license text",
			Description: "Ship the full license text with distributed copies.",
			Trigger:     graph.TriggerOnDistribution, Effort: graph.EffortTrivial,
		},
		{
			ID: ObligationStateChanges, Name: "State changes",
			Description: "Mark modified files with prominent change notices.",
			Trigger:     graph.TriggerOnModification, Effort: graph.EffortLow,
		},
		{
			ID: ObligationDiscloseSource, Name: "Disclose source",
			Description: "Provide the corresponding source code to recipients.",
			Trigger:     graph.TriggerOnDistribution, Effort: graph.EffortHigh,
		},
		{
			ID: ObligationSameLicense, Name: "Same license",
			Description: "License derivative works under the same terms.",
			Trigger:     graph.TriggerOnDerivative, Effort: graph.EffortHigh,
		},
		{
			ID: ObligationNetworkDisclosure, Name: "Network source disclosure",
			Description: "Offer the corresponding source to users who interact with the work over a network.",
			Trigger:     graph.TriggerOnNetworkUse, Effort: graph.EffortVeryHigh,
		},
		{
			ID: ObligationPatentRetaliation, Name: "Patent retaliation",
			Description: "The patent grant terminates for parties who file patent claims over the work.",
			Trigger:     graph.TriggerOnPatentClaim, Effort: graph.EffortMedium,
		},
		{
			ID: ObligationRelinkCapability, Name: "Relink capability",
			Description: "Allow recipients to relink the application against a modified version of the library.",
			Trigger:     graph.TriggerOnStaticLink, Effort: graph.EffortHigh,
		},
	}
}

type obligationBinding struct {
	license    string
	obligation string
	scope      graph.ObligationScope
	trigger    graph.ObligationTrigger // optional edge-level override
}

func defaultObligationBindings() []obligationBinding {
	permissiveCore := func(license string) []obligationBinding {
		return []obligationBinding{
			{license: license, obligation: ObligationAttribution, scope: graph.ScopeComponent},
			{license: license, obligation: ObligationIncludeLicense, scope: graph.ScopeComponent},
		}
	}

	var bindings []obligationBinding
	for _, license := range []string{"MIT", "APACHE-2.0", "BSD-2-CLAUSE", "BSD-3-CLAUSE", "ISC"} {
		bindings = append(bindings, permissiveCore(license)...)
	}

	bindings = append(bindings,
		obligationBinding{license: "APACHE-2.0", obligation: ObligationStateChanges, scope: graph.ScopeModifiedFiles},
		obligationBinding{license: "APACHE-2.0", obligation: ObligationPatentRetaliation, scope: graph.ScopeComponent},
		obligationBinding{license: "ZLIB", obligation: ObligationStateChanges, scope: graph.ScopeModifiedFiles},

		obligationBinding{license: "MPL-2.0", obligation: ObligationIncludeLicense, scope: graph.ScopeComponent},
		obligationBinding{license: "MPL-2.0", obligation: ObligationDiscloseSource, scope: graph.ScopeModifiedFiles},
		obligationBinding{license: "EPL-2.0", obligation: ObligationIncludeLicense, scope: graph.ScopeComponent},
		obligationBinding{license: "EPL-2.0", obligation: ObligationDiscloseSource, scope: graph.ScopeComponent},
	)

	for _, license := range []string{"LGPL-2.1-ONLY", "LGPL-3.0-ONLY"} {
		bindings = append(bindings,
			obligationBinding{license: license, obligation: ObligationIncludeLicense, scope: graph.ScopeComponent},
			obligationBinding{license: license, obligation: ObligationStateChanges, scope: graph.ScopeModifiedFiles},
			obligationBinding{license: license, obligation: ObligationDiscloseSource, scope: graph.ScopeComponent},
			obligationBinding{license: license, obligation: ObligationRelinkCapability, scope: graph.ScopeComponent},
		)
	}

	gplCore := func(license string) []obligationBinding {
		return []obligationBinding{
			{license: license, obligation: ObligationIncludeLicense, scope: graph.ScopeDistributedWork},
			{license: license, obligation: ObligationStateChanges, scope: graph.ScopeModifiedFiles},
			{license: license, obligation: ObligationDiscloseSource, scope: graph.ScopeDerivativeWork},
			{license: license, obligation: ObligationSameLicense, scope: graph.ScopeDerivativeWork},
		}
	}
	for _, license := range []string{"GPL-2.0-ONLY", "GPL-2.0-OR-LATER", "GPL-3.0-ONLY", "GPL-3.0-OR-LATER"} {
		bindings = append(bindings, gplCore(license)...)
	}

	bindings = append(bindings, gplCore("AGPL-3.0-ONLY")...)
	bindings = append(bindings,
		obligationBinding{license: "AGPL-3.0-ONLY", obligation: ObligationNetworkDisclosure, scope: graph.ScopeDistributedWork},
	)

	return bindings
}

func defaultCompatibilityEdges() []graph.CompatibilityEdge {
	return []graph.CompatibilityEdge{
		{
			ID: "mit-bsd3", Source: "MIT", Target: "BSD-3-CLAUSE",
			Compatibility: graph.CompatibilityFull, Direction: graph.DirectionBidirectional,
			Conditions: []string{"maintain attribution notices from both licenses"},
			Sources:    []string{"https://www.gnu.org/licenses/license-list.html"},
		},
		{
			ID: "apache2-gpl3", Source: "APACHE-2.0", Target: "GPL-3.0-ONLY",
			Compatibility: graph.CompatibilityOneWay, Direction: graph.DirectionForward,
			Conditions: []string{"the combined work must be distributed under GPL-3.0 terms"},
			Sources:    []string{"https://www.apache.org/licenses/GPL-compatibility.html"},
		},
		{
			ID: "apache2-gpl2", Source: "APACHE-2.0", Target: "GPL-2.0-ONLY",
			Compatibility: graph.CompatibilityIncompatible, Direction: graph.DirectionBidirectional,
			Conditions: []string{"GPL-2.0 lacks the patent-termination and indemnification accommodations Apache-2.0 requires"},
			Sources:    []string{"https://www.apache.org/licenses/GPL-compatibility.html"},
		},
		{
			ID: "cc0-gpl3", Source: "CC0-1.0", Target: "GPL-3.0-ONLY",
			Compatibility: graph.CompatibilityFull, Direction: graph.DirectionForward,
			Sources:       []string{"https://www.gnu.org/licenses/license-list.html#CC0"},
		},
		{
			ID: "mpl2-gpl3", Source: "MPL-2.0", Target: "GPL-3.0-ONLY",
			Compatibility: graph.CompatibilityConditional, Direction: graph.DirectionForward,
			Conditions: []string{"applies only while the MPL-covered files are not marked Incompatible With Secondary Licenses"},
			Sources:    []string{"https://www.mozilla.org/en-US/MPL/2.0/FAQ/"},
		},
	}
}

func defaultAnnotations() []graph.AnnotationEdge {
	return []graph.AnnotationEdge{
		{ID: "mit-commercial", Relation: graph.EdgeKindRight, Source: "MIT", Target: "commercial-use", Note: "may be used commercially"},
		{ID: "mit-modify", Relation: graph.EdgeKindRight, Source: "MIT", Target: "modification", Note: "may be modified"},
		{ID: "apache2-trademark", Relation: graph.EdgeKindLimitation, Source: "APACHE-2.0", Target: "trademark-use", Note: "trademark rights are not granted"},
		{ID: "gpl3-disclose", Relation: graph.EdgeKindCondition, Source: "GPL-3.0-ONLY", Target: "disclose-source", Note: "source must be made available when distributed"},
		{ID: "agpl3-network", Relation: graph.EdgeKindUseCaseTrigger, Source: "AGPL-3.0-ONLY", Target: "network-service", Note: "network interaction counts as distribution"},
		{ID: "lgpl3-dynamic", Relation: graph.EdgeKindUseCaseExemption, Source: "LGPL-3.0-ONLY", Target: "dynamic-linking", Note: "dynamically linked applications keep their own license"},
	}
}

// Register loads the built-in knowledge base into a store.
func Register(store *graph.Store) error {
	for _, license := range defaultLicenses() {
		node := license
		if err := store.AddLicense(&node); err != nil {
			return fmt.Errorf("register license %s: %w", license.ID, err)
		}
	}
	for _, obligation := range defaultObligations() {
		node := obligation
		if err := store.AddObligation(&node); err != nil {
			return fmt.Errorf("register obligation %s: %w", obligation.ID, err)
		}
	}
	for _, binding := range defaultObligationBindings() {
		edge := &graph.ObligationEdge{
			ID:      binding.license + ":" + binding.obligation,
			Source:  binding.license,
			Target:  binding.obligation,
			Trigger: binding.trigger,
			Scope:   binding.scope,
		}
		if err := store.AddEdge(edge); err != nil {
			return fmt.Errorf("register obligation edge %s: %w", edge.ID, err)
		}
	}
	for _, compat := range defaultCompatibilityEdges() {
		edge := compat
		if err := store.AddEdge(&edge); err != nil {
			return fmt.Errorf("register compatibility edge %s: %w", compat.ID, err)
		}
	}
	for _, annotation := range defaultAnnotations() {
		edge := annotation
		if err := store.AddEdge(&edge); err != nil {
			return fmt.Errorf("register annotation %s: %w", annotation.ID, err)
		}
	}
	return nil
}

// NewStore builds a store pre-loaded with the built-in knowledge base.
func NewStore() (*graph.Store, error) {
	store := graph.NewStore()
	if err := Register(store); err != nil {
		return nil, err
	}
	return store, nil
}
