package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
	"github.com/yenhunghuang/license-compliance-copilot/pkg/types"
)

// ConflictSeverity grades a pairwise conflict.
type ConflictSeverity string

const (
	SeverityBlocking ConflictSeverity = "blocking"
	SeverityWarning  ConflictSeverity = "warning"
)

// LicenseConflict is one incompatible license pair found in a dependency
// tree, attributed to representative dependencies carrying each license.
type LicenseConflict struct {
	Dependency1  string                   `json:"dependency1"`
	Dependency2  string                   `json:"dependency2"`
	License1     string                   `json:"license1"`
	License2     string                   `json:"license2"`
	Severity     ConflictSeverity         `json:"severity"`
	Level        graph.CompatibilityLevel `json:"level"`
	Reason       string                   `json:"reason"`
	InferredRule string                   `json:"inferred_rule,omitempty"`
	Suggestions  []string                 `json:"suggestions,omitempty"`
}

// RecommendationPriority orders remediation recommendations.
type RecommendationPriority string

const (
	PriorityCritical RecommendationPriority = "critical"
	PriorityHigh     RecommendationPriority = "high"
	PriorityMedium   RecommendationPriority = "medium"
	PriorityLow      RecommendationPriority = "low"
)

func (p RecommendationPriority) rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Recommendation types.
const (
	RecommendResolveConflict   = "RESOLVE_CONFLICT"
	RecommendFulfillObligation = "FULFILL_OBLIGATION"
)

// Recommendation is one remediation step derived from the analysis.
type Recommendation struct {
	Type        string                 `json:"type"`
	Priority    RecommendationPriority `json:"priority"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
}

// Verdict is the overall compliance outcome of a tree analysis, ordered
// compliant < requires-review < warnings < blocked.
type Verdict string

const (
	VerdictCompliant      Verdict = "compliant"
	VerdictRequiresReview Verdict = "requires-review"
	VerdictWarnings       Verdict = "warnings"
	VerdictBlocked        Verdict = "blocked"
)

// Rank returns the verdict's position in the severity order.
func (v Verdict) Rank() int {
	switch v {
	case VerdictRequiresReview:
		return 1
	case VerdictWarnings:
		return 2
	case VerdictBlocked:
		return 3
	default:
		return 0
	}
}

// Diagnostic is a non-fatal problem with one input record.
type Diagnostic struct {
	DependencyID string `json:"dependency_id"`
	Reason       string `json:"reason"`
}

// DependencyTreeAnalysis is the full verdict for a dependency set.
type DependencyTreeAnalysis struct {
	AnalysisID        string                `json:"analysis_id"`
	TotalDependencies int                   `json:"total_dependencies"`
	DistinctLicenses  []string              `json:"distinct_licenses"`
	LicenseBreakdown  map[string]string     `json:"license_breakdown"`
	Conflicts         []LicenseConflict     `json:"conflicts"`
	DominantLicense   string                `json:"dominant_license,omitempty"`
	Obligations       AggregatedObligations `json:"obligations"`
	Verdict           Verdict               `json:"verdict"`
	Recommendations   []Recommendation      `json:"recommendations"`
	RiskScore         float64               `json:"risk_score"`
	RequiresReview    bool                  `json:"requires_review"`
	Diagnostics       []Diagnostic          `json:"diagnostics,omitempty"`
	GeneratedAt       time.Time             `json:"generated_at"`
}

type analyzedDependency struct {
	record         types.Dependency
	classification Classification
	licenses       []CanonicalLicense
}

// AnalyzeDependencyTree analyzes a dependency set: it classifies every
// record, checks every unordered license pair, selects the dominant
// license, aggregates obligations, and derives the compliance verdict,
// recommendations, and risk score. Missing licenses never abort the
// analysis; they surface as unknown-level results with a review flag.
func (e *Engine) AnalyzeDependencyTree(dependencies []types.Dependency, useCase string) *DependencyTreeAnalysis {
	analysis := &DependencyTreeAnalysis{
		AnalysisID:       uuid.NewString(),
		LicenseBreakdown: make(map[string]string),
		GeneratedAt:      time.Now(),
	}

	analyzed, diagnostics := e.classifyDependencies(dependencies, analysis)
	analysis.Diagnostics = diagnostics
	analysis.TotalDependencies = len(analyzed)

	licenseSet, firstCarrier := distinctLicenses(analyzed)
	analysis.DistinctLicenses = licenseSet

	results := e.checkAllPairs(licenseSet, useCase)
	analysis.Conflicts = buildConflicts(results, firstCarrier)

	requiresReview := false
	for _, dep := range analyzed {
		if dep.classification.RequiresReview {
			requiresReview = true
		}
	}
	for _, result := range results {
		if result.RequiresReview {
			requiresReview = true
		}
	}
	analysis.RequiresReview = requiresReview

	analysis.DominantLicense = e.dominantLicense(licenseSet)
	analysis.Obligations = e.AggregateObligations(licenseSet)
	analysis.Verdict = deriveVerdict(analysis)
	analysis.Recommendations = e.buildRecommendations(analysis)
	analysis.RiskScore = e.riskScore(analysis, licenseSet)

	e.log.WithFields(map[string]interface{}{
		"analysis_id":  analysis.AnalysisID,
		"dependencies": analysis.TotalDependencies,
		"licenses":     len(licenseSet),
		"conflicts":    len(analysis.Conflicts),
		"verdict":      analysis.Verdict,
		"risk_score":   analysis.RiskScore,
	}).Info("dependency tree analyzed")

	return analysis
}

func (e *Engine) classifyDependencies(dependencies []types.Dependency, analysis *DependencyTreeAnalysis) ([]analyzedDependency, []Diagnostic) {
	var analyzed []analyzedDependency
	var diagnostics []Diagnostic

	for _, dep := range dependencies {
		if dep.ID == "" {
			diagnostics = append(diagnostics, Diagnostic{
				DependencyID: dep.Name,
				Reason:       "InvalidInput: dependency record has an empty id",
			})
			continue
		}

		entry := analyzedDependency{record: dep}
		expr, err := e.ParseExpression(dep.License)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{
				DependencyID: dep.ID,
				Reason:       fmt.Sprintf("InvalidExpression: %v", err),
			})
			entry.classification = Classification{
				Category:       graph.CategoryUnknown,
				RequiresReview: true,
				Reason:         err.Error(),
			}
			entry.licenses = []CanonicalLicense{{ID: UnknownLicense, Original: dep.License}}
		} else {
			entry.classification = e.ClassifyExpression(expr)
			entry.licenses = expr.Licenses()
		}

		analysis.LicenseBreakdown[dep.ID] = entry.classification.Tag()
		analyzed = append(analyzed, entry)
	}

	return analyzed, diagnostics
}

// distinctLicenses returns the sorted distinct canonical license set and,
// per license, the lexicographically first dependency id that carries it.
func distinctLicenses(analyzed []analyzedDependency) ([]string, map[string]string) {
	carrier := make(map[string]string)
	for _, dep := range analyzed {
		for _, lic := range dep.licenses {
			if prev, ok := carrier[lic.ID]; !ok || dep.record.ID < prev {
				carrier[lic.ID] = dep.record.ID
			}
		}
	}

	set := make([]string, 0, len(carrier))
	for id := range carrier {
		set = append(set, id)
	}
	sort.Strings(set)
	return set, carrier
}

type pairResult struct {
	a, b   string
	result *CompatibilityResult
}

// checkAllPairs runs every unordered pair through the oracle. The oracle is
// pure over a stable graph, so pairs are dispatched concurrently and
// collected in deterministic order afterwards.
func (e *Engine) checkAllPairs(licenseSet []string, useCase string) []pairResult {
	var pairs [][2]string
	for i := 0; i < len(licenseSet); i++ {
		for j := i + 1; j < len(licenseSet); j++ {
			pairs = append(pairs, [2]string{licenseSet[i], licenseSet[j]})
		}
	}

	results := make([]pairResult, len(pairs))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, pair := range pairs {
		g.Go(func() error {
			results[i] = pairResult{
				a:      pair[0],
				b:      pair[1],
				result: e.CheckCompatibility(pair[0], pair[1], useCase),
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func buildConflicts(results []pairResult, carrier map[string]string) []LicenseConflict {
	var conflicts []LicenseConflict
	for _, pr := range results {
		if pr.result.Compatible {
			continue
		}
		severity := SeverityWarning
		if pr.result.Level == graph.CompatibilityIncompatible {
			severity = SeverityBlocking
		}
		conflicts = append(conflicts, LicenseConflict{
			Dependency1:  carrier[pr.a],
			Dependency2:  carrier[pr.b],
			License1:     pr.a,
			License2:     pr.b,
			Severity:     severity,
			Level:        pr.result.Level,
			Reason:       pr.result.Reason,
			InferredRule: pr.result.InferredRule,
			Suggestions:  pr.result.Suggestions,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Dependency1 != conflicts[j].Dependency1 {
			return conflicts[i].Dependency1 < conflicts[j].Dependency1
		}
		return conflicts[i].Dependency2 < conflicts[j].Dependency2
	})
	return conflicts
}

// dominantLicense selects the license whose terms dominate the combined
// work: highest copyleft propagation times ten plus category risk, ties
// broken by ascending id.
func (e *Engine) dominantLicense(licenseSet []string) string {
	best := ""
	bestScore := -1
	for _, id := range licenseSet {
		score := 0
		if node, ok := e.store.GetLicense(id); ok {
			score = node.CopyleftStrength.PropagationLevel()*10 + node.Category.RiskLevel()
		} else {
			score = graph.CategoryUnknown.RiskLevel()
		}
		if score > bestScore || (score == bestScore && id < best) {
			best = id
			bestScore = score
		}
	}
	return best
}

func deriveVerdict(analysis *DependencyTreeAnalysis) Verdict {
	hasBlocking := false
	for _, conflict := range analysis.Conflicts {
		if conflict.Severity == SeverityBlocking {
			hasBlocking = true
		}
	}
	switch {
	case hasBlocking:
		return VerdictBlocked
	case len(analysis.Conflicts) > 0:
		return VerdictWarnings
	case analysis.Obligations.HighestEffort.Level() >= graph.EffortHigh.Level():
		return VerdictRequiresReview
	case analysis.RequiresReview:
		return VerdictRequiresReview
	default:
		return VerdictCompliant
	}
}

func (e *Engine) buildRecommendations(analysis *DependencyTreeAnalysis) []Recommendation {
	var recs []Recommendation

	for _, conflict := range analysis.Conflicts {
		priority := PriorityHigh
		if conflict.Severity == SeverityBlocking {
			priority = PriorityCritical
		}
		description := conflict.Reason
		for _, s := range conflict.Suggestions {
			description += "; " + s
		}
		recs = append(recs, Recommendation{
			Type:        RecommendResolveConflict,
			Priority:    priority,
			Title:       fmt.Sprintf("Resolve license conflict between %s and %s", conflict.License1, conflict.License2),
			Description: description,
		})
	}

	for _, agg := range analysis.Obligations.Obligations {
		if agg.Effort.Level() < graph.EffortHigh.Level() {
			continue
		}
		priority := PriorityMedium
		if agg.Effort == graph.EffortVeryHigh {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			Type:        RecommendFulfillObligation,
			Priority:    priority,
			Title:       fmt.Sprintf("Fulfill obligation: %s", agg.Obligation.Name),
			Description: agg.Obligation.Description,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Priority.rank() != recs[j].Priority.rank() {
			return recs[i].Priority.rank() > recs[j].Priority.rank()
		}
		return recs[i].Title < recs[j].Title
	})
	return recs
}

// riskScore combines conflict counts, heavy obligations, and copyleft
// density into a clamped [0, 1] score.
func (e *Engine) riskScore(analysis *DependencyTreeAnalysis, licenseSet []string) float64 {
	blocking, warning := 0, 0
	for _, conflict := range analysis.Conflicts {
		if conflict.Severity == SeverityBlocking {
			blocking++
		} else {
			warning++
		}
	}

	veryHigh, high := 0, 0
	for _, agg := range analysis.Obligations.Obligations {
		switch agg.Effort {
		case graph.EffortVeryHigh:
			veryHigh++
		case graph.EffortHigh:
			high++
		}
	}

	strong, network := 0, 0
	for _, id := range licenseSet {
		if node, ok := e.store.GetLicense(id); ok {
			switch node.Category {
			case graph.CategoryStrongCopyleft:
				strong++
			case graph.CategoryNetworkCopyleft:
				network++
			}
		}
	}

	score := 0.30*float64(blocking) +
		0.10*float64(warning) +
		0.15*float64(veryHigh) +
		0.08*float64(high) +
		0.05*float64(strong+network)
	return math.Min(1.0, math.Max(0.0, score))
}
