package engine

import (
	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
	"github.com/yenhunghuang/license-compliance-copilot/pkg/utils"
)

// CompatibilityPath is a chain of compatible edges connecting two licenses.
// OverallCompatibility is the minimum step level under the ordinal
// full < conditional < one-way < incompatible < unknown; AllConditions is
// the deduplicated union of step conditions.
type CompatibilityPath struct {
	Source               string                   `json:"source"`
	Target               string                   `json:"target"`
	Path                 []string                 `json:"path"`
	Steps                []graph.CompatibilityLevel `json:"steps"`
	OverallCompatibility graph.CompatibilityLevel `json:"overall_compatibility"`
	AllConditions        []string                 `json:"all_conditions,omitempty"`
}

// FindCompatibilityPath searches breadth-first for the shortest chain of
// compatible edges from source to target, following at most maxDepth edges
// (the engine's MaxPathDepth, 3 unless configured, when maxDepth <= 0).
// Returns nil when no path exists within
// the bound or either endpoint is unknown.
func (e *Engine) FindCompatibilityPath(source, target string, maxDepth int) *CompatibilityPath {
	if maxDepth <= 0 {
		maxDepth = e.maxPathDepth
	}

	src := e.Canonicalize(source)
	dst := e.Canonicalize(target)
	if !src.Known || !dst.Known {
		return nil
	}

	if src.ID == dst.ID {
		return &CompatibilityPath{
			Source:               src.ID,
			Target:               dst.ID,
			Path:                 []string{src.ID},
			OverallCompatibility: graph.CompatibilityFull,
		}
	}

	type queueEntry struct {
		id    string
		depth int
	}
	parent := make(map[string]*graph.CompatibilityEdge)
	visited := map[string]bool{src.ID: true}
	queue := []queueEntry{{id: src.ID}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxDepth {
			continue
		}

		for _, edge := range e.store.CompatibilityNeighbors(current.id) {
			if !edge.Compatibility.IsCompatible() || visited[edge.Target] {
				continue
			}
			visited[edge.Target] = true
			parent[edge.Target] = edge
			if edge.Target == dst.ID {
				return e.buildPath(src.ID, dst.ID, parent)
			}
			queue = append(queue, queueEntry{id: edge.Target, depth: current.depth + 1})
		}
	}

	return nil
}

func (e *Engine) buildPath(source, target string, parent map[string]*graph.CompatibilityEdge) *CompatibilityPath {
	var edges []*graph.CompatibilityEdge
	for at := target; at != source; {
		edge := parent[at]
		edges = append([]*graph.CompatibilityEdge{edge}, edges...)
		at = edge.Source
	}

	path := &CompatibilityPath{
		Source:               source,
		Target:               target,
		Path:                 []string{source},
		OverallCompatibility: graph.CompatibilityUnknown,
	}

	overall := graph.CompatibilityUnknown
	var conditions []string
	for _, edge := range edges {
		path.Path = append(path.Path, edge.Target)
		path.Steps = append(path.Steps, edge.Compatibility)
		if edge.Compatibility.Ordinal() < overall.Ordinal() {
			overall = edge.Compatibility
		}
		conditions = append(conditions, edge.Conditions...)
	}
	path.OverallCompatibility = overall
	if len(conditions) > 0 {
		path.AllConditions = utils.DedupeStrings(conditions)
	}
	return path
}
