package graph

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type pairKey struct {
	source string
	target string
}

type edgeKey struct {
	kind   EdgeKind
	source string
	target string
}

// Store is the in-memory knowledge graph. Reads may run concurrently from
// any number of goroutines; writes serialize behind the table lock. The
// store is intended to be fully populated before queries begin.
type Store struct {
	mu sync.RWMutex

	licenses    map[string]*LicenseNode
	obligations map[string]*ObligationNode

	edges    map[edgeKey]Edge
	outgoing map[string][]Edge
	incoming map[string][]Edge

	compatIndex   map[pairKey]*CompatibilityEdge
	familyIndex   map[string]map[string]struct{}
	categoryIndex map[Category]map[string]struct{}

	lastUpdated time.Time
}

// NewStore creates an empty knowledge graph store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.licenses = make(map[string]*LicenseNode)
	s.obligations = make(map[string]*ObligationNode)
	s.edges = make(map[edgeKey]Edge)
	s.outgoing = make(map[string][]Edge)
	s.incoming = make(map[string][]Edge)
	s.compatIndex = make(map[pairKey]*CompatibilityEdge)
	s.familyIndex = make(map[string]map[string]struct{})
	s.categoryIndex = make(map[Category]map[string]struct{})
	s.lastUpdated = time.Now()
}

// Clear atomically empties every node table and index.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// LastUpdated returns the time of the most recent mutation.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddLicense inserts a license node. The id is canonicalized on insert; a
// node with the same id replaces the prior one and the family and category
// indexes are updated in the same critical section.
func (s *Store) AddLicense(node *LicenseNode) error {
	if node == nil || node.ID == "" {
		return fmt.Errorf("license node requires an id")
	}
	id := CanonicalID(node.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.licenses[id]; ok {
		s.dropFromIndexes(prev)
	}

	stored := *node
	stored.ID = id
	if stored.Category == "" {
		stored.Category = CategoryUnknown
	}
	if stored.CopyleftStrength == "" {
		stored.CopyleftStrength = CopyleftNone
	}
	s.licenses[id] = &stored

	if stored.Family != "" {
		if s.familyIndex[stored.Family] == nil {
			s.familyIndex[stored.Family] = make(map[string]struct{})
		}
		s.familyIndex[stored.Family][id] = struct{}{}
	}
	if s.categoryIndex[stored.Category] == nil {
		s.categoryIndex[stored.Category] = make(map[string]struct{})
	}
	s.categoryIndex[stored.Category][id] = struct{}{}

	s.lastUpdated = time.Now()
	return nil
}

func (s *Store) dropFromIndexes(node *LicenseNode) {
	if node.Family != "" {
		delete(s.familyIndex[node.Family], node.ID)
	}
	delete(s.categoryIndex[node.Category], node.ID)
}

// AddObligation inserts an obligation node, replacing any prior node with
// the same id.
func (s *Store) AddObligation(node *ObligationNode) error {
	if node == nil || node.ID == "" {
		return fmt.Errorf("obligation node requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *node
	if stored.Trigger == "" {
		stored.Trigger = TriggerAlways
	}
	if stored.Effort == "" {
		stored.Effort = EffortLow
	}
	s.obligations[stored.ID] = &stored
	s.lastUpdated = time.Now()
	return nil
}

// AddEdge inserts an edge. Edges form a multigraph keyed by
// (kind, source, target); inserting the same key replaces the prior edge in
// every index. Bidirectional compatibility edges also store a derived
// reverse entry so the (target, source) lookup is O(1).
func (s *Store) AddEdge(edge Edge) error {
	if edge == nil {
		return fmt.Errorf("nil edge")
	}
	if edge.From() == "" || edge.To() == "" {
		return fmt.Errorf("edge %q requires source and target", edge.EdgeID())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := edge.(type) {
	case *CompatibilityEdge:
		stored := *e
		stored.Source = CanonicalID(e.Source)
		stored.Target = CanonicalID(e.Target)

		// a replaced bidirectional edge leaves a derived reverse entry
		// behind; drop it so the index stays derivable from the edges
		reverseKey := pairKey{stored.Target, stored.Source}
		if prev, ok := s.edges[edgeKey{EdgeKindCompatibility, stored.Source, stored.Target}]; ok {
			if pc, ok := prev.(*CompatibilityEdge); ok && pc.Direction == DirectionBidirectional {
				if rev, ok := s.compatIndex[reverseKey]; ok && rev.ID == pc.ID+"-reverse" {
					delete(s.compatIndex, reverseKey)
				}
			}
		}

		s.putEdge(&stored)
		s.compatIndex[pairKey{stored.Source, stored.Target}] = &stored
		if stored.Direction == DirectionBidirectional {
			// an explicit reverse edge keeps precedence over the derived entry
			if _, explicit := s.edges[edgeKey{EdgeKindCompatibility, stored.Target, stored.Source}]; !explicit {
				s.compatIndex[reverseKey] = stored.Reversed()
			}
		}
	case *ObligationEdge:
		stored := *e
		stored.Source = CanonicalID(e.Source)
		s.putEdge(&stored)
	case *AnnotationEdge:
		stored := *e
		stored.Source = CanonicalID(e.Source)
		s.putEdge(&stored)
	default:
		return fmt.Errorf("unsupported edge kind %q", edge.Kind())
	}

	s.lastUpdated = time.Now()
	return nil
}

// putEdge replaces the (kind, source, target) slot and keeps the adjacency
// lists consistent. Caller holds the write lock.
func (s *Store) putEdge(edge Edge) {
	key := edgeKey{edge.Kind(), edge.From(), edge.To()}
	if prev, ok := s.edges[key]; ok {
		s.outgoing[prev.From()] = removeEdge(s.outgoing[prev.From()], prev)
		s.incoming[prev.To()] = removeEdge(s.incoming[prev.To()], prev)
	}
	s.edges[key] = edge
	s.outgoing[edge.From()] = append(s.outgoing[edge.From()], edge)
	s.incoming[edge.To()] = append(s.incoming[edge.To()], edge)
}

func removeEdge(edges []Edge, target Edge) []Edge {
	for i, e := range edges {
		if e == target {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// GetLicense looks up a license node by id. Lookups are case-insensitive.
func (s *Store) GetLicense(id string) (*LicenseNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.licenses[CanonicalID(id)]
	return node, ok
}

// GetObligation looks up an obligation node by id.
func (s *Store) GetObligation(id string) (*ObligationNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.obligations[id]
	return node, ok
}

// GetCompatibilityEdge returns the direct compatibility entry for the
// ordered pair (source, target), including derived reverse entries.
func (s *Store) GetCompatibilityEdge(source, target string) (*CompatibilityEdge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edge, ok := s.compatIndex[pairKey{CanonicalID(source), CanonicalID(target)}]
	return edge, ok
}

// CompatibilityNeighbors returns every compatibility entry whose source is
// the given license, including derived reverse entries of bidirectional
// edges. The result is ordered by target id so traversals are
// deterministic.
func (s *Store) CompatibilityNeighbors(id string) []*CompatibilityEdge {
	cid := CanonicalID(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*CompatibilityEdge
	for key, edge := range s.compatIndex {
		if key.source == cid {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// OutgoingEdges returns the outgoing edges of a node, optionally filtered by
// kind. The returned slice is a copy.
func (s *Store) OutgoingEdges(id string, kinds ...EdgeKind) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterEdges(s.outgoing[CanonicalID(id)], kinds)
}

// IncomingEdges returns the incoming edges of a node, optionally filtered by
// kind. The returned slice is a copy.
func (s *Store) IncomingEdges(id string, kinds ...EdgeKind) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterEdges(s.incoming[id], kinds)
}

func filterEdges(edges []Edge, kinds []EdgeKind) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if len(kinds) == 0 {
			out = append(out, e)
			continue
		}
		for _, k := range kinds {
			if e.Kind() == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// LicensesInFamily returns the ids of all licenses in a family.
func (s *Store) LicensesInFamily(family string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return setToSlice(s.familyIndex[family])
}

// LicensesInCategory returns the ids of all licenses in a category.
func (s *Store) LicensesInCategory(category Category) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return setToSlice(s.categoryIndex[category])
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// LicenseIDs returns every license id in the graph.
func (s *Store) LicenseIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.licenses))
	for id := range s.licenses {
		out = append(out, id)
	}
	return out
}
