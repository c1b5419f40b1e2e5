// Package engine implements the license reasoning engine: identifier
// canonicalization, license-expression evaluation, policy classification,
// pairwise compatibility inference over the knowledge graph, obligation
// aggregation, and whole-tree compliance analysis.
package engine

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
	"github.com/yenhunghuang/license-compliance-copilot/pkg/logger"
)

const (
	defaultMaxPathDepth    = 3
	defaultParallelWorkers = 4
	defaultCacheSize       = 1024
)

// Options tunes engine behavior. Zero values select the defaults.
type Options struct {
	MaxPathDepth    int
	ParallelWorkers int
	CacheSize       int
}

// Engine answers compatibility, obligation, and compliance queries over a
// knowledge graph. Queries are pure with respect to the graph, so an engine
// is safe for concurrent use once ingestion has finished.
type Engine struct {
	store *graph.Store
	log   *logger.Logger

	maxPathDepth int
	workers      int

	cacheMu     sync.Mutex
	compatCache *lru.Cache[string, *CompatibilityResult]
	cacheStamp  time.Time
}

// New creates an engine over the given store.
func New(store *graph.Store, log *logger.Logger, opts Options) *Engine {
	if log == nil {
		log = logger.New()
	}
	if opts.MaxPathDepth <= 0 {
		opts.MaxPathDepth = defaultMaxPathDepth
	}
	if opts.ParallelWorkers <= 0 {
		opts.ParallelWorkers = defaultParallelWorkers
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, _ := lru.New[string, *CompatibilityResult](opts.CacheSize)

	return &Engine{
		store:        store,
		log:          log,
		maxPathDepth: opts.MaxPathDepth,
		workers:      opts.ParallelWorkers,
		compatCache:  cache,
	}
}

// Store exposes the underlying knowledge graph.
func (e *Engine) Store() *graph.Store { return e.store }

// AddLicense ingests a license node.
func (e *Engine) AddLicense(node *graph.LicenseNode) error {
	return e.store.AddLicense(node)
}

// AddObligation ingests an obligation node.
func (e *Engine) AddObligation(node *graph.ObligationNode) error {
	return e.store.AddObligation(node)
}

// AddEdge ingests a graph edge.
func (e *Engine) AddEdge(edge graph.Edge) error {
	return e.store.AddEdge(edge)
}

// Clear atomically empties the knowledge graph and the result cache.
func (e *Engine) Clear() {
	e.store.Clear()
	e.cacheMu.Lock()
	e.compatCache.Purge()
	e.cacheStamp = time.Time{}
	e.cacheMu.Unlock()
}

// GetStatistics returns knowledge-graph summary counters.
func (e *Engine) GetStatistics() graph.Statistics {
	return e.store.GetStatistics()
}

// cachedResult returns a prior pairwise result. The cache is tied to the
// graph's LastUpdated stamp; any mutation since the last fill purges it.
func (e *Engine) cachedResult(key string) (*CompatibilityResult, bool) {
	stamp := e.store.LastUpdated()
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	if !stamp.Equal(e.cacheStamp) {
		e.compatCache.Purge()
		e.cacheStamp = stamp
		return nil, false
	}
	return e.compatCache.Get(key)
}

func (e *Engine) storeResult(key string, result *CompatibilityResult) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.compatCache.Add(key, result)
}

// LicenseDetails bundles everything the graph knows about one license.
type LicenseDetails struct {
	License     *graph.LicenseNode         `json:"license"`
	Obligations []LicenseObligation        `json:"obligations"`
	CompatEdges []*graph.CompatibilityEdge `json:"compatibility_edges,omitempty"`
	Annotations []*graph.AnnotationEdge    `json:"annotations,omitempty"`
}

// GetLicenseDetails returns the license node together with its obligations
// and direct compatibility relations. The second return is false when the
// license is not in the graph.
func (e *Engine) GetLicenseDetails(licenseID string) (*LicenseDetails, bool) {
	node, ok := e.store.GetLicense(licenseID)
	if !ok {
		return nil, false
	}
	details := &LicenseDetails{
		License:     node,
		Obligations: e.GetObligationsForLicense(node.ID),
	}
	for _, edge := range e.store.OutgoingEdges(node.ID, graph.EdgeKindCompatibility) {
		if ce, ok := edge.(*graph.CompatibilityEdge); ok {
			details.CompatEdges = append(details.CompatEdges, ce)
		}
	}
	for _, edge := range e.store.OutgoingEdges(node.ID,
		graph.EdgeKindRight, graph.EdgeKindCondition, graph.EdgeKindLimitation,
		graph.EdgeKindUseCaseTrigger, graph.EdgeKindUseCaseExemption) {
		if ae, ok := edge.(*graph.AnnotationEdge); ok {
			details.Annotations = append(details.Annotations, ae)
		}
	}
	return details, true
}
