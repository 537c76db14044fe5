package retrieval

import "github.com/poiesic/askit/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type RetrievalMonitor interface {
	Start(query string)
	CacheHit(key string)
	AfterEmbedding(dimension int)
	AfterVectorSearch(ids []core.ID)
	AfterKeywordSearch(ids []core.ID)
	Degraded(path string, reason string)
	Finish(results []*core.ScoredResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                 {}
func (n *noopMonitor) CacheHit(_ string)              {}
func (n *noopMonitor) AfterEmbedding(_ int)           {}
func (n *noopMonitor) AfterVectorSearch(_ []core.ID)  {}
func (n *noopMonitor) AfterKeywordSearch(_ []core.ID) {}
func (n *noopMonitor) Degraded(_ string, _ string)    {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult)  {}
