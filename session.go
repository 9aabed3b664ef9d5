package clustergen

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUnknownCluster = errors.New("unknown cluster")

// Session is the state of one user session: loaded tables, derived cluster statistics,
// per-cluster choices and the spec store. Maps are never edited in place; every change
// swaps in a modified clone, so snapshots handed out earlier stay valid.
type Session struct {
	mu sync.RWMutex

	id             string
	interpretation *RecordTable
	assignments    *RecordTable
	clusters       []ClusterStats

	selected    ClusterID
	hasSelected bool

	approaches map[ClusterID]Approach
	tokens     map[ClusterID]TrendTokens
	specs      map[ClusterID]GenerationSpec

	lastBuilt    ClusterID
	hasLastBuilt bool
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{
		id:         uuid.NewString(),
		approaches: map[ClusterID]Approach{},
		tokens:     map[ClusterID]TrendTokens{},
		specs:      map[ClusterID]GenerationSpec{},
	}
}

// ID identifies the session in logs
func (s *Session) ID() string {
	return s.id
}

// LoadInterpretation replaces the cluster statistics with a full recompute from table.
// Specs built earlier are kept as they were, even when their source numbers changed.
func (s *Session) LoadInterpretation(table *RecordTable) error {
	if table == nil || !table.HasColumn(FieldCluster) {
		return ErrMissingClusterColumn
	}
	clusters := AggregateClusters(table.Rows)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interpretation = table
	s.clusters = clusters
	if s.hasSelected && indexOfCluster(clusters, s.selected) < 0 {
		s.hasSelected = false
	}

	if stale := s.staleSpecIDs(); len(stale) > 0 {
		logger.Warn("⚠️  Existing specs were built from a previous table and were not regenerated",
			zap.String("session", s.id),
			zap.Stringers("clusters", stale))
	}
	logger.Info("📥 Interpretation table loaded",
		zap.String("session", s.id),
		zap.String("table", table.Name),
		zap.Int("rows", len(table.Rows)),
		zap.Int("clusters", len(clusters)))
	return nil
}

func (s *Session) staleSpecIDs() []ClusterID {
	ids := make([]ClusterID, 0, len(s.specs))
	for id := range s.specs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// LoadAssignments keeps the cluster assignment table for informational counts
func (s *Session) LoadAssignments(table *RecordTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = table
	if table != nil {
		logger.Info("📥 Assignment table loaded",
			zap.String("session", s.id),
			zap.String("table", table.Name),
			zap.Int("rows", len(table.Rows)))
	}
}

// AssignmentCount returns the number of rows in the assignment table
func (s *Session) AssignmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.assignments == nil {
		return 0
	}
	return len(s.assignments.Rows)
}

// VideoCount returns the number of rows in the interpretation table
func (s *Session) VideoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.interpretation == nil {
		return 0
	}
	return len(s.interpretation.Rows)
}

// Clusters returns the current cluster statistics, sorted by id
func (s *Session) Clusters() []ClusterStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusters
}

// Cluster returns the statistics of one cluster
func (s *Session) Cluster(id ClusterID) (ClusterStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfCluster(s.clusters, id)
	if i < 0 {
		return ClusterStats{}, false
	}
	return s.clusters[i], true
}

// Radar normalizes the cluster against every loaded cluster
func (s *Session) Radar(id ClusterID) (RadarScores, bool) {
	scores, ok := NormalizeRadar(s.Clusters())[id]
	return scores, ok
}

// Suggestion returns the advisory approach for a cluster
func (s *Session) Suggestion(id ClusterID) (ApproachSuggestion, bool) {
	scores, ok := s.Radar(id)
	if !ok {
		return ApproachSuggestion{}, false
	}
	return SuggestApproach(scores), true
}

// SelectCluster sets the cluster in focus
func (s *Session) SelectCluster(id ClusterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOfCluster(s.clusters, id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCluster, id)
	}
	s.selected, s.hasSelected = id, true
	return nil
}

// Selected returns the cluster in focus
func (s *Session) Selected() (ClusterID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasSelected
}

// SetApproach records the user's approach for a cluster
func (s *Session) SetApproach(id ClusterID, approach Approach) error {
	if !approach.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownApproach, approach)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOfCluster(s.clusters, id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCluster, id)
	}
	s.approaches = withEntry(s.approaches, id, approach)
	return nil
}

// AcceptSuggestion stores the classifier's suggestion as the cluster's approach
func (s *Session) AcceptSuggestion(id ClusterID) (Approach, error) {
	suggestion, ok := s.Suggestion(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCluster, id)
	}
	if err := s.SetApproach(id, suggestion.Approach); err != nil {
		return "", err
	}
	return suggestion.Approach, nil
}

// ApproachFor returns the chosen approach of a cluster
func (s *Session) ApproachFor(id ClusterID) (Approach, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.approaches[id]
	return a, ok
}

// AddToken adds a trend token to a cluster. Blank, duplicate or fourth tokens are ignored.
func (s *Session) AddToken(id ClusterID, token string) TrendTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.tokens[id].Add(token)
	s.tokens = withEntry(s.tokens, id, next)
	return next
}

// RemoveToken removes a trend token from a cluster
func (s *Session) RemoveToken(id ClusterID, token string) TrendTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.tokens[id].Remove(token)
	s.tokens = withEntry(s.tokens, id, next)
	return next
}

// Tokens returns a cluster's trend tokens
func (s *Session) Tokens(id ClusterID) TrendTokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[id].clone()
}

// Generate builds the spec for a cluster from its chosen approach and tokens, stores it
// in place of any previous spec and marks the cluster as the last one built.
func (s *Session) Generate(id ClusterID) (GenerationSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfCluster(s.clusters, id)
	if i < 0 {
		return GenerationSpec{}, fmt.Errorf("%w: %s", ErrUnknownCluster, id)
	}
	approach, ok := s.approaches[id]
	if !ok {
		return GenerationSpec{}, ErrApproachRequired
	}
	spec, err := BuildSpec(s.clusters[i], approach, s.tokens[id])
	if err != nil {
		return GenerationSpec{}, fmt.Errorf("failed to build spec for cluster %s: %w", id, err)
	}

	s.specs = withEntry(s.specs, id, spec)
	s.lastBuilt, s.hasLastBuilt = id, true
	logger.Info("🧩 Generation spec built",
		zap.String("session", s.id),
		zap.Stringer("cluster", id),
		zap.String("approach", string(approach)),
		zap.Int("tokens", len(spec.TrendTokens.Tokens)))
	return spec, nil
}

// Specs returns a snapshot of the spec store
func (s *Session) Specs() map[ClusterID]GenerationSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.specs)
}

// RestoreSpecs puts specs from an earlier export back into the store, together with the
// approach and tokens they were built with. Specs for clusters that are not loaded are
// skipped and returned.
func (s *Session) RestoreSpecs(specs map[ClusterID]GenerationSpec) []ClusterID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var skipped []ClusterID
	next := maps.Clone(s.specs)
	approaches := maps.Clone(s.approaches)
	tokens := maps.Clone(s.tokens)
	for id, spec := range specs {
		if indexOfCluster(s.clusters, id) < 0 {
			skipped = append(skipped, id)
			continue
		}
		next[id] = spec
		if spec.Approach.Valid() {
			approaches[id] = spec.Approach
		}
		tokens[id] = NewTrendTokens(spec.TrendTokens.Tokens...)
	}
	s.specs, s.approaches, s.tokens = next, approaches, tokens

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Less(skipped[j]) })
	if len(skipped) > 0 {
		logger.Warn("⚠️  Skipped exported specs for clusters that are not loaded",
			zap.String("session", s.id),
			zap.Stringers("clusters", skipped))
	}
	return skipped
}

// LastBuilt returns the most recently built cluster
func (s *Session) LastBuilt() (ClusterID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBuilt, s.hasLastBuilt
}

func indexOfCluster(clusters []ClusterStats, id ClusterID) int {
	for i, c := range clusters {
		if c.Cluster == id {
			return i
		}
	}
	return -1
}

// withEntry returns a clone of m with k set to v
func withEntry[K comparable, V any](m map[K]V, k K, v V) map[K]V {
	next := maps.Clone(m)
	if next == nil {
		next = make(map[K]V, 1)
	}
	next[k] = v
	return next
}
