package cache

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lendops/query-management-api/internal/models"
)

// FallbackStore is an in-process snapshot of query groups, refreshed on
// every successful read and consulted when the database is unavailable.
// It lives inside the server process so an infrastructure outage cannot
// take it down with the database.
type FallbackStore struct {
	mu     sync.RWMutex
	groups map[string]models.QueryGroup
	logger *logrus.Logger
}

// NewFallbackStore creates an empty fallback store
func NewFallbackStore(logger *logrus.Logger) *FallbackStore {
	return &FallbackStore{
		groups: make(map[string]models.QueryGroup),
		logger: logger,
	}
}

// Put stores a copy of the group, replacing any previous snapshot
func (s *FallbackStore) Put(group *models.QueryGroup) {
	if group == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *group
	copied.Queries = append([]models.QueryItem(nil), group.Queries...)
	s.groups[group.GroupID] = copied
}

// PutAll stores copies of all given groups
func (s *FallbackStore) PutAll(groups []models.QueryGroup) {
	for i := range groups {
		s.Put(&groups[i])
	}
}

// Get returns a copy of the snapshot for a group ID
func (s *FallbackStore) Get(groupID string) (*models.QueryGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, false
	}

	copied := group
	copied.Queries = append([]models.QueryItem(nil), group.Queries...)
	return &copied, true
}

// FindItem locates a sub-query across all snapshots. Exact ID matches are
// preferred; when none exists, identifiers that compare equal after numeric
// coercion are accepted. Returns the owning group and the item.
func (s *FallbackStore) FindItem(id string) (*models.QueryGroup, *models.QueryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, group := range s.groups {
		for i := range group.Queries {
			if group.Queries[i].QueryID == id {
				return s.copyOut(group, i)
			}
		}
	}

	for _, group := range s.groups {
		for i := range group.Queries {
			if models.NumericallyEqual(group.Queries[i].QueryID, id) {
				s.logger.WithFields(logrus.Fields{
					"requested": id,
					"matched":   group.Queries[i].QueryID,
				}).Warn("Fallback store matched sub-query by numeric coercion")
				return s.copyOut(group, i)
			}
		}
	}

	return nil, nil, false
}

func (s *FallbackStore) copyOut(group models.QueryGroup, itemIdx int) (*models.QueryGroup, *models.QueryItem, bool) {
	copied := group
	copied.Queries = append([]models.QueryItem(nil), group.Queries...)
	return &copied, &copied.Queries[itemIdx], true
}

// ByAppNo returns copies of all snapshots for an application number
func (s *FallbackStore) ByAppNo(appNo string) []models.QueryGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.QueryGroup
	for _, group := range s.groups {
		if group.AppNo == appNo {
			copied := group
			copied.Queries = append([]models.QueryItem(nil), group.Queries...)
			result = append(result, copied)
		}
	}

	return result
}

// Snapshot returns copies of every cached group
func (s *FallbackStore) Snapshot() []models.QueryGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.QueryGroup, 0, len(s.groups))
	for _, group := range s.groups {
		copied := group
		copied.Queries = append([]models.QueryItem(nil), group.Queries...)
		result = append(result, copied)
	}

	return result
}

// Invalidate drops the snapshot for a group ID. Used when cached
// enrichment data is known to be stale.
func (s *FallbackStore) Invalidate(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.groups, groupID)
}

// Len returns the number of cached groups
func (s *FallbackStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.groups)
}
