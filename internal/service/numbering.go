package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lendops/query-management-api/internal/dao"
)

// queryNumberAllocator hands out globally increasing query numbers. It is
// seeded lazily from the highest persisted number and then advances in
// process memory. Uniqueness is best-effort across server instances; the
// database remains the source of truth for what was actually assigned.
type queryNumberAllocator struct {
	mu     sync.Mutex
	next   int64
	seeded bool
}

// allocate reserves n consecutive query numbers and returns the first
func (a *queryNumberAllocator) allocate(ctx context.Context, itemDAO *dao.QueryItemDAO, n int64) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.seeded {
		max, err := itemDAO.MaxQueryNumber(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to seed query number allocator: %w", err)
		}
		a.next = max + 1
		a.seeded = true
	}

	first := a.next
	a.next += n
	return first, nil
}
