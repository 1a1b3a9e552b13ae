package cache

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendops/query-management-api/internal/models"
)

func newTestStore() *FallbackStore {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewFallbackStore(logger)
}

func sampleGroup(groupID, appNo, queryID string) *models.QueryGroup {
	return &models.QueryGroup{
		GroupID: groupID,
		AppNo:   appNo,
		Status:  models.StatusPending,
		Queries: []models.QueryItem{
			{QueryID: queryID, GroupID: groupID, Status: models.StatusPending},
		},
	}
}

func TestPutAndGetReturnsCopies(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "QRY-i1"))

	got, ok := store.Get("QRY-g1")
	require.True(t, ok)

	got.Status = models.StatusApproved
	got.Queries[0].Status = models.StatusApproved

	again, ok := store.Get("QRY-g1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, again.Status)
	assert.Equal(t, models.StatusPending, again.Queries[0].Status)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore()

	_, ok := store.Get("QRY-missing")
	assert.False(t, ok)
}

func TestFindItemExactMatch(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "QRY-i1"))

	group, item, ok := store.FindItem("QRY-i1")
	require.True(t, ok)
	assert.Equal(t, "QRY-g1", group.GroupID)
	assert.Equal(t, "QRY-i1", item.QueryID)
}

func TestFindItemNumericCoercion(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "42"))

	group, item, ok := store.FindItem("42.0")
	require.True(t, ok)
	assert.Equal(t, "QRY-g1", group.GroupID)
	assert.Equal(t, "42", item.QueryID)

	_, _, ok = store.FindItem("43")
	assert.False(t, ok)
}

func TestFindItemPrefersExactOverNumeric(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "042"))
	store.Put(sampleGroup("QRY-g2", "APP200", "42"))

	_, item, ok := store.FindItem("42")
	require.True(t, ok)
	assert.Equal(t, "42", item.QueryID)
}

func TestByAppNo(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "QRY-i1"))
	store.Put(sampleGroup("QRY-g2", "APP100", "QRY-i2"))
	store.Put(sampleGroup("QRY-g3", "APP200", "QRY-i3"))

	groups := store.ByAppNo("APP100")
	assert.Len(t, groups, 2)
	assert.Empty(t, store.ByAppNo("APP999"))
}

func TestInvalidateDropsSingleGroup(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "QRY-i1"))
	store.Put(sampleGroup("QRY-g2", "APP200", "QRY-i2"))

	store.Invalidate("QRY-g1")
	_, ok := store.Get("QRY-g1")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	store.Invalidate("QRY-missing")
	assert.Equal(t, 1, store.Len())
}

func TestSnapshot(t *testing.T) {
	store := newTestStore()
	store.Put(sampleGroup("QRY-g1", "APP100", "QRY-i1"))
	store.Put(sampleGroup("QRY-g2", "APP200", "QRY-i2"))

	snapshot := store.Snapshot()
	assert.Len(t, snapshot, 2)
}
