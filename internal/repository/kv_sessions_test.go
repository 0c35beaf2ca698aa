package repository

import (
	"context"
	"testing"
	"time"

	"houseselect/internal/domain"
	"houseselect/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*KVSessionsRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewKVSessionsRepo(store.NewRedisKV(client), "selection:session:", ttl, zap.NewNop()), mr
}

func sampleSession() *domain.Session {
	s := domain.NewSession("abc")
	s.HouseName = "Maple"
	s.FloorPlan = "Olympia"
	s.Beds = 2
	s.Baths = 1
	s.Bedrooms = []string{"Bedroom 1", "Bedroom 2"}
	s.Bathrooms = []string{"Bath 1"}
	s.ExtraRooms = []string{"Office"}
	s.RecomputeRooms()
	s.Tables = map[string]*domain.Table{
		"Catalog": {
			Name:    "Catalog",
			Headers: []string{"SKU", "Desc"},
			Rows: []domain.Row{
				{RowNumber: 2, Cells: map[string]string{"SKU": "A1", "Desc": "Sink"}},
			},
		},
	}
	s.TableOrder = []string{"Catalog"}
	s.ActiveTable = "Catalog"
	s.ActiveRoomTab = "Bedroom 1"
	s.HouseLocked = true
	s.LayoutLocked = true
	s.SelectedItems = []*domain.SelectedItem{
		{
			Table:      "Catalog",
			Room:       "Bedroom 1",
			Subsection: "Subsection 2",
			RowNumber:  2,
			Quantity:   3,
			Notes:      "brushed nickel",
			Cells:      map[string]string{"SKU": "A1", "Desc": "Sink"},
		},
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSession()))

	got, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maple", got.HouseName)
	assert.Equal(t, "Olympia", got.FloorPlan)
	assert.Equal(t, []string{"Bedroom 1", "Bedroom 2", "Bath 1", "Office"}, got.Rooms)
	assert.True(t, got.HouseLocked)
	assert.True(t, got.LayoutLocked)
	assert.Equal(t, "Bedroom 1", got.ActiveRoomTab)
	require.NotNil(t, got.Tables["Catalog"])
	assert.Equal(t, []string{"SKU", "Desc"}, got.Tables["Catalog"].Headers)
	require.Len(t, got.SelectedItems, 1)
	it := got.SelectedItems[0]
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, "brushed nickel", it.Notes)
	assert.Equal(t, "Subsection 2", it.Subsection)
	assert.Equal(t, "Sink", it.Cells["Desc"])
}

func TestLoadMissingSession(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)
	got, err := repo.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadCorruptRecord(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)
	require.NoError(t, mr.Set("selection:session:abc", "{not json"))

	got, err := repo.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleSession()))
	require.NoError(t, repo.Delete(ctx, "abc"))

	got, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent record is not an error.
	require.NoError(t, repo.Delete(ctx, "abc"))
}

func TestSaveAppliesTTL(t *testing.T) {
	repo, mr := newRedisRepo(t, 2*time.Hour)
	require.NoError(t, repo.Save(context.Background(), sampleSession()))
	assert.Equal(t, 2*time.Hour, mr.TTL("selection:session:abc"))
}

func TestLoadNormalizesLegacyRecords(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)
	// A record written before items carried table references or explicit
	// table order.
	legacy := `{
		"house_name": "Maple",
		"bedrooms": ["Bedroom 1"],
		"tables": {"Catalog": {"name": "Catalog", "headers": ["SKU"], "rows": []}},
		"active_table": "",
		"selected_items": [
			{"room": "Bedroom 1", "row_number": 2, "quantity": 0}
		]
	}`
	require.NoError(t, mr.Set("selection:session:old", legacy))

	got, err := repo.Load(context.Background(), "old")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "old", got.ID)
	assert.Equal(t, []string{"Catalog"}, got.TableOrder)
	assert.Equal(t, "Catalog", got.ActiveTable)
	assert.Equal(t, []string{"Bedroom 1"}, got.Rooms)
	require.Len(t, got.SelectedItems, 1)
	assert.Equal(t, "Catalog", got.SelectedItems[0].Table)
	assert.Equal(t, 1, got.SelectedItems[0].Quantity)
	assert.NotNil(t, got.SelectedItems[0].Cells)
}

func TestMemoryKVBackedRepo(t *testing.T) {
	repo := NewKVSessionsRepo(store.NewMemoryKV(), "selection:session:", 0, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleSession()))
	got, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maple", got.HouseName)
}
