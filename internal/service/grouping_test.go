package service

import (
	"testing"

	"houseselect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupingSession() *domain.Session {
	s := domain.NewSession("g")
	s.Bedrooms = []string{"Bedroom 1", "Bedroom 2"}
	s.Bathrooms = []string{"Bath 1"}
	s.RecomputeRooms()
	s.Tables = map[string]*domain.Table{
		"Plumbing": {Name: "Plumbing", Headers: []string{"SKU"}},
		"Lighting": {Name: "Lighting", Headers: []string{"Model"}},
	}
	s.TableOrder = []string{"Plumbing", "Lighting"}
	s.ActiveTable = "Plumbing"
	return s
}

func groupingItem(table, room string, rowNumber int) *domain.SelectedItem {
	return &domain.SelectedItem{Table: table, Room: room, RowNumber: rowNumber, Quantity: 1}
}

func TestRegroup_PartitionsEveryItemExactlyOnce(t *testing.T) {
	s := groupingSession()
	s.SelectedItems = []*domain.SelectedItem{
		groupingItem("Plumbing", "Bedroom 1", 2),
		groupingItem("Plumbing", "Bath 1", 3),
		groupingItem("Lighting", "Bedroom 1", 2),
		groupingItem("Plumbing", "Attic", 4),
	}

	view := Regroup(s)

	total := 0
	for _, g := range view.Tables {
		for _, items := range g.Rooms {
			total += len(items)
		}
	}
	assert.Equal(t, len(s.SelectedItems), total)

	plumbing := view.Tables["Plumbing"]
	require.NotNil(t, plumbing)
	assert.Len(t, plumbing.Rooms["Bedroom 1"], 1)
	assert.Len(t, plumbing.Rooms["Bath 1"], 1)
	// Unknown room groups under Unassigned but keeps its stored value.
	require.Len(t, plumbing.Rooms[domain.RoomUnassigned], 1)
	assert.Equal(t, "Attic", plumbing.Rooms[domain.RoomUnassigned][0].Room)
}

func TestRegroup_BucketOrderMatchesConfiguration(t *testing.T) {
	s := groupingSession()
	view := Regroup(s)

	assert.Equal(t, []string{"Plumbing", "Lighting"}, view.TableOrder)
	g := view.Tables["Plumbing"]
	require.NotNil(t, g)
	assert.Equal(t, []string{"Bedroom 1", "Bedroom 2", "Bath 1", domain.RoomUnassigned}, g.RoomOrder)
}

func TestRegroup_ItemOrderIsSelectionOrder(t *testing.T) {
	s := groupingSession()
	s.SelectedItems = []*domain.SelectedItem{
		groupingItem("Plumbing", "Bedroom 1", 5),
		groupingItem("Plumbing", "Bedroom 1", 2),
		groupingItem("Plumbing", "Bedroom 1", 9),
	}

	view := Regroup(s)
	items := view.Tables["Plumbing"].Rooms["Bedroom 1"]
	require.Len(t, items, 3)
	assert.Equal(t, []int{5, 2, 9}, []int{items[0].RowNumber, items[1].RowNumber, items[2].RowNumber})
}

func TestRegroup_CreatesTableOnDemand(t *testing.T) {
	s := groupingSession()
	// Item referencing a table absent from the pool (stale selection).
	s.SelectedItems = []*domain.SelectedItem{groupingItem("Retired", "Bedroom 1", 2)}

	view := Regroup(s)
	require.Contains(t, view.Tables, "Retired")
	assert.Len(t, view.Tables["Retired"].Rooms["Bedroom 1"], 1)
}

func TestRegroup_ItemWithoutTableFallsToActive(t *testing.T) {
	s := groupingSession()
	s.SelectedItems = []*domain.SelectedItem{groupingItem("", "Bedroom 1", 2)}

	view := Regroup(s)
	assert.Len(t, view.Tables["Plumbing"].Rooms["Bedroom 1"], 1)
}

func TestRegroup_TabReselection(t *testing.T) {
	s := groupingSession()
	s.ActiveTable = "Vanished"
	s.ActiveRoomTab = "Nowhere"
	s.SelectedItems = []*domain.SelectedItem{groupingItem("Plumbing", "Bath 1", 2)}

	view := Regroup(s)
	// Vanished table falls back to the first available, room tab to the
	// first room with items.
	assert.Equal(t, "Plumbing", view.ActiveTable)
	assert.Equal(t, "Bath 1", view.ActiveRoomTab)

	// A second pass changes nothing.
	again := Regroup(s)
	assert.Equal(t, view.ActiveTable, again.ActiveTable)
	assert.Equal(t, view.ActiveRoomTab, again.ActiveRoomTab)
}

func TestRegroup_KeepsValidActiveTabs(t *testing.T) {
	s := groupingSession()
	s.ActiveTable = "Lighting"
	s.ActiveRoomTab = "Bath 1"

	view := Regroup(s)
	assert.Equal(t, "Lighting", view.ActiveTable)
	assert.Equal(t, "Bath 1", view.ActiveRoomTab)
}

func TestRegroup_EmptySession(t *testing.T) {
	s := domain.NewSession("empty")
	view := Regroup(s)
	assert.Empty(t, view.Tables)
	assert.Equal(t, "", view.ActiveTable)
	assert.Equal(t, domain.RoomUnassigned, view.ActiveRoomTab)
}

func TestGroupBySubsection(t *testing.T) {
	items := []*domain.SelectedItem{
		{RowNumber: 2, Subsection: "Subsection 2"},
		{RowNumber: 3},
		{RowNumber: 4, Subsection: "Subsection 2"},
		{RowNumber: 5, Subsection: "Subsection 1"},
	}

	order, buckets := GroupBySubsection(items)
	assert.Equal(t, []string{"Subsection 1", "Subsection 2"}, order)
	require.Len(t, buckets["Subsection 1"], 2)
	// Missing subsection defaults, keeping selection order inside the bucket.
	assert.Equal(t, 3, buckets["Subsection 1"][0].RowNumber)
	assert.Equal(t, 5, buckets["Subsection 1"][1].RowNumber)
	assert.Len(t, buckets["Subsection 2"], 2)
}
