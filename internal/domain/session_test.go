package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeRooms(t *testing.T) {
	s := NewSession("x")
	s.Bedrooms = []string{"Bedroom 1", "Bedroom 2"}
	s.Bathrooms = []string{"Bath 1", "Bedroom 1"}
	s.ExtraRooms = []string{"Office", "", "Office"}
	s.RecomputeRooms()

	// Duplicates collapse, first appearance wins, blanks are dropped.
	assert.Equal(t, []string{"Bedroom 1", "Bedroom 2", "Bath 1", "Office"}, s.Rooms)
	assert.True(t, s.HasRoom("Office"))
	assert.False(t, s.HasRoom("Unassigned"))
}

func TestGenerateRooms(t *testing.T) {
	assert.Equal(t, []string{"Bedroom 1", "Bedroom 2", "Bedroom 3"}, GenerateBedrooms(3))
	assert.Equal(t, []string{"Bath 1"}, GenerateBathrooms(1))
	assert.Empty(t, GenerateBedrooms(0))
}

func TestSessionClone(t *testing.T) {
	s := NewSession("x")
	s.Bedrooms = []string{"Bedroom 1"}
	s.RecomputeRooms()
	s.Tables = map[string]*Table{
		"Catalog": {
			Name:    "Catalog",
			Headers: []string{"SKU"},
			Rows:    []Row{{RowNumber: 2, Cells: map[string]string{"SKU": "A1"}}},
		},
	}
	s.TableOrder = []string{"Catalog"}
	s.SelectedItems = []*SelectedItem{
		NewSelectedItem(s.Tables["Catalog"].Rows[0], "Catalog", "Bedroom 1", ""),
	}

	c := s.Clone()
	c.Rooms[0] = "mutated"
	c.Tables["Catalog"].Rows[0].Cells["SKU"] = "mutated"
	c.SelectedItems[0].Cells["SKU"] = "mutated"
	c.SelectedItems[0].Quantity = 99

	assert.Equal(t, "Bedroom 1", s.Rooms[0])
	assert.Equal(t, "A1", s.Tables["Catalog"].Rows[0].Cells["SKU"])
	assert.Equal(t, "A1", s.SelectedItems[0].Cells["SKU"])
	assert.Equal(t, 1, s.SelectedItems[0].Quantity)
}

func TestCoerceQuantity(t *testing.T) {
	assert.Equal(t, 1, CoerceQuantity(nil))
	assert.Equal(t, 3, CoerceQuantity(float64(3)))
	assert.Equal(t, 1, CoerceQuantity(float64(0)))
	assert.Equal(t, 2, CoerceQuantity(2))
	assert.Equal(t, 1, CoerceQuantity(-5))
	assert.Equal(t, 4, CoerceQuantity(" 4 "))
	assert.Equal(t, 1, CoerceQuantity("banana"))
	assert.Equal(t, 1, CoerceQuantity(""))
	assert.Equal(t, 1, CoerceQuantity(true))
}

func TestSubsectionOrDefault(t *testing.T) {
	assert.Equal(t, DefaultSubsection, (&SelectedItem{}).SubsectionOrDefault())
	assert.Equal(t, "Subsection 2", (&SelectedItem{Subsection: "Subsection 2"}).SubsectionOrDefault())
}

func TestNewSelectedItemCopiesCells(t *testing.T) {
	row := Row{RowNumber: 2, Cells: map[string]string{"SKU": "A1"}}
	it := NewSelectedItem(row, "Catalog", "Bedroom 1", "")
	it.Cells["SKU"] = "mutated"
	assert.Equal(t, "A1", row.Cells["SKU"])
}
