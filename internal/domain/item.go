package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSubsection is used whenever an item carries no explicit
// subsection label.
const DefaultSubsection = "Subsection 1"

// SelectedItem is a chosen catalog row annotated with the table and room
// it belongs to, plus quantity and notes. Cells are copied from the
// source row at selection time, so editing the item never touches the
// imported table.
type SelectedItem struct {
	Table      string            `json:"table"`
	Room       string            `json:"room"`
	Subsection string            `json:"subsection,omitempty"`
	RowNumber  int               `json:"row_number"`
	Quantity   int               `json:"quantity"`
	Notes      string            `json:"notes"`
	Cells      map[string]string `json:"cells"`
}

func NewSelectedItem(row Row, table, room, subsection string) *SelectedItem {
	cells := make(map[string]string, len(row.Cells))
	for k, v := range row.Cells {
		cells[k] = v
	}
	return &SelectedItem{
		Table:      table,
		Room:       room,
		Subsection: subsection,
		RowNumber:  row.RowNumber,
		Quantity:   1,
		Cells:      cells,
	}
}

// Clone returns a copy safe to hand outside the session lock.
func (it *SelectedItem) Clone() *SelectedItem {
	out := *it
	out.Cells = make(map[string]string, len(it.Cells))
	for k, v := range it.Cells {
		out.Cells[k] = v
	}
	return &out
}

func (it *SelectedItem) SubsectionOrDefault() string {
	if it.Subsection == "" {
		return DefaultSubsection
	}
	return it.Subsection
}

// CoerceQuantity normalizes user input to an integer >= 1, defaulting to
// 1 on anything unparseable. JSON numbers arrive as float64.
func CoerceQuantity(v any) int {
	switch q := v.(type) {
	case nil:
		return 1
	case float64:
		if q >= 1 {
			return int(q)
		}
		return 1
	case int:
		if q >= 1 {
			return q
		}
		return 1
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil || n < 1 {
			return 1
		}
		return n
	default:
		n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(q)))
		if err != nil || n < 1 {
			return 1
		}
		return n
	}
}
