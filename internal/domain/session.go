package domain

// Session is the whole configurator state for one client: house
// metadata, room configuration, imported tables and the selection list.
// It is persisted as a single JSON record after every mutation.
type Session struct {
	ID        string `json:"id"`
	HouseName string `json:"house_name"`
	FloorPlan string `json:"floor_plan"`

	Beds       int      `json:"beds"`
	Baths      int      `json:"baths"`
	Bedrooms   []string `json:"bedrooms"`
	Bathrooms  []string `json:"bathrooms"`
	ExtraRooms []string `json:"extra_rooms"`

	// Rooms is always the deduplicated union of bedrooms, bathrooms and
	// extra rooms in first-appearance order. Recomputed, never edited.
	Rooms []string `json:"rooms"`

	Tables     map[string]*Table `json:"tables"`
	TableOrder []string          `json:"table_order"`

	ActiveTable   string `json:"active_table"`
	ActiveRoomTab string `json:"active_room_tab"`

	SelectedItems []*SelectedItem `json:"selected_items"`

	// UI locking of confirmed fields. Pure view state, not a data
	// invariant.
	HouseLocked  bool `json:"house_locked"`
	LayoutLocked bool `json:"layout_locked"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		Tables: map[string]*Table{},
	}
}

// RecomputeRooms rebuilds the room list from its three sources with set
// semantics: duplicates collapse, first appearance wins the position.
func (s *Session) RecomputeRooms() {
	seen := map[string]bool{}
	rooms := make([]string, 0, len(s.Bedrooms)+len(s.Bathrooms)+len(s.ExtraRooms))
	for _, group := range [][]string{s.Bedrooms, s.Bathrooms, s.ExtraRooms} {
		for _, r := range group {
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			rooms = append(rooms, r)
		}
	}
	s.Rooms = rooms
}

func (s *Session) Table(name string) (*Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

func (s *Session) HasRoom(name string) bool {
	for _, r := range s.Rooms {
		if r == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can read or export a snapshot
// while the live session keeps mutating.
func (s *Session) Clone() *Session {
	out := *s
	out.Bedrooms = append([]string(nil), s.Bedrooms...)
	out.Bathrooms = append([]string(nil), s.Bathrooms...)
	out.ExtraRooms = append([]string(nil), s.ExtraRooms...)
	out.Rooms = append([]string(nil), s.Rooms...)
	out.TableOrder = append([]string(nil), s.TableOrder...)

	out.Tables = make(map[string]*Table, len(s.Tables))
	for name, t := range s.Tables {
		ct := &Table{Name: t.Name, Headers: append([]string(nil), t.Headers...)}
		ct.Rows = make([]Row, len(t.Rows))
		for i, row := range t.Rows {
			cells := make(map[string]string, len(row.Cells))
			for k, v := range row.Cells {
				cells[k] = v
			}
			ct.Rows[i] = Row{RowNumber: row.RowNumber, Cells: cells}
		}
		out.Tables[name] = ct
	}

	out.SelectedItems = make([]*SelectedItem, len(s.SelectedItems))
	for i, it := range s.SelectedItems {
		ci := *it
		ci.Cells = make(map[string]string, len(it.Cells))
		for k, v := range it.Cells {
			ci.Cells[k] = v
		}
		out.SelectedItems[i] = &ci
	}
	return &out
}
