package service

import (
	"sort"

	"houseselect/internal/domain"
)

// GroupedView is the display projection: tables in configuration order,
// each holding rooms in configuration order with items in selection
// order. Every selected item lands in exactly one (table, room) bucket.
type GroupedView struct {
	ActiveTable   string                 `json:"active_table"`
	ActiveRoomTab string                 `json:"active_room_tab"`
	TableOrder    []string               `json:"table_order"`
	Tables        map[string]*TableGroup `json:"tables"`
}

type TableGroup struct {
	RoomOrder []string                          `json:"room_order"`
	Rooms     map[string][]*domain.SelectedItem `json:"rooms"`
}

// Regroup partitions the selection and re-derives the active tabs from
// current data. It runs after every mutation, not only on navigation,
// so the tabs can never drift from what is actually selectable.
func Regroup(s *domain.Session) *GroupedView {
	view := &GroupedView{Tables: map[string]*TableGroup{}}

	for _, name := range s.TableOrder {
		ensureTableGroup(view, s, name)
	}

	for _, it := range s.SelectedItems {
		table := it.Table
		if table == "" {
			table = s.ActiveTable
		}
		g := ensureTableGroup(view, s, table)
		room := it.Room
		if _, ok := g.Rooms[room]; !ok {
			// Stored room value stays on the item; only grouping is
			// redirected.
			room = domain.RoomUnassigned
		}
		g.Rooms[room] = append(g.Rooms[room], it)
	}

	// Active table: keep if still present, else first available.
	if _, ok := view.Tables[s.ActiveTable]; !ok {
		if len(view.TableOrder) > 0 {
			s.ActiveTable = view.TableOrder[0]
		} else {
			s.ActiveTable = ""
		}
	}

	// Active room tab within the active table: keep if present, else
	// first room with items, else first room, else Unassigned.
	var roomOrder []string
	if g, ok := view.Tables[s.ActiveTable]; ok {
		roomOrder = g.RoomOrder
	}
	if !contains(roomOrder, s.ActiveRoomTab) {
		s.ActiveRoomTab = ""
		if g, ok := view.Tables[s.ActiveTable]; ok {
			for _, r := range g.RoomOrder {
				if len(g.Rooms[r]) > 0 {
					s.ActiveRoomTab = r
					break
				}
			}
		}
		if s.ActiveRoomTab == "" {
			if len(roomOrder) > 0 {
				s.ActiveRoomTab = roomOrder[0]
			} else {
				s.ActiveRoomTab = domain.RoomUnassigned
			}
		}
	}

	view.ActiveTable = s.ActiveTable
	view.ActiveRoomTab = s.ActiveRoomTab
	return view
}

// ensureTableGroup initializes every known room (plus Unassigned) as an
// empty bucket. Tables referenced by an item but absent from the
// session are created on demand.
func ensureTableGroup(view *GroupedView, s *domain.Session, name string) *TableGroup {
	if g, ok := view.Tables[name]; ok {
		return g
	}
	g := &TableGroup{
		RoomOrder: make([]string, 0, len(s.Rooms)+1),
		Rooms:     map[string][]*domain.SelectedItem{},
	}
	for _, r := range s.Rooms {
		g.RoomOrder = append(g.RoomOrder, r)
		g.Rooms[r] = []*domain.SelectedItem{}
	}
	g.RoomOrder = append(g.RoomOrder, domain.RoomUnassigned)
	g.Rooms[domain.RoomUnassigned] = []*domain.SelectedItem{}
	view.Tables[name] = g
	view.TableOrder = append(view.TableOrder, name)
	return g
}

// GroupBySubsection buckets a room's items by subsection label. Bucket
// order is lexicographic by name, an intentional asymmetry from the
// insertion-ordered table/room grouping.
func GroupBySubsection(items []*domain.SelectedItem) ([]string, map[string][]*domain.SelectedItem) {
	buckets := map[string][]*domain.SelectedItem{}
	for _, it := range items {
		ss := it.SubsectionOrDefault()
		buckets[ss] = append(buckets[ss], it)
	}
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, buckets
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
