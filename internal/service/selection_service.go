package service

import (
	"context"
	"strings"
	"sync"

	"houseselect/internal/domain"
	"houseselect/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectionService owns the live sessions. Every mutation runs under
// the mutex, so it is atomic from the caller's point of view, then the
// session is persisted write-behind. A failed save is logged and
// swallowed: the in-memory session stays authoritative.
type SelectionService struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	repo     repository.SessionsRepo
	logger   *zap.Logger
}

func NewSelectionService(repo repository.SessionsRepo, logger *zap.Logger) *SelectionService {
	return &SelectionService{
		sessions: map[string]*domain.Session{},
		repo:     repo,
		logger:   logger,
	}
}

// session returns the live session for id, loading the persisted record
// on first access. Caller must hold s.mu.
func (s *SelectionService) session(ctx context.Context, id string) *domain.Session {
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess, err := s.repo.Load(ctx, id)
	if err != nil {
		s.logger.Warn("session load failed, starting fresh",
			zap.String("session_id", id), zap.Error(err))
	}
	if sess == nil {
		sess = domain.NewSession(id)
	}
	s.sessions[id] = sess
	return sess
}

// persist writes the session behind a mutation. Caller must hold s.mu.
func (s *SelectionService) persist(ctx context.Context, sess *domain.Session) {
	if err := s.repo.Save(ctx, sess); err != nil {
		s.logger.Error("session save failed",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// CreateSession mints a new empty session with a fresh ID.
func (s *SelectionService) CreateSession(ctx context.Context) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	sess := domain.NewSession(id)
	s.sessions[id] = sess
	s.persist(ctx, sess)
	return sess.Clone()
}

// Snapshot returns a deep copy safe to read or export while the live
// session keeps mutating.
func (s *SelectionService) Snapshot(ctx context.Context, id string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(ctx, id).Clone()
}

// ApplyImport replaces the session's table pool with a freshly parsed
// workbook. The first table becomes active.
func (s *SelectionService) ApplyImport(ctx context.Context, id string, tables map[string]*domain.Table, order []string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	sess.Tables = tables
	sess.TableOrder = order
	if len(order) > 0 {
		sess.ActiveTable = order[0]
	} else {
		sess.ActiveTable = ""
	}
	Regroup(sess)
	s.persist(ctx, sess)
	return sess.Clone()
}

// SetHouse confirms the house name and floor plan and locks them.
func (s *SelectionService) SetHouse(ctx context.Context, id, name, floorPlan string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("house_name", "please enter a house name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	sess.HouseName = name
	sess.FloorPlan = floorPlan
	sess.HouseLocked = true
	s.persist(ctx, sess)
	return sess.Clone(), nil
}

// SetLayout regenerates the dynamic bedroom/bath lists, stores the
// extra-room selection, recomputes the room set and locks the layout.
func (s *SelectionService) SetLayout(ctx context.Context, id string, beds, baths int, extraRooms []string) (*domain.Session, error) {
	if beds < 0 || baths < 0 {
		return nil, domain.NewValidationError("layout", "beds and baths must be non-negative")
	}
	for _, r := range extraRooms {
		if !domain.IsKnownExtraRoom(r) {
			return nil, domain.NewValidationError("extra_rooms", "unknown extra room: "+r)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	sess.Beds = beds
	sess.Baths = baths
	sess.Bedrooms = domain.GenerateBedrooms(beds)
	sess.Bathrooms = domain.GenerateBathrooms(baths)
	sess.ExtraRooms = append([]string(nil), extraRooms...)
	sess.RecomputeRooms()
	sess.LayoutLocked = true
	Regroup(sess)
	s.persist(ctx, sess)
	return sess.Clone(), nil
}

// Unlock re-enables editing of a confirmed field group.
func (s *SelectionService) Unlock(ctx context.Context, id, target string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	switch target {
	case "house":
		sess.HouseLocked = false
	case "layout":
		sess.LayoutLocked = false
	default:
		return nil, domain.NewValidationError("target", `must be "house" or "layout"`)
	}
	s.persist(ctx, sess)
	return sess.Clone(), nil
}

// SelectRow copies the row at rowIndex of the named table into the
// selection, targeting the active room tab (else the first real room).
// Duplicates are allowed; the target room becomes the active tab.
func (s *SelectionService) SelectRow(ctx context.Context, id, table string, rowIndex int, subsection string) (*domain.SelectedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)

	t, err := resolveTable(sess, table)
	if err != nil {
		return nil, err
	}
	if rowIndex < 0 || rowIndex >= len(t.Rows) {
		return nil, domain.ErrRowNotFound
	}

	room := sess.ActiveRoomTab
	if room == "" || room == domain.RoomUnassigned || !sess.HasRoom(room) {
		room = firstRealRoom(sess)
		if room == "" {
			return nil, domain.ErrNoRoom
		}
	}

	item := domain.NewSelectedItem(t.Rows[rowIndex], t.Name, room, subsection)
	sess.SelectedItems = append(sess.SelectedItems, item)
	sess.ActiveRoomTab = room
	Regroup(sess)
	s.persist(ctx, sess)
	return item.Clone(), nil
}

// AssignRowToRoom selects a row (addressed by its stable row number)
// into an explicit room. Idempotent on (rowNumber, room, table): an
// existing match is returned instead of duplicated.
func (s *SelectionService) AssignRowToRoom(ctx context.Context, id, table string, rowNumber int, room, subsection string) (*domain.SelectedItem, error) {
	if strings.TrimSpace(room) == "" {
		return nil, domain.NewValidationError("room", "please choose a room")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)

	t, err := resolveTable(sess, table)
	if err != nil {
		return nil, err
	}
	row, ok := t.RowByNumber(rowNumber)
	if !ok {
		return nil, domain.ErrRowNotFound
	}

	for _, it := range sess.SelectedItems {
		if it.RowNumber == rowNumber && it.Room == room && itemTable(it, sess) == t.Name {
			s.persist(ctx, sess)
			return it.Clone(), nil
		}
	}

	item := domain.NewSelectedItem(row, t.Name, room, subsection)
	sess.SelectedItems = append(sess.SelectedItems, item)
	Regroup(sess)
	s.persist(ctx, sess)
	return item.Clone(), nil
}

// AutoAssign scans a table and selects every row whose first-column
// value names a configured room (case-insensitive). Rows already
// assigned to that room are skipped. Returns the number of new items.
func (s *SelectionService) AutoAssign(ctx context.Context, id, table string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)

	t, err := resolveTable(sess, table)
	if err != nil {
		return 0, err
	}
	if len(t.Headers) == 0 {
		return 0, nil
	}

	added := 0
	for _, row := range t.Rows {
		val := strings.TrimSpace(row.Cell(t.Headers[0]))
		if val == "" {
			continue
		}
		room := ""
		for _, r := range sess.Rooms {
			if strings.EqualFold(r, val) {
				room = r
				break
			}
		}
		if room == "" {
			continue
		}
		exists := false
		for _, it := range sess.SelectedItems {
			if it.RowNumber == row.RowNumber && it.Room == room && itemTable(it, sess) == t.Name {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		sess.SelectedItems = append(sess.SelectedItems, domain.NewSelectedItem(row, t.Name, room, ""))
		added++
	}
	if added > 0 {
		Regroup(sess)
	}
	s.persist(ctx, sess)
	return added, nil
}

// DeleteItem removes the first item matching the exact tuple
// (rowNumber, room, table, subsection-or-default). The legacy
// rowNumber-only fallback fires only when it cannot be wrong: exactly
// one selected item carries that row number. Idempotent.
func (s *SelectionService) DeleteItem(ctx context.Context, id string, rowNumber int, room, table, subsection string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)

	tableName := table
	if tableName == "" {
		tableName = sess.ActiveTable
	}
	sub := subsection
	if sub == "" {
		sub = domain.DefaultSubsection
	}

	idx := -1
	for i, it := range sess.SelectedItems {
		if it.RowNumber == rowNumber && it.Room == room &&
			itemTable(it, sess) == tableName && it.SubsectionOrDefault() == sub {
			idx = i
			break
		}
	}
	if idx == -1 {
		only := -1
		for i, it := range sess.SelectedItems {
			if it.RowNumber != rowNumber {
				continue
			}
			if only != -1 {
				only = -1
				break
			}
			only = i
		}
		idx = only
	}
	if idx != -1 {
		sess.SelectedItems = append(sess.SelectedItems[:idx], sess.SelectedItems[idx+1:]...)
		Regroup(sess)
	}
	s.persist(ctx, sess)
	return sess.Clone(), nil
}

// UpdateItemQuantity sets the quantity of an already-selected item,
// coercing the raw value to an integer >= 1 (1 on parse failure).
func (s *SelectionService) UpdateItemQuantity(ctx context.Context, id string, rowNumber int, room, table, subsection string, raw any) (*domain.SelectedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	it := findItem(sess, rowNumber, room, table, subsection)
	if it == nil {
		return nil, domain.ErrItemNotFound
	}
	it.Quantity = domain.CoerceQuantity(raw)
	s.persist(ctx, sess)
	return it.Clone(), nil
}

// UpdateItemNotes sets the notes of an already-selected item.
func (s *SelectionService) UpdateItemNotes(ctx context.Context, id string, rowNumber int, room, table, subsection, notes string) (*domain.SelectedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	it := findItem(sess, rowNumber, room, table, subsection)
	if it == nil {
		return nil, domain.ErrItemNotFound
	}
	it.Notes = notes
	s.persist(ctx, sess)
	return it.Clone(), nil
}

// SetActiveTabs switches the active table and/or room tab. The regroup
// re-derives both, so an invalid choice falls back instead of sticking.
func (s *SelectionService) SetActiveTabs(ctx context.Context, id, table, room string) (*GroupedView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	if table != "" {
		if _, ok := sess.Table(table); !ok {
			return nil, domain.ErrTableNotFound
		}
		sess.ActiveTable = table
	}
	if room != "" {
		sess.ActiveRoomTab = room
	}
	Regroup(sess)
	s.persist(ctx, sess)
	// Re-project over a snapshot so the returned view does not alias
	// live items.
	return Regroup(sess.Clone()), nil
}

// Groups recomputes the display projection for the session.
func (s *SelectionService) Groups(ctx context.Context, id string) *GroupedView {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(ctx, id)
	Regroup(sess)
	return Regroup(sess.Clone())
}

// Reset starts a new project: the persisted record is cleared and a
// fresh session replaces the live one.
func (s *SelectionService) Reset(ctx context.Context, id string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("session delete failed",
			zap.String("session_id", id), zap.Error(err))
	}
	sess := domain.NewSession(id)
	s.sessions[id] = sess
	return sess.Clone()
}

func resolveTable(sess *domain.Session, name string) (*domain.Table, error) {
	if name == "" {
		name = sess.ActiveTable
	}
	t, ok := sess.Table(name)
	if !ok {
		return nil, domain.ErrTableNotFound
	}
	return t, nil
}

// itemTable resolves an item's owning table, defaulting missing
// references to the active table for pre-multi-table records.
func itemTable(it *domain.SelectedItem, sess *domain.Session) string {
	if it.Table != "" {
		return it.Table
	}
	return sess.ActiveTable
}

func firstRealRoom(sess *domain.Session) string {
	for _, r := range sess.Rooms {
		if r != domain.RoomUnassigned {
			return r
		}
	}
	return ""
}

func findItem(sess *domain.Session, rowNumber int, room, table, subsection string) *domain.SelectedItem {
	tableName := table
	if tableName == "" {
		tableName = sess.ActiveTable
	}
	sub := subsection
	if sub == "" {
		sub = domain.DefaultSubsection
	}
	for _, it := range sess.SelectedItems {
		if it.RowNumber == rowNumber && it.Room == room &&
			itemTable(it, sess) == tableName && it.SubsectionOrDefault() == sub {
			return it
		}
	}
	return nil
}
