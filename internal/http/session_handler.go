package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"houseselect/internal/domain"
	"houseselect/internal/service"

	"go.uber.org/zap"
)

// DefaultSessionID is used when a client does not address an explicit
// session, matching the one-session-per-browser model.
const DefaultSessionID = "default"

const maxJSONBody = 1 << 20

// SelectionHandler exposes the configurator over HTTP. It is pure view
// glue: parse, delegate, map errors.
type SelectionHandler struct {
	selection *service.SelectionService
	importer  *service.ImportService
	exporter  *service.ExportService
	maxUpload int64
	logger    *zap.Logger
}

func NewSelectionHandler(selection *service.SelectionService, importer *service.ImportService, exporter *service.ExportService, maxUpload int64, logger *zap.Logger) *SelectionHandler {
	return &SelectionHandler{
		selection: selection,
		importer:  importer,
		exporter:  exporter,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

func sessionID(r *http.Request) string {
	if id := r.URL.Query().Get("session_id"); id != "" {
		return id
	}
	if id := r.FormValue("session_id"); id != "" {
		return id
	}
	return DefaultSessionID
}

// writeErr maps the domain error taxonomy onto HTTP statuses. Anything
// unexpected is a 500 and gets logged; the session itself survives.
func (h *SelectionHandler) writeErr(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Fail(ve.Error()))
	case errors.Is(err, domain.ErrImport):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, domain.ErrTableNotFound),
		errors.Is(err, domain.ErrRowNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, domain.ErrNoRoom),
		errors.Is(err, domain.ErrEmptyExport):
		writeJSON(w, http.StatusConflict, Fail(err.Error()))
	default:
		h.logger.Error("unexpected handler error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

// POST /selection/api/v1/sessions
func (h *SelectionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.selection.CreateSession(r.Context())
	writeJSON(w, http.StatusOK, Ok(map[string]string{"session_id": sess.ID}))
}

// GET /selection/api/v1/session
func (h *SelectionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.selection.Snapshot(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, Ok(sess))
}

// GET /selection/api/v1/options
func (h *SelectionHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string][]string{
		"floor_plans": domain.FloorPlans,
		"extra_rooms": domain.ExtraRooms,
		"subsections": domain.Subsections,
	}))
}

type importResult struct {
	FileName    string         `json:"file_name,omitempty"`
	Tables      []string       `json:"tables"`
	ActiveTable string         `json:"active_table"`
	RowCounts   map[string]int `json:"row_counts"`
}

// POST /selection/api/v1/import (multipart, field "file")
func (h *SelectionHandler) ImportUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("upload too large or malformed"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeErr(w, domain.NewValidationError("file", "no file provided"))
		return
	}
	defer file.Close()

	tables, order, err := h.importer.ImportWorkbook(file)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	sess := h.selection.ApplyImport(r.Context(), sessionID(r), tables, order)
	writeJSON(w, http.StatusOK, Ok(importSummary(sess, header.Filename)))
}

// POST /selection/api/v1/import/url
func (h *SelectionHandler) ImportFromURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.writeErr(w, domain.NewValidationError("url", "url is required"))
		return
	}
	tables, order, err := h.importer.ImportFromURL(r.Context(), req.URL)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	sess := h.selection.ApplyImport(r.Context(), sessionID(r), tables, order)
	writeJSON(w, http.StatusOK, Ok(importSummary(sess, "")))
}

func importSummary(sess *domain.Session, fileName string) importResult {
	counts := make(map[string]int, len(sess.Tables))
	for name, t := range sess.Tables {
		counts[name] = len(t.Rows)
	}
	return importResult{
		FileName:    fileName,
		Tables:      sess.TableOrder,
		ActiveTable: sess.ActiveTable,
		RowCounts:   counts,
	}
}

// POST /selection/api/v1/house
func (h *SelectionHandler) SetHouse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseName string `json:"house_name"`
		FloorPlan string `json:"floor_plan"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sess, err := h.selection.SetHouse(r.Context(), sessionID(r), req.HouseName, req.FloorPlan)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

// POST /selection/api/v1/layout
func (h *SelectionHandler) SetLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Beds       int      `json:"beds"`
		Baths      int      `json:"baths"`
		ExtraRooms []string `json:"extra_rooms"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sess, err := h.selection.SetLayout(r.Context(), sessionID(r), req.Beds, req.Baths, req.ExtraRooms)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

// POST /selection/api/v1/unlock
func (h *SelectionHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sess, err := h.selection.Unlock(r.Context(), sessionID(r), req.Target)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

type itemRef struct {
	Table      string `json:"table"`
	Room       string `json:"room"`
	RowNumber  int    `json:"row_number"`
	Subsection string `json:"subsection"`
}

// POST /selection/api/v1/items/select
func (h *SelectionHandler) SelectRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table      string `json:"table"`
		RowIndex   int    `json:"row_index"`
		Subsection string `json:"subsection"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	item, err := h.selection.SelectRow(r.Context(), sessionID(r), req.Table, req.RowIndex, req.Subsection)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// POST /selection/api/v1/items/assign
func (h *SelectionHandler) AssignRowToRoom(w http.ResponseWriter, r *http.Request) {
	var req itemRef
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	item, err := h.selection.AssignRowToRoom(r.Context(), sessionID(r), req.Table, req.RowNumber, req.Room, req.Subsection)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// POST /selection/api/v1/items/auto-assign
func (h *SelectionHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table string `json:"table"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	added, err := h.selection.AutoAssign(r.Context(), sessionID(r), req.Table)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]int{"added": added}))
}

// POST /selection/api/v1/items/delete
func (h *SelectionHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req itemRef
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	sess, err := h.selection.DeleteItem(r.Context(), sessionID(r), req.RowNumber, req.Room, req.Table, req.Subsection)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

// POST /selection/api/v1/items/quantity
func (h *SelectionHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		itemRef
		Quantity any `json:"quantity"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	item, err := h.selection.UpdateItemQuantity(r.Context(), sessionID(r), req.RowNumber, req.Room, req.Table, req.Subsection, req.Quantity)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// POST /selection/api/v1/items/notes
func (h *SelectionHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		itemRef
		Notes string `json:"notes"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	item, err := h.selection.UpdateItemNotes(r.Context(), sessionID(r), req.RowNumber, req.Room, req.Table, req.Subsection, req.Notes)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// POST /selection/api/v1/tabs
func (h *SelectionHandler) SetTabs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table string `json:"table"`
		Room  string `json:"room"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	view, err := h.selection.SetActiveTabs(r.Context(), sessionID(r), req.Table, req.Room)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

type subsectionView struct {
	Order   []string                          `json:"order"`
	Buckets map[string][]*domain.SelectedItem `json:"buckets"`
}

type groupsResponse struct {
	View                  *service.GroupedView `json:"view"`
	ActiveRoomSubsections subsectionView       `json:"active_room_subsections"`
}

// GET /selection/api/v1/groups
func (h *SelectionHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	view := h.selection.Groups(r.Context(), sessionID(r))

	var activeItems []*domain.SelectedItem
	if g, ok := view.Tables[view.ActiveTable]; ok {
		activeItems = g.Rooms[view.ActiveRoomTab]
	}
	order, buckets := service.GroupBySubsection(activeItems)

	writeJSON(w, http.StatusOK, Ok(groupsResponse{
		View:                  view,
		ActiveRoomSubsections: subsectionView{Order: order, Buckets: buckets},
	}))
}

// GET /selection/api/v1/export
func (h *SelectionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := h.selection.Snapshot(r.Context(), sessionID(r))
	fileName, payload, err := h.exporter.Export(sess)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// POST /selection/api/v1/reset
func (h *SelectionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess := h.selection.Reset(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, Ok(sess))
}
