package service

import (
	"fmt"
	"strings"
	"time"

	"houseselect/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	columnWidthMin   = 10
	columnWidthMax   = 60
	sectionFillColor = "#C6F6D5"
)

// ExportService renders a session's selections into an xlsx workbook:
// a summary sheet, a flat "All Selections" sheet, and one sheet per
// source table with per-room sections.
type ExportService struct {
	logger *zap.Logger
}

func NewExportService(logger *zap.Logger) *ExportService {
	return &ExportService{logger: logger}
}

// Export produces the workbook bytes and the download file name.
func (s *ExportService) Export(sess *domain.Session) (string, []byte, error) {
	if len(sess.SelectedItems) == 0 {
		return "", nil, domain.ErrEmptyExport
	}

	f := excelize.NewFile()
	defer f.Close()

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", nil, fmt.Errorf("create bold style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{sectionFillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("create section style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("create title style: %w", err)
	}

	// Summary sheet (rename the default sheet so it stays first).
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return "", nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := newSheetWriter(f, "Summary")
	summary.addRow([]any{"House Name", sess.HouseName}, 0)
	summary.addRow([]any{"Floor Plan", sess.FloorPlan}, 0)
	summary.addRow([]any{"Exported At", time.Now().Format("2006-01-02 15:04:05")}, 0)
	summary.autosize()

	dataHeaders := unionHeaders(sess)

	// All Selections: every item in original selection order.
	allName := "All Selections"
	if _, err := f.NewSheet(allName); err != nil {
		return "", nil, fmt.Errorf("create sheet %q: %w", allName, err)
	}
	all := newSheetWriter(f, allName)
	allCols := append([]string{"Table", "Room", "Row #", "Quantity"}, dataHeaders...)
	allCols = append(allCols, "Notes")
	all.addRow(toAnyRow(allCols), boldStyle)
	for _, it := range sess.SelectedItems {
		all.addRow(itemRow(it, sess, dataHeaders, true), 0)
	}
	all.autosize()

	// One sheet per source table, rooms as colored sections.
	view := Regroup(sess)
	used := map[string]bool{"Summary": true, allName: true}
	for _, tableName := range view.TableOrder {
		group := view.Tables[tableName]
		cols := perTableColumns(sess, tableName)

		sheetName := sanitizeSheetName(tableName)
		if used[sheetName] {
			s.logger.Warn("skipping table with colliding sheet name",
				zap.String("table", tableName), zap.String("sheet", sheetName))
			continue
		}
		used[sheetName] = true
		if _, err := f.NewSheet(sheetName); err != nil {
			return "", nil, fmt.Errorf("create sheet %q: %w", sheetName, err)
		}
		w := newSheetWriter(f, sheetName)

		house := sess.HouseName
		if house == "" {
			house = "N/A"
		}
		plan := sess.FloorPlan
		if plan == "" {
			plan = "N/A"
		}
		w.addMergedRow(fmt.Sprintf("%s - %s - %s", tableName, house, plan), len(cols), titleStyle, 25)
		w.addRow(nil, 0)

		headers := tableHeaders(sess, tableName)
		for _, roomName := range group.RoomOrder {
			items := group.Rooms[roomName]
			if len(items) == 0 {
				continue
			}
			w.addMergedRow(roomName, len(cols), sectionStyle, 0)
			w.addRow(toAnyRow(cols), boldStyle)
			for _, it := range items {
				w.addRow(itemRow(it, sess, headers, false), 0)
			}
			w.addRow(nil, 0)
		}
		w.autosize()
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return exportFileName(sess), buf.Bytes(), nil
}

// itemRow lays an item out as [Table?, Room, Row #, Quantity, cells...,
// Notes]; withTable controls the leading Table column.
func itemRow(it *domain.SelectedItem, sess *domain.Session, headers []string, withTable bool) []any {
	row := make([]any, 0, len(headers)+5)
	if withTable {
		table := it.Table
		if table == "" {
			table = sess.ActiveTable
		}
		row = append(row, table)
	}
	row = append(row, it.Room, it.RowNumber, it.Quantity)
	for _, h := range headers {
		row = append(row, it.Cells[h])
	}
	return append(row, it.Notes)
}

func toAnyRow(cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

func perTableColumns(sess *domain.Session, tableName string) []string {
	cols := append([]string{"Room", "Row #", "Quantity"}, tableHeaders(sess, tableName)...)
	return append(cols, "Notes")
}

// tableHeaders returns the source table's header order; tables known
// only through items fall back to the union of all headers.
func tableHeaders(sess *domain.Session, tableName string) []string {
	if t, ok := sess.Table(tableName); ok {
		return t.Headers
	}
	return unionHeaders(sess)
}

// unionHeaders merges every table's headers in first-appearance order,
// so the flat sheet covers multi-table selections.
func unionHeaders(sess *domain.Session) []string {
	seen := map[string]bool{}
	var headers []string
	for _, name := range sess.TableOrder {
		t, ok := sess.Table(name)
		if !ok {
			continue
		}
		for _, h := range t.Headers {
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			headers = append(headers, h)
		}
	}
	return headers
}

// sanitizeSheetName strips the characters the destination format
// forbids and truncates to its 31-character limit.
func sanitizeSheetName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '*', '[', ']', ':':
			return -1
		}
		return r
	}, name)
	// The 31-character limit counts characters, not bytes.
	if runes := []rune(safe); len(runes) > 31 {
		safe = string(runes[:31])
	}
	if safe == "" {
		return "Sheet"
	}
	return safe
}

func exportFileName(sess *domain.Session) string {
	house := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '<', '>', '|', '*', '"':
			return -1
		}
		return r
	}, sess.HouseName)
	if house == "" {
		house = "Selections"
	}
	plan := sess.FloorPlan
	if plan == "" {
		plan = "Plan"
	}
	return fmt.Sprintf("%s - %s - selections.xlsx", house, plan)
}

// sheetWriter appends rows to one sheet and tracks per-column text
// lengths for the autosize pass.
type sheetWriter struct {
	f        *excelize.File
	sheet    string
	nextRow  int
	colWidth []int
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, nextRow: 1}
}

func (w *sheetWriter) addRow(values []any, styleID int) {
	rowNum := w.nextRow
	w.nextRow++
	if len(values) == 0 {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	_ = w.f.SetSheetRow(w.sheet, cell, &values)
	for i, v := range values {
		w.trackWidth(i, v)
	}
	if styleID != 0 {
		end, _ := excelize.CoordinatesToCellName(len(values), rowNum)
		_ = w.f.SetCellStyle(w.sheet, cell, end, styleID)
	}
}

// addMergedRow writes a single value merged across colCount columns.
func (w *sheetWriter) addMergedRow(value string, colCount int, styleID int, height float64) {
	rowNum := w.nextRow
	w.nextRow++
	start, _ := excelize.CoordinatesToCellName(1, rowNum)
	_ = w.f.SetCellValue(w.sheet, start, value)
	if colCount > 1 {
		end, _ := excelize.CoordinatesToCellName(colCount, rowNum)
		_ = w.f.MergeCell(w.sheet, start, end)
	}
	if styleID != 0 {
		_ = w.f.SetCellStyle(w.sheet, start, start, styleID)
	}
	if height > 0 {
		_ = w.f.SetRowHeight(w.sheet, rowNum, height)
	}
	w.trackWidth(0, value)
}

func (w *sheetWriter) trackWidth(col int, v any) {
	for len(w.colWidth) <= col {
		w.colWidth = append(w.colWidth, 0)
	}
	if n := len(fmt.Sprint(v)); n > w.colWidth[col] {
		w.colWidth[col] = n
	}
}

// autosize applies clamp(max(10, maxLen+2), 10, 60) per column. A
// heuristic, not a font-metric measurement.
func (w *sheetWriter) autosize() {
	for i, maxLen := range w.colWidth {
		width := maxLen + 2
		if width < columnWidthMin {
			width = columnWidthMin
		}
		if width > columnWidthMax {
			width = columnWidthMax
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = w.f.SetColWidth(w.sheet, col, col, float64(width))
	}
}
