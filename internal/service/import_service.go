package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"houseselect/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportService parses uploaded catalog workbooks into tables.
type ImportService struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewImportService(fetchTimeout time.Duration, logger *zap.Logger) *ImportService {
	return &ImportService{
		http:   resty.New().SetTimeout(fetchTimeout),
		logger: logger,
	}
}

// ImportWorkbook reads every sheet of an xlsx payload. Row 0 is the
// header row; data rows accumulate until the first fully empty row
// (rows after a gap are discarded, not resumed). Sheets without at
// least one data row are skipped; zero usable sheets fails the import.
func (s *ImportService) ImportWorkbook(r io.Reader) (map[string]*domain.Table, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrImport, err)
	}
	defer f.Close()

	tables := map[string]*domain.Table{}
	var order []string
	for _, sheet := range f.GetSheetList() {
		grid, err := f.GetRows(sheet)
		if err != nil {
			s.logger.Warn("skipping unreadable sheet",
				zap.String("sheet", sheet), zap.Error(err))
			continue
		}
		if len(grid) < 2 {
			continue
		}
		headers := grid[0]
		if len(headers) == 0 {
			continue
		}
		table := &domain.Table{Name: sheet, Headers: headers}
		for i := 1; i < len(grid); i++ {
			if isEmptyRow(grid[i]) {
				break
			}
			cells := make(map[string]string, len(headers))
			for j, h := range headers {
				if j < len(grid[i]) {
					cells[h] = grid[i][j]
				} else {
					cells[h] = ""
				}
			}
			// 1-based, counting the header row as row 1.
			table.Rows = append(table.Rows, domain.Row{RowNumber: i + 1, Cells: cells})
		}
		if len(table.Rows) == 0 {
			continue
		}
		tables[sheet] = table
		order = append(order, sheet)
	}

	if len(order) == 0 {
		return nil, nil, domain.ErrImport
	}
	return tables, order, nil
}

// ImportFromURL downloads a workbook and parses it like an upload.
func (s *ImportService) ImportFromURL(ctx context.Context, url string) (map[string]*domain.Table, []string, error) {
	resp, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrImport, url, err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("%w: fetch %s: status %d", domain.ErrImport, url, resp.StatusCode())
	}
	return s.ImportWorkbook(bytes.NewReader(resp.Body()))
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
