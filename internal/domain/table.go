package domain

// Table is one named header+rows dataset imported from a workbook sheet.
type Table struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Row is one imported data row, keyed by header name. RowNumber is the
// 1-based position in the source sheet counting the header row as row 1;
// it stays stable when the row is later copied into a selection.
// Rows are immutable after import.
type Row struct {
	RowNumber int               `json:"row_number"`
	Cells     map[string]string `json:"cells"`
}

func (r Row) Cell(header string) string {
	return r.Cells[header]
}

// RowByNumber resolves a row by its stable source row number.
func (t *Table) RowByNumber(rowNumber int) (Row, bool) {
	for _, row := range t.Rows {
		if row.RowNumber == rowNumber {
			return row, true
		}
	}
	return Row{}, false
}
