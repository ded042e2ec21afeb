package conversion

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is an immutable snapshot of one worksheet's cell grid. Row and
// column indexes are 1-based to match spreadsheet conventions; reads
// outside the grid return the empty string.
type Sheet struct {
	name string
	rows [][]string
}

// NewSheet builds a Sheet directly from a cell grid. Tests use this to
// avoid workbook fixtures.
func NewSheet(name string, rows [][]string) *Sheet {
	return &Sheet{name: name, rows: rows}
}

// OpenSheet loads the active worksheet of an .xlsx workbook stream.
// Values are excelize's formatted cell strings; formulas read as their
// cached results.
func OpenSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	return &Sheet{name: name, rows: rows}, nil
}

// Name returns the worksheet name.
func (s *Sheet) Name() string { return s.name }

// RowCount reports the sheet's used extent.
func (s *Sheet) RowCount() int { return len(s.rows) }

// Cell returns the raw value at (row, col), both 1-based. Cells outside
// the used range read as "".
func (s *Sheet) Cell(row, col int) string {
	if row < 1 || row > len(s.rows) {
		return ""
	}
	cells := s.rows[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}
