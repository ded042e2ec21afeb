package conversion

import (
	"strings"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

// Broker statements carry a fixed column layout in every section.
const (
	colSymbol      = 1
	colQuantity    = 2
	colBuyValue    = 3
	colSellValue   = 4
	colRealizedPnL = 5
)

// A statement needs a header row plus at least one data row to be worth
// extracting from.
const minSheetRows = 2

// CheckStructure rejects sheets too small to contain any statement data.
// Anything beyond the row-count check is left to extraction, which treats
// missing ranges as empty sections.
func CheckStructure(s *Sheet) error {
	if s.RowCount() < minSheetRows {
		return apierrors.ErrEmptySheet
	}
	return nil
}

// Extract reads rows startRow..endRow inclusive (1-based) into trade
// records. Rows whose symbol cell is blank are skipped, which also covers
// rows beyond the sheet extent. Order follows the sheet; duplicate symbols
// stay separate records. startRow > endRow yields an empty slice.
func Extract(s *Sheet, startRow, endRow int) []domain.TradeRecord {
	records := make([]domain.TradeRecord, 0, max(0, endRow-startRow+1))
	for row := startRow; row <= endRow; row++ {
		symbol := strings.TrimSpace(s.Cell(row, colSymbol))
		if symbol == "" {
			continue
		}
		records = append(records, domain.TradeRecord{
			Symbol:      symbol,
			Quantity:    Num(s.Cell(row, colQuantity)),
			BuyValue:    Num(s.Cell(row, colBuyValue)),
			SellValue:   Num(s.Cell(row, colSellValue)),
			RealizedPnL: Num(s.Cell(row, colRealizedPnL)),
		})
	}
	return records
}
