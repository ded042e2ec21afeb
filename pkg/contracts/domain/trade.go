package domain

// TradeRecord is one extracted spreadsheet row from a broker tax P&L
// statement. JSON field names follow the export's column headers because
// compact documents embed the records verbatim.
type TradeRecord struct {
	Symbol      string  `json:"Symbol"`
	Quantity    float64 `json:"Quantity"`
	BuyValue    float64 `json:"Buy Value"`
	SellValue   float64 `json:"Sell Value"`
	RealizedPnL float64 `json:"Realized P&L"`
}

// TradeSegment identifies which statement section a record was
// extracted from.
type TradeSegment string

const (
	SegmentIntraday TradeSegment = "intraday"
	SegmentLongTerm TradeSegment = "long_term"
)

// TotalPnL sums realized P&L over a slice of records.
func TotalPnL(records []TradeRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.RealizedPnL
	}
	return total
}

// TotalSellValue sums sell value over a slice of records.
func TotalSellValue(records []TradeRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.SellValue
	}
	return total
}
