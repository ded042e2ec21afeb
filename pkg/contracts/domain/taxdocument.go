package domain

// OutputFormat selects the document shape produced for a conversion.
type OutputFormat string

const (
	FormatStandard OutputFormat = "standard"
	FormatCompact  OutputFormat = "compact"
)

// Valid reports whether the format is one of the supported shapes.
func (f OutputFormat) Valid() bool {
	return f == FormatStandard || f == FormatCompact
}

// Fixed values carried by every standard tax document. The filing portal
// expects these exact strings.
const (
	AssessmentYear   = "2025-2026"
	AssesseeType     = "INDIVIDUAL"
	AssetTypeListed  = "EQUITY_SHARES_LISTED"
	GainTypeLong     = "LONG"
	LongTermSellDate = "2025-03-31T18:30:00Z"
	LongTermBuyDate  = "2024-04-01T18:30:00Z"
	GainAlgorithm    = "cgSharesMF"
	BrokerNameManual = "Manual"
	SpeculativeType  = "SPECULATIVEINCOME"
	DocumentVersion  = "2.0"
)

// AssetDetail is one long-term holding entry inside a capital gain group.
type AssetDetail struct {
	SRN                  int     `json:"srn"`
	GainType             string  `json:"gainType"`
	SellDate             string  `json:"sellDate"`
	PurchaseDate         string  `json:"purchaseDate"`
	SellValue            float64 `json:"sellValue"`
	PurchaseCost         float64 `json:"purchaseCost"`
	SellValuePerUnit     float64 `json:"sellValuePerUnit"`
	PurchaseValuePerUnit float64 `json:"purchaseValuePerUnit"`
	SellOrBuyQuantity    float64 `json:"sellOrBuyQuantity"`
	NameOfTheUnits       string  `json:"nameOfTheUnits"`
	CapitalGain          float64 `json:"capitalGain"`
	Algorithm            string  `json:"algorithm"`
	BrokerName           string  `json:"brokerName"`
}

// CapitalGainGroup groups long-term asset details under one assessment year.
type CapitalGainGroup struct {
	AssessmentYear string        `json:"assessmentYear"`
	AssesseeType   string        `json:"assesseeType"`
	AssetType      string        `json:"assetType"`
	AssetDetails   []AssetDetail `json:"assetDetails"`
}

// SpeculativeIncome is the aggregated intraday income entry.
type SpeculativeIncome struct {
	TurnOver    float64 `json:"turnOver"`
	GrossProfit float64 `json:"grossProfit"`
	BrokerName  string  `json:"brokerName"`
}

// ProfitLossGroup groups speculative business income from intraday trading.
type ProfitLossGroup struct {
	BusinessType                   string              `json:"businessType"`
	NetProfitFromSpeculativeIncome float64             `json:"netProfitfromSpeculativeIncome"`
	Incomes                        []SpeculativeIncome `json:"incomes"`
}

// DocumentMetadata is the trailer carried by standard documents.
type DocumentMetadata struct {
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
	Format      string `json:"format"`
}

// StandardDocument is the filing-portal import shape. Empty sections are
// empty arrays, never null.
type StandardDocument struct {
	CapitalGain         []CapitalGainGroup `json:"capitalGain"`
	ProfitLossACIncomes []ProfitLossGroup  `json:"profitLossACIncomes"`
	Metadata            DocumentMetadata   `json:"metadata"`
}

// Format implements TaxDocument.
func (*StandardDocument) Format() OutputFormat { return FormatStandard }

// CompactSummary is the roll-up header of a compact document.
type CompactSummary struct {
	IntradayTrades   int     `json:"intraday_trades"`
	LongTermTrades   int     `json:"long_term_trades"`
	TotalIntradayPnL float64 `json:"total_intraday_pnl"`
	TotalLongTermPnL float64 `json:"total_longterm_pnl"`
	GeneratedAt      string  `json:"generated_at"`
}

// CompactTrades carries the extracted records verbatim.
type CompactTrades struct {
	Intraday []TradeRecord `json:"intraday"`
	LongTerm []TradeRecord `json:"long_term"`
}

// CompactDocument is the review-friendly shape: a summary plus the raw
// records, with no separate metadata trailer.
type CompactDocument struct {
	Summary CompactSummary `json:"summary"`
	Trades  CompactTrades  `json:"trades"`
}

// Format implements TaxDocument.
func (*CompactDocument) Format() OutputFormat { return FormatCompact }

// TaxDocument is either a StandardDocument or a CompactDocument.
type TaxDocument interface {
	Format() OutputFormat
}
