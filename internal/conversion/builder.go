package conversion

import (
	"time"

	"taxwizz/pkg/contracts/domain"
)

// Builder assembles tax documents from extracted trade records. Building
// never fails; empty inputs produce documents with empty sections.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder stamping documents with the wall clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build produces the document shape selected by format. Anything other
// than the compact format builds a standard document.
func (b *Builder) Build(intraday, longTerm []domain.TradeRecord, format domain.OutputFormat) domain.TaxDocument {
	if format == domain.FormatCompact {
		return b.buildCompact(intraday, longTerm)
	}
	return b.buildStandard(intraday, longTerm)
}

func (b *Builder) buildStandard(intraday, longTerm []domain.TradeRecord) *domain.StandardDocument {
	doc := &domain.StandardDocument{
		CapitalGain:         []domain.CapitalGainGroup{},
		ProfitLossACIncomes: []domain.ProfitLossGroup{},
		Metadata: domain.DocumentMetadata{
			GeneratedAt: b.now().Format(time.RFC3339),
			Version:     domain.DocumentVersion,
			Format:      string(domain.FormatStandard),
		},
	}

	if len(longTerm) > 0 {
		details := make([]domain.AssetDetail, 0, len(longTerm))
		for i, rec := range longTerm {
			details = append(details, domain.AssetDetail{
				SRN:                  i + 1,
				GainType:             domain.GainTypeLong,
				SellDate:             domain.LongTermSellDate,
				PurchaseDate:         domain.LongTermBuyDate,
				SellValue:            rec.SellValue,
				PurchaseCost:         rec.BuyValue,
				SellValuePerUnit:     perUnit(rec.SellValue, rec.Quantity),
				PurchaseValuePerUnit: perUnit(rec.BuyValue, rec.Quantity),
				SellOrBuyQuantity:    rec.Quantity,
				NameOfTheUnits:       rec.Symbol,
				CapitalGain:          rec.RealizedPnL,
				Algorithm:            domain.GainAlgorithm,
				BrokerName:           domain.BrokerNameManual,
			})
		}
		doc.CapitalGain = append(doc.CapitalGain, domain.CapitalGainGroup{
			AssessmentYear: domain.AssessmentYear,
			AssesseeType:   domain.AssesseeType,
			AssetType:      domain.AssetTypeListed,
			AssetDetails:   details,
		})
	}

	if len(intraday) > 0 {
		net := domain.TotalPnL(intraday)
		doc.ProfitLossACIncomes = append(doc.ProfitLossACIncomes, domain.ProfitLossGroup{
			BusinessType:                   domain.SpeculativeType,
			NetProfitFromSpeculativeIncome: net,
			Incomes: []domain.SpeculativeIncome{{
				TurnOver:    domain.TotalSellValue(intraday),
				GrossProfit: net,
				BrokerName:  domain.BrokerNameManual,
			}},
		})
	}

	return doc
}

func (b *Builder) buildCompact(intraday, longTerm []domain.TradeRecord) *domain.CompactDocument {
	if intraday == nil {
		intraday = []domain.TradeRecord{}
	}
	if longTerm == nil {
		longTerm = []domain.TradeRecord{}
	}
	return &domain.CompactDocument{
		Summary: domain.CompactSummary{
			IntradayTrades:   len(intraday),
			LongTermTrades:   len(longTerm),
			TotalIntradayPnL: domain.TotalPnL(intraday),
			TotalLongTermPnL: domain.TotalPnL(longTerm),
			GeneratedAt:      b.now().Format(time.RFC3339),
		},
		Trades: domain.CompactTrades{
			Intraday: intraday,
			LongTerm: longTerm,
		},
	}
}

// perUnit divides value by quantity, returning 0 for zero quantity so
// free or bonus share entries never divide by zero.
func perUnit(value, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return value / quantity
}
