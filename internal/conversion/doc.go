// Package conversion turns broker trade spreadsheets into tax filing
// documents. It consolidates sheet access, row extraction, and document
// generation into a cohesive pipeline that handles the complete lifecycle
// from Excel ingestion to portal-ready JSON.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Sheet: wraps the cell grid of a workbook's active worksheet
// 2. Extractor: reads fixed row windows into TradeRecord slices
// 3. Template: immutable row-window and format presets
// 4. Builder: assembles standard or compact tax documents
//
// # Usage
//
// Basic conversion example:
//
//	sheet, err := conversion.OpenSheet(file)
//	if err != nil {
//	    return err
//	}
//	if err := conversion.CheckStructure(sheet); err != nil {
//	    return err
//	}
//	tpl, _ := registry.Get("default")
//	intraday := conversion.Extract(sheet, tpl.IntradayStart, tpl.IntradayEnd)
//	longTerm := conversion.Extract(sheet, tpl.LongTermStart, tpl.LongTermEnd)
//	doc := builder.Build(intraday, longTerm, tpl.OutputFormat)
//
// Extraction never fails: rows outside the sheet read as blank and blank
// rows are skipped, so a mis-aimed window produces an empty section rather
// than an error.
package conversion
