// Package dataprocessing turns a market-capitalization snapshot into the
// derived views of a report. Every function is a pure transformation: the
// input table is never modified and each call returns fresh slices.
//
// # Components
//
//	1. Loader: reads CSV or Excel snapshots into a domain.Table
//	2. Filter and ranking: drops rows without a capitalization, takes the top N
//	3. Volatility: projects and sorts the 24 hour and 7 day percent changes
//	4. Classification: large-cap selection and the big/micro/nano buckets
//
// # Usage
//
//	table, err := dataprocessing.LoadTable("datasets/coinmarketcap_06122017.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	capped := dataprocessing.FilterNonNullCap(table)
//	top, _ := dataprocessing.TopByCap(capped, 10, dataprocessing.OrderTrust)
//	counts := dataprocessing.Classify(capped, dataprocessing.Tiers{BigMin: 3e8, MicroMin: 5e7})
//
// # Data Flow
//
//	File → Loader → Table → FilterNonNullCap → TopByCap / SelectLargeCaps / Classify
//	               Table → ExtractMovers → SortMovers (24h, 7d) → TopBottom
//
// # Error Handling
//
// Only the loader fails. Its errors are *errors.AppError values of type LOAD
// carrying the path and, where relevant, the column and row.
// Missing values are never errors: they are excluded by the step that needs them.
package dataprocessing
