// Package dataprocessing extracts per-program attendance figures from a monthly
// attendance summary exported without a header row.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Scanner: finds rows whose label column equals a program label, and rows
// whose month column holds a given month number
// 2. Boundary resolution: turns label matches into an inclusive row interval per
// program, truncates intervals along an explicit program order and merges
// operator overrides
// 3. Extractor: reads grade band, month and measures for every month row inside
// a program interval
// 4. Consolidator: sums sub-location records into their parent programs
//
// # Usage
//
//	sheet, err := dataprocessing.LoadSheet("PrintMonthlyAttendanceSummaryTotals.xlsx", "")
//	if err != nil {
//	    return err
//	}
//	cols := dataprocessing.DefaultColumns()
//	provisional := dataprocessing.LocateBoundaries(sheet, cols.Label, catalog)
//	resolved := dataprocessing.ResolveOverlaps(order, provisional)
//	records := dataprocessing.NewExtractor(cols, catalog, logger).
//	    Extract(sheet, dataprocessing.BuildMonthIndex(sheet, cols.Month), resolved)
//
// # Data Flow
//
//	Excel File → Sheet → Boundaries → Records → Consolidated Records
//
// Resolution and extraction never modify their inputs; every step returns a
// new value.
package dataprocessing
