// Package dataprocessing implements the ingestion and normalization core:
// parsing the per-group environmental CSV files and the growth-results
// workbook, aggregating them into two unified in-memory tables, and
// deriving per-group views over those tables.
//
// # Data Flow
//
//	CSV files ─┐
//	           ├─ Parser → per-group tables → Aggregator → unified tables → Views
//	Workbook ──┘
//
// # Failure Policy
//
// Failures are absorbed as locally as possible. A row whose timestamp will
// not parse is dropped. A group whose source is missing or unreadable
// contributes zero rows and the run continues. Only two conditions halt a
// run: the base data directory being absent, and a unified table coming
// out empty after aggregation. Both are returned as typed errors from the
// Loader; nothing panics across the ingestion boundary.
//
// # Caching
//
// Loader memoizes the outcome of its first run, success or halting
// failure, until Invalidate is called. Source files are static for the
// lifetime of a run, so there is no TTL.
package dataprocessing
