// Package catalog resolves table metadata from the backing store's system
// catalog and builds type-aware search conditions from untyped input.
//
// The package has three parts:
//
//   - Reader: queries information_schema and pg_index to produce a
//     TableSchema for a named table (columns, primary key, foreign keys).
//   - Registry: memoizes TableSchema values per table name for the process
//     lifetime. There is no invalidation; a schema change requires a restart.
//   - Condition builder: turns a (column, raw text) pair into a safely
//     parameterized predicate, choosing comparison semantics from the
//     column's type category.
//
// Table and column names originate from caller-supplied strings that are
// validated only by catalog membership, so every identifier interpolated into
// SQL is quoted with pq.QuoteIdentifier and every value is bound as a
// parameter.
package catalog
