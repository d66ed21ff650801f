// Package querysql generates complete SQL queries from the query IR.
//
// Generators own the ANSI query shape (SELECT, FROM, JOIN, WHERE, GROUP BY,
// HAVING, ORDER BY, LIMIT) and delegate every dialect-specific fragment to a
// dialect.Bridge: filters, aggregations, functions, literals, identifier
// quoting and target references.
//
// Three generators are provided:
//   - Segmentation: dimensions and aggregated measures from one model
//   - Funnel: ordered step conversion within a time window
//   - Passthrough: user SQL with an optional row limit
//
// Generators are stateless values and safe for concurrent use.
package querysql
