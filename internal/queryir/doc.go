// Package queryir provides the abstract query representation that query
// generators turn into dialect SQL.
//
// A query names a model and the semantic entities it touches (dimensions,
// measures, relations) by reference; it never contains SQL fragments except
// for the RawSQL passthrough. Generators resolve references against compiled
// models and ask a dialect bridge to render every filter and aggregation.
//
//	[request YAML/JSON] → [Query IR] → [generator + bridge] → SQL
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed with marker methods so generators can
// switch exhaustively:
//
//	switch q := query.(type) {
//	case *Segmentation:
//	case *Funnel:
//	case *RawSQL:
//	}
//
// Both value and pointer forms are accepted everywhere.
//
// FILTER COMBINATION:
//
// A Group holds the filters for one field. Filters in a group combine with
// AND unless Match is "any". Groups combine through And/Or predicates; the
// top-level list of a request is an implicit And. Every group is rendered
// parenthesized, so mixing a range group and an IN group on the same field
// yields "(x > 1) AND (x IN (2, 3))".
package queryir
