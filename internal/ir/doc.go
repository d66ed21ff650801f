// Package ir provides the warehouse-independent vocabulary of the semantic layer.
//
// This package contains type definitions and pure catalog logic only. All other
// internal packages import ir; ir imports nothing internal. This keeps IR the
// foundational layer with no circular dependencies.
//
// Contents:
//   - FieldType: closed set of semantic value types attached to every dimension,
//     measure and filter operand
//   - Operator: filter operators partitioned by family, with LegalOperators as
//     the catalog of which operators apply to which field type
//   - AggregationType and AggregationContext: what a measure computes and the
//     execution phase it is rendered for
//   - Model, Dimension, Measure, Relation, Target: the semantic model
//   - IRValue: sealed operand values (no floats; decimals travel as text)
//   - MarshalCanonical and CacheKey: RFC 8785 canonical JSON for content hashing
//
// Key design constraints:
//   - Every enum is closed; String/Parse round-trip and unknown names are errors
//   - Numeric operands keep their textual form (IRNumber) to avoid precision loss
//   - All JSON/YAML names use snake_case
package ir
