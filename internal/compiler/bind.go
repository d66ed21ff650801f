package compiler

import (
	"fmt"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
)

// BindModel checks that a model can be rendered by a bridge: every field
// type has a native mapping, every post operation truncates, every
// aggregation renders in the ad hoc context and the target resolves.
//
// Errors wrap the bridge's *dialect.Error, so dialect.KindOf reports
// UNSUPPORTED_TYPE or UNIMPLEMENTED when a model uses a type the warehouse
// cannot hold. All problems are returned, not just the first.
func BindModel(b *dialect.Bridge, m *ir.Model) []error {
	var errs []error
	prefix := "model." + m.Name

	if _, err := b.SQLReferenceForTarget(b.FillDefaultsToTarget(m.Target)); err != nil {
		errs = append(errs, fmt.Errorf("%s.target: %w", prefix, err))
	}

	for _, d := range m.Dimensions {
		field := prefix + ".dimension." + d.Name
		if _, err := b.ToNativeType(d.Type); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		for _, op := range d.PostOperations {
			unit, err := ir.ParseTimeUnit(op)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s::%s: %w", field, op, err))
				continue
			}
			if _, err := b.DateTrunc("x", unit); err != nil {
				errs = append(errs, fmt.Errorf("%s::%s: %w", field, op, err))
			}
		}
	}

	for _, ms := range m.Measures {
		field := prefix + ".measure." + ms.Name
		if _, err := b.ToNativeType(ms.Aggregation.ResultType(ms.Type)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		if _, err := b.RenderAggregation("x", ms.Aggregation, ir.ContextAdhoc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	return errs
}

// BindModels binds every model in name order.
func BindModels(b *dialect.Bridge, models ir.Models) []error {
	var errs []error
	for _, name := range sortedModelNames(models) {
		errs = append(errs, BindModel(b, models[name])...)
	}
	return errs
}
