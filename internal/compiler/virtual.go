package compiler

import (
	"fmt"

	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
)

// Column kinds of a virtual table.
const (
	ColumnDimension = "dimension"
	ColumnMeasure   = "measure"
)

// VirtualColumn is one column of the virtual table a model exposes to
// connector clients. Name is the field reference a query uses to select it.
type VirtualColumn struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Type       ir.FieldType `json:"type"`
	NativeType string       `json:"native_type"`
}

// VirtualColumns lists the virtual table of a model as seen through a
// bridge, in declaration order:
//
//   - one column per dimension, plus "name::timeframe" per post operation
//   - "relation.name" columns for the dimensions of each related model
//   - one column per measure, typed by its aggregation's result
//
// Hidden fields are left out. A field whose type the dialect cannot
// represent fails the listing with the bridge's error.
func VirtualColumns(models ir.Models, model string, b *dialect.Bridge) ([]VirtualColumn, error) {
	m, err := models.Get(model)
	if err != nil {
		return nil, err
	}

	var cols []VirtualColumn
	add := func(name, kind string, ft ir.FieldType) error {
		native, err := b.ToNativeType(ft)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		cols = append(cols, VirtualColumn{Name: name, Kind: kind, Type: ft, NativeType: native})
		return nil
	}
	addDimensions := func(prefix string, dims []ir.Dimension) error {
		for _, d := range dims {
			if d.Hidden {
				continue
			}
			ref := ir.FieldRef{Relation: prefix, Name: d.Name}
			if err := add(ref.String(), ColumnDimension, d.Type); err != nil {
				return err
			}
			for _, op := range d.PostOperations {
				ref.PostOperation = op
				if err := add(ref.String(), ColumnDimension, d.Type); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := addDimensions("", m.Dimensions); err != nil {
		return nil, err
	}
	for _, r := range m.Relations {
		target, err := models.Get(r.Model)
		if err != nil {
			return nil, fmt.Errorf("relation %q: %w", r.Name, err)
		}
		if err := addDimensions(r.Name, target.Dimensions); err != nil {
			return nil, err
		}
	}
	for _, ms := range m.Measures {
		if ms.Hidden {
			continue
		}
		if err := add(ms.Name, ColumnMeasure, ms.Aggregation.ResultType(ms.Type)); err != nil {
			return nil, err
		}
	}
	return cols, nil
}
