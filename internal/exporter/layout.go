package exporter

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"adarecon/pkg/contracts/domain"
)

// ErrDuplicateCell is returned when two keys map to one worksheet address.
var ErrDuplicateCell = errors.New("duplicate cell address in layout")

// CellMap is the generated key → address table of a reconciliation layout.
type CellMap []domain.CellMapping

// BuildCellMap expands a layout spec into one mapping per line and month. The
// table is rejected when an address or a key appears twice.
func BuildCellMap(spec domain.LayoutSpec, catalog domain.Catalog) (CellMap, error) {
	firstCol, err := excelize.ColumnNameToNumber(spec.FirstColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid first column %q: %w", spec.FirstColumn, err)
	}
	colStride := max(spec.ColumnStride, 1)
	rowStride := max(spec.RowStride, 1)

	var cm CellMap
	byAddress := make(map[string]domain.RecordKey)
	byKey := make(map[domain.RecordKey]string)

	for _, block := range spec.Blocks {
		for i, line := range block.Lines {
			row := block.FirstRow + i*rowStride
			tk := false
			if p, ok := catalog.Lookup(line.Program); ok {
				tk = p.TK
			}
			for month := 1; month <= domain.Months; month++ {
				addr, err := excelize.CoordinatesToCellName(firstCol+(month-1)*colStride, row)
				if err != nil {
					return nil, fmt.Errorf("block %q line %d: %w", block.Name, i, err)
				}
				key := domain.RecordKey{Program: line.Program, Month: month, Band: line.Band, TK: tk}

				if prev, dup := byAddress[addr]; dup {
					return nil, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateCell, addr, prev, key)
				}
				if prev, dup := byKey[key]; dup {
					return nil, fmt.Errorf("%w: %s mapped to %s and %s", ErrDuplicateCell, key, prev, addr)
				}
				byAddress[addr] = key
				byKey[key] = addr
				cm = append(cm, domain.CellMapping{Key: key, Address: addr})
			}
		}
	}
	return cm, nil
}

// Address returns the cell mapped to key.
func (cm CellMap) Address(key domain.RecordKey) (string, bool) {
	for _, m := range cm {
		if m.Key == key {
			return m.Address, true
		}
	}
	return "", false
}

// Project resolves every mapping against records. Mapped keys without a
// record, or with an absent measure, are written as 0.
func Project(records domain.RecordSet, cm CellMap) []domain.CellValue {
	out := make([]domain.CellValue, 0, len(cm))
	for _, m := range cm {
		v := 0.0
		if rec, ok := records[m.Key]; ok {
			v = rec.ADA.Or(0)
		}
		out = append(out, domain.CellValue{Address: m.Address, Value: v, Key: m.Key})
	}
	return out
}

// Unmapped returns record keys that have no cell in the layout, in sorted order.
func Unmapped(records domain.RecordSet, cm CellMap, catalog domain.Catalog) []domain.RecordKey {
	mapped := make(map[domain.RecordKey]struct{}, len(cm))
	for _, m := range cm {
		mapped[m.Key] = struct{}{}
	}
	var out []domain.RecordKey
	for _, k := range records.SortedKeys(catalog) {
		if _, ok := mapped[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
