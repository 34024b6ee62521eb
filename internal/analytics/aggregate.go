package analytics

import (
	"fmt"
	"math"
	"sort"

	"retail-inventory-lab/internal/domain"
)

// ReduceOp selects how a value column is reduced within a group.
type ReduceOp int

const (
	ReduceSum ReduceOp = iota
	ReduceMean
	ReduceCount
)

// KeyFunc extracts a grouping key component from a row. Keys compare by
// exact string equality; an explicit "unknown" category is preserved as its
// own group.
type KeyFunc func(*domain.MetricRow) string

// ValueFunc extracts a numeric value from a row. It may return NaN for a
// missing observation; NaN values are skipped by every reduction.
type ValueFunc func(*domain.MetricRow) float64

// ColumnSpec describes one reduced output column.
type ColumnSpec struct {
	Name  string
	Value ValueFunc // ignored for ReduceCount
	Op    ReduceOp
}

// Cell is one reduced value. Defined is false when a mean was requested
// over zero usable samples; the report layer decides how to render that
// (it is never silently coerced to zero).
type Cell struct {
	Value   float64
	Defined bool
}

// GroupRow is one distinct key tuple with its reduced columns, in the same
// order as the table's ColumnNames.
type GroupRow struct {
	Key   []string
	Cells []Cell
}

// KeyString renders the key tuple for display ("Winter/Electronics").
func (r *GroupRow) KeyString() string {
	if len(r.Key) == 1 {
		return r.Key[0]
	}
	out := r.Key[0]
	for _, k := range r.Key[1:] {
		out += "/" + k
	}
	return out
}

// GroupedTable is the output of a group-by-reduce. Rows are in canonical
// order: the order each key tuple was first encountered in the input, until
// SortBy imposes a caller-specified order. Extremum tie-breaks follow this
// canonical order, so it is part of the contract.
type GroupedTable struct {
	KeyNames    []string
	ColumnNames []string
	Rows        []GroupRow
}

// Cell looks up a reduced value by column name on one row.
func (t *GroupedTable) Cell(row *GroupRow, column string) (Cell, bool) {
	for i, name := range t.ColumnNames {
		if name == column {
			return row.Cells[i], true
		}
	}
	return Cell{}, false
}

// groupAccumulator collects per-column running state for one key tuple.
type groupAccumulator struct {
	key   []string
	sums  []float64
	sumNs []int // finite samples contributing to sums
	rows  int
}

// GroupBy reduces the table to one row per distinct key tuple. The input is
// never mutated. Returns ErrEmptyInput when the table has no rows.
func GroupBy(rows []*domain.MetricRow, keyNames []string, keys []KeyFunc, cols []ColumnSpec) (*GroupedTable, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	if len(keyNames) != len(keys) {
		return nil, fmt.Errorf("group by: %d key names for %d key funcs", len(keyNames), len(keys))
	}

	columnNames := make([]string, len(cols))
	for i, c := range cols {
		columnNames[i] = c.Name
	}

	// Insertion order of key tuples defines the canonical row order.
	index := make(map[string]*groupAccumulator)
	var order []*groupAccumulator

	for _, row := range rows {
		key := make([]string, len(keys))
		for i, kf := range keys {
			key[i] = kf(row)
		}
		mapKey := joinKey(key)

		acc, ok := index[mapKey]
		if !ok {
			acc = &groupAccumulator{
				key:   key,
				sums:  make([]float64, len(cols)),
				sumNs: make([]int, len(cols)),
			}
			index[mapKey] = acc
			order = append(order, acc)
		}

		acc.rows++
		for i, c := range cols {
			if c.Op == ReduceCount {
				continue
			}
			v := c.Value(row)
			if math.IsNaN(v) {
				continue
			}
			acc.sums[i] += v
			acc.sumNs[i]++
		}
	}

	table := &GroupedTable{
		KeyNames:    keyNames,
		ColumnNames: columnNames,
		Rows:        make([]GroupRow, len(order)),
	}
	for gi, acc := range order {
		cells := make([]Cell, len(cols))
		for i, c := range cols {
			switch c.Op {
			case ReduceCount:
				cells[i] = Cell{Value: float64(acc.rows), Defined: true}
			case ReduceSum:
				// Sum over all-NaN is a defined zero (skipna semantics).
				cells[i] = Cell{Value: acc.sums[i], Defined: true}
			case ReduceMean:
				if acc.sumNs[i] == 0 {
					cells[i] = Cell{}
				} else {
					cells[i] = Cell{Value: acc.sums[i] / float64(acc.sumNs[i]), Defined: true}
				}
			}
		}
		table.Rows[gi] = GroupRow{Key: acc.key, Cells: cells}
	}
	return table, nil
}

// SortBy returns a new table with rows ordered by the named column. The
// sort is stable, so rows with equal values keep their canonical order.
// Undefined cells sort after every defined value.
func (t *GroupedTable) SortBy(column string, descending bool) (*GroupedTable, error) {
	ci := -1
	for i, name := range t.ColumnNames {
		if name == column {
			ci = i
		}
	}
	if ci < 0 {
		return nil, fmt.Errorf("sort by: unknown column %q", column)
	}

	out := &GroupedTable{
		KeyNames:    t.KeyNames,
		ColumnNames: t.ColumnNames,
		Rows:        make([]GroupRow, len(t.Rows)),
	}
	copy(out.Rows, t.Rows)

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i].Cells[ci], out.Rows[j].Cells[ci]
		if a.Defined != b.Defined {
			return a.Defined
		}
		if !a.Defined {
			return false
		}
		if descending {
			return a.Value > b.Value
		}
		return a.Value < b.Value
	})
	return out, nil
}

// SortKeys returns a new table with rows in lexicographic key-tuple order,
// for deterministic display of key-indexed summaries.
func (t *GroupedTable) SortKeys() *GroupedTable {
	out := &GroupedTable{
		KeyNames:    t.KeyNames,
		ColumnNames: t.ColumnNames,
		Rows:        make([]GroupRow, len(t.Rows)),
	}
	copy(out.Rows, t.Rows)

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i].Key, out.Rows[j].Key
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

// Extremes returns the rows holding the maximum and minimum defined value
// of the named column. Ties are broken by canonical order: the first row
// encountered wins, for both extremes, which is observable on small
// datasets. Returns ErrEmptyInput when no row has a defined value.
func (t *GroupedTable) Extremes(column string) (best, worst *GroupRow, err error) {
	ci := -1
	for i, name := range t.ColumnNames {
		if name == column {
			ci = i
		}
	}
	if ci < 0 {
		return nil, nil, fmt.Errorf("extremes: unknown column %q", column)
	}

	for i := range t.Rows {
		cell := t.Rows[i].Cells[ci]
		if !cell.Defined {
			continue
		}
		// Strict comparisons keep the first row on ties.
		if best == nil || cell.Value > best.Cells[ci].Value {
			best = &t.Rows[i]
		}
		if worst == nil || cell.Value < worst.Cells[ci].Value {
			worst = &t.Rows[i]
		}
	}
	if best == nil {
		return nil, nil, ErrEmptyInput
	}
	return best, worst, nil
}

// joinKey builds a map key with an unlikely separator so multi-key tuples
// cannot collide.
func joinKey(key []string) string {
	out := key[0]
	for _, k := range key[1:] {
		out += "\x1f" + k
	}
	return out
}
