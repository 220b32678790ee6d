package widget

import (
	"fmt"
	"sort"
	"strings"

	"codelab/internal/plan"
	"codelab/internal/session"
)

// The view widgets are pure derivations over item data and the store; they
// hold no decision state and record no telemetry.

// TableView backs visual_table: sortable and filterable, no store binding.
type TableView struct {
	kind    string
	columns []string
	rows    [][]any
}

func NewTableView(kind string, columns []string, rows [][]any) *TableView {
	return &TableView{kind: kind, columns: columns, rows: rows}
}

func (t *TableView) Kind() string      { return t.kind }
func (t *TableView) Columns() []string { return t.columns }

func (t *TableView) Rows() [][]any {
	return copyRows(t.rows)
}

// Sorted returns the rows ordered by the named column. Unknown columns
// return the rows unchanged.
func (t *TableView) Sorted(column string, descending bool) [][]any {
	idx := columnIndex(t.columns, column)
	out := copyRows(t.rows)
	if idx < 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		less := lessValue(cell(out[i], idx), cell(out[j], idx))
		if descending {
			return !less
		}
		return less
	})
	return out
}

// Filtered keeps rows whose named column contains the query, case
// insensitive.
func (t *TableView) Filtered(column, query string) [][]any {
	idx := columnIndex(t.columns, column)
	if idx < 0 {
		return copyRows(t.rows)
	}
	query = strings.ToLower(query)
	var out [][]any
	for _, row := range t.rows {
		if strings.Contains(strings.ToLower(fmt.Sprint(cell(row, idx))), query) {
			out = append(out, append([]any(nil), row...))
		}
	}
	return out
}

// TransformView backs data_transform: the item's filter applied to its rows.
type TransformView struct {
	item plan.DataTransform
}

func NewTransformView(item plan.DataTransform) *TransformView {
	return &TransformView{item: item}
}

func (v *TransformView) Kind() string { return plan.TypeDataTransform }

func (v *TransformView) Input() [][]any { return copyRows(v.item.Rows) }

// Output applies the configured filter. An unknown column or operator
// passes everything through.
func (v *TransformView) Output() [][]any {
	idx := columnIndex(v.item.Columns, v.item.FilterCol)
	if idx < 0 || v.item.FilterOp == "" {
		return copyRows(v.item.Rows)
	}
	var out [][]any
	for _, row := range v.item.Rows {
		if matchFilter(cell(row, idx), v.item.FilterOp, v.item.FilterValue) {
			out = append(out, append([]any(nil), row...))
		}
	}
	return out
}

// JoinView backs join_visualizer: inner join of two tables on key columns.
type JoinView struct {
	item plan.JoinVisualizer
}

func NewJoinView(item plan.JoinVisualizer) *JoinView {
	return &JoinView{item: item}
}

func (v *JoinView) Kind() string { return plan.TypeJoinVisualizer }

// Joined returns the combined header and the inner-joined rows in left-table
// order.
func (v *JoinView) Joined() ([]string, [][]any) {
	leftIdx := columnIndex(v.item.LeftColumns, v.item.LeftKey)
	rightIdx := columnIndex(v.item.RightColumns, v.item.RightKey)

	header := append(append([]string(nil), v.item.LeftColumns...), v.item.RightColumns...)
	if leftIdx < 0 || rightIdx < 0 {
		return header, nil
	}

	var rows [][]any
	for _, left := range v.item.LeftRows {
		key := fmt.Sprint(cell(left, leftIdx))
		for _, right := range v.item.RightRows {
			if fmt.Sprint(cell(right, rightIdx)) == key {
				rows = append(rows, append(append([]any(nil), left...), right...))
			}
		}
	}
	return header, rows
}

// GraphView backs graph_manipulator: samples y = f(x) for the current
// slope/intercept, reading overrides from same-named store variables so
// sliders can drive the curve.
type GraphView struct {
	item  plan.GraphManipulator
	store *session.Store
}

func NewGraphView(item plan.GraphManipulator, store *session.Store) *GraphView {
	return &GraphView{item: item, store: store}
}

func (g *GraphView) Kind() string { return plan.TypeGraphManip }

func (g *GraphView) Slope() float64 {
	return g.override("slope", g.item.Slope)
}

func (g *GraphView) Intercept() float64 {
	return g.override("intercept", g.item.Intercept)
}

// Sample evaluates the configured function at each x.
func (g *GraphView) Sample(xs []float64) []float64 {
	slope, intercept := g.Slope(), g.Intercept()
	ys := make([]float64, len(xs))
	for i, x := range xs {
		switch g.item.Mode {
		case "quadratic":
			ys[i] = slope*x*x + intercept
		default:
			ys[i] = slope*x + intercept
		}
	}
	return ys
}

func (g *GraphView) override(name string, fallback float64) float64 {
	if v, ok := g.store.Variable(name); ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return fallback
}

// DiffView backs output_diff: line-by-line comparison of expected against
// either a literal actual or a store variable.
type DiffView struct {
	item  plan.OutputDiff
	store *session.Store
}

type DiffLine struct {
	Expected string
	Actual   string
	Same     bool
}

func NewDiffView(item plan.OutputDiff, store *session.Store) *DiffView {
	return &DiffView{item: item, store: store}
}

func (d *DiffView) Kind() string { return plan.TypeOutputDiff }

func (d *DiffView) Actual() string {
	if d.item.ActualVar != "" {
		if v, ok := d.store.Variable(d.item.ActualVar); ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	return d.item.Actual
}

func (d *DiffView) Lines() []DiffLine {
	expected := strings.Split(d.item.Expected, "\n")
	actual := strings.Split(d.Actual(), "\n")

	n := len(expected)
	if len(actual) > n {
		n = len(actual)
	}
	out := make([]DiffLine, n)
	for i := range out {
		var e, a string
		if i < len(expected) {
			e = expected[i]
		}
		if i < len(actual) {
			a = actual[i]
		}
		out[i] = DiffLine{Expected: e, Actual: a, Same: e == a}
	}
	return out
}

// Inspector backs state_inspector: a read-only view of the store, optionally
// restricted to listed names.
type Inspector struct {
	item  plan.StateInspector
	store *session.Store
}

func NewInspector(item plan.StateInspector, store *session.Store) *Inspector {
	return &Inspector{item: item, store: store}
}

func (i *Inspector) Kind() string { return plan.TypeStateInspector }

func (i *Inspector) View() map[string]any {
	vars := i.store.Variables()
	if len(i.item.Filter) == 0 {
		return vars
	}
	out := make(map[string]any)
	for _, name := range i.item.Filter {
		if v, ok := vars[name]; ok {
			out[name] = v
		}
	}
	return out
}

func copyRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func lessValue(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func matchFilter(value any, op string, target any) bool {
	vf, vok := toFloat(value)
	tf, tok := toFloat(target)
	if vok && tok {
		switch op {
		case "==":
			return vf == tf
		case "!=":
			return vf != tf
		case ">":
			return vf > tf
		case ">=":
			return vf >= tf
		case "<":
			return vf < tf
		case "<=":
			return vf <= tf
		}
		return true
	}

	vs, ts := fmt.Sprint(value), fmt.Sprint(target)
	switch op {
	case "==":
		return vs == ts
	case "!=":
		return vs != ts
	case "contains":
		return strings.Contains(strings.ToLower(vs), strings.ToLower(ts))
	}
	return true
}
