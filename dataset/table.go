package dataset

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// Table is an immutable numeric table with named float64 columns.
type Table struct {
	df    dataframe.DataFrame
	names []string
}

// New builds a Table from column slices given in names order.
// All columns must have the same length.
func New(names []string, columns [][]float64) (*Table, error) {
	if len(names) != len(columns) {
		return nil, errors.NewDimensionError("dataset.New", len(names), len(columns), 1)
	}
	if len(names) == 0 {
		return nil, errors.NewValueError("dataset.New", "table needs at least one column")
	}
	ss := make([]series.Series, len(names))
	for i, name := range names {
		if len(columns[i]) != len(columns[0]) {
			return nil, errors.NewDimensionError("dataset.New", len(columns[0]), len(columns[i]), 0)
		}
		vals := make([]float64, len(columns[i]))
		copy(vals, columns[i])
		ss[i] = series.New(vals, series.Float, name)
	}
	return fromFrame(dataframe.New(ss...))
}

// FromRows builds a Table from row-major data.
func FromRows(names []string, rows [][]float64) (*Table, error) {
	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, errors.NewDimensionError("dataset.FromRows", len(names), len(row), 1)
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return New(names, cols)
}

// FromMatrix builds a Table from a dense matrix whose columns are named by names.
func FromMatrix(names []string, m mat.Matrix) (*Table, error) {
	r, c := m.Dims()
	if c != len(names) {
		return nil, errors.NewDimensionError("dataset.FromMatrix", len(names), c, 1)
	}
	df := dataframe.LoadMatrix(m)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "dataset.FromMatrix")
	}
	if err := df.SetNames(names...); err != nil {
		return nil, errors.Wrap(err, "dataset.FromMatrix")
	}
	t, err := fromFrame(df)
	if err != nil {
		return nil, err
	}
	if t.Nrow() != r {
		return nil, errors.NewDimensionError("dataset.FromMatrix", r, t.Nrow(), 0)
	}
	return t, nil
}

func fromFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "dataset: build frame")
	}
	return &Table{df: df, names: df.Names()}, nil
}

// empty returns a zero-row table with the same columns.
func (t *Table) empty() *Table {
	cols := make([][]float64, len(t.names))
	for i := range cols {
		cols[i] = []float64{}
	}
	out, _ := New(t.names, cols)
	return out
}

// Nrow returns the number of rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns.
func (t *Table) Ncol() int { return len(t.names) }

// Names returns a copy of the column names.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the table has a column named name.
func (t *Table) Has(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns a copy of the named column. Unknown columns yield nil.
func (t *Table) Column(name string) []float64 {
	if !t.Has(name) {
		return nil
	}
	return t.df.Col(name).Float()
}

// Frame exposes the underlying gota DataFrame.
func (t *Table) Frame() dataframe.DataFrame { return t.df.Copy() }

// Subset returns the rows at the given indices, in that order.
func (t *Table) Subset(rows []int) *Table {
	if len(rows) == 0 {
		return t.empty()
	}
	out, err := fromFrame(t.df.Subset(rows))
	if err != nil {
		// indices come from this package; an out-of-range index is a bug
		panic(err)
	}
	return out
}

// WithColumn returns a table where column name is replaced by values.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if !t.Has(name) {
		return nil, errors.NewValidationError("column", "unknown column", name)
	}
	if len(values) != t.Nrow() {
		return nil, errors.NewDimensionError("dataset.WithColumn", t.Nrow(), len(values), 0)
	}
	if t.Nrow() == 0 {
		return t, nil
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return fromFrame(t.df.Mutate(series.New(vals, series.Float, name)))
}

// Matrix returns all columns as an n×Ncol matrix, or nil for an empty table.
func (t *Table) Matrix() *mat.Dense {
	return t.columnsMatrix(t.names)
}

// Features returns the feature columns (every column except Outcome).
func (t *Table) Features() *mat.Dense {
	names := make([]string, 0, len(t.names))
	for _, n := range t.names {
		if n != Outcome {
			names = append(names, n)
		}
	}
	return t.columnsMatrix(names)
}

// Labels returns the Outcome column as an n×1 matrix.
func (t *Table) Labels() *mat.Dense {
	return t.columnsMatrix([]string{Outcome})
}

func (t *Table) columnsMatrix(names []string) *mat.Dense {
	n := t.Nrow()
	if n == 0 || len(names) == 0 {
		return nil
	}
	m := mat.NewDense(n, len(names), nil)
	for j, name := range names {
		m.SetCol(j, t.Column(name))
	}
	return m
}

// ClassCounts returns the number of rows with Outcome 0 and Outcome 1.
func (t *Table) ClassCounts() (l0, l1 int) {
	for _, v := range t.Column(Outcome) {
		switch v {
		case 0:
			l0++
		case 1:
			l1++
		}
	}
	return l0, l1
}

// ClassRows returns the row indices whose Outcome equals label, in table order.
func (t *Table) ClassRows(label float64) []int {
	var idx []int
	for i, v := range t.Column(Outcome) {
		if v == label {
			idx = append(idx, i)
		}
	}
	return idx
}

// Equal reports whether two tables have the same columns and values within tol.
func (t *Table) Equal(o *Table, tol float64) bool {
	if t.Nrow() != o.Nrow() || t.Ncol() != o.Ncol() {
		return false
	}
	for j, name := range t.names {
		if o.names[j] != name {
			return false
		}
		a, b := t.Column(name), o.Column(name)
		for i := range a {
			if math.Abs(a[i]-b[i]) > tol {
				return false
			}
		}
	}
	return true
}

// String renders the table through gota.
func (t *Table) String() string { return t.df.String() }
