// Package frame holds the record set passed between preparation stages: an
// ordered list of typed, nullable columns sharing a row index. The row index
// identifies the originating row and survives filtering, so frames derived
// from the same source can be joined back together.
package frame

import (
	"slices"

	"loanprep/pkg/core"
	"loanprep/pkg/errors"
)

// Frame is an ordered collection of equally long columns.
type Frame struct {
	cols  []*Column
	pos   map[string]int
	index []int
}

// New creates an empty frame with n rows indexed 0..n-1.
func New(n int) *Frame {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	return NewWithIndex(index)
}

// NewWithIndex creates an empty frame with the given row index.
func NewWithIndex(index []int) *Frame {
	return &Frame{pos: make(map[string]int), index: append([]int(nil), index...)}
}

func (f *Frame) Nrow() int { return len(f.index) }
func (f *Frame) Ncol() int { return len(f.cols) }

// Index returns a copy of the row index.
func (f *Frame) Index() []int { return append([]int(nil), f.index...) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.pos[name]
	return ok
}

// Col returns the named column. The column is owned by the frame.
func (f *Frame) Col(name string) (*Column, bool) {
	i, ok := f.pos[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Columns returns the frame's columns in order.
func (f *Frame) Columns() []*Column { return slices.Clone(f.cols) }

// Add appends a column. It fails if the name is taken or the length differs
// from the frame's row count.
func (f *Frame) Add(c *Column) error {
	if f.Has(c.name) {
		return errors.NewSchemaError(c.name, "duplicate column")
	}
	if c.Len() != f.Nrow() {
		return errors.NewSchemaError(c.name, "column has %d rows, frame has %d", c.Len(), f.Nrow())
	}
	f.pos[c.name] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// Replace swaps the column with the same name in place, keeping its position.
func (f *Frame) Replace(c *Column) error {
	i, ok := f.pos[c.name]
	if !ok {
		return errors.MissingField(c.name)
	}
	if c.Len() != f.Nrow() {
		return errors.NewSchemaError(c.name, "column has %d rows, frame has %d", c.Len(), f.Nrow())
	}
	f.cols[i] = c
	return nil
}

// Drop removes the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	for _, name := range names {
		if _, ok := f.pos[name]; !ok {
			continue
		}
		f.cols = slices.DeleteFunc(f.cols, func(c *Column) bool { return c.name == name })
		f.reindex()
	}
}

func (f *Frame) reindex() {
	clear(f.pos)
	for i, c := range f.cols {
		f.pos[c.name] = i
	}
}

// Clone deep copies the frame.
func (f *Frame) Clone() *Frame {
	out := NewWithIndex(f.index)
	for _, c := range f.cols {
		out.pos[c.name] = len(out.cols)
		out.cols = append(out.cols, c.Clone())
	}
	return out
}

// Take returns a new frame holding the rows at the given positions, in the
// given order. Row identities are carried over.
func (f *Frame) Take(rows []int) *Frame {
	index := make([]int, len(rows))
	for j, r := range rows {
		index[j] = f.index[r]
	}
	out := NewWithIndex(index)
	for _, c := range f.cols {
		out.pos[c.name] = len(out.cols)
		out.cols = append(out.cols, c.take(rows))
	}
	return out
}

// Filter returns a deep copy holding only the columns for which keep is true.
func (f *Frame) Filter(keep func(*Column) bool) *Frame {
	out := NewWithIndex(f.index)
	for _, c := range f.cols {
		if keep(c) {
			out.pos[c.name] = len(out.cols)
			out.cols = append(out.cols, c.Clone())
		}
	}
	return out
}

// Join returns a new frame with the columns of left followed by those of
// right. Both frames must carry the same row index.
func Join(left, right *Frame) (*Frame, error) {
	if !slices.Equal(left.index, right.index) {
		return nil, errors.NewSchemaError("", "cannot join frames with different row indexes")
	}
	out := left.Clone()
	for _, c := range right.cols {
		if err := out.Add(c.Clone()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Matrix converts the frame to a dense matrix. Bool columns become 0/1 and
// missing values NaN. Categorical columns are rejected.
func (f *Frame) Matrix() (*core.Matrix, error) {
	m := core.NewMatrix(f.Nrow(), f.Ncol())
	m.Cols = f.Names()
	m.Index = f.Index()
	for j, c := range f.cols {
		if c.kind == Categorical {
			return nil, errors.NewSchemaError(c.name, "categorical column cannot be converted to a matrix")
		}
		for i := 0; i < f.Nrow(); i++ {
			m.Set(i, j, c.Float(i))
		}
	}
	return m, nil
}
