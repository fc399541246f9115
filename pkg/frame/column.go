package frame

import (
	"math"
	"strconv"
)

// Kind is the semantic type of a column.
type Kind int

const (
	Numeric Kind = iota
	Bool
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Bool:
		return "bool"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named, typed, nullable column. Numeric and Bool columns store
// their values as float64 (Bool as 0/1); Categorical columns store strings.
type Column struct {
	name string
	kind Kind
	num  []float64
	str  []string
	null []bool
}

// NewNumeric creates a numeric column. When null is nil, NaN values are
// treated as missing.
func NewNumeric(name string, vals []float64, null []bool) *Column {
	c := &Column{name: name, kind: Numeric, num: append([]float64(nil), vals...)}
	c.null = nullMask(len(vals), null, func(i int) bool { return math.IsNaN(vals[i]) })
	for i, isNull := range c.null {
		if isNull {
			c.num[i] = math.NaN()
		}
	}
	return c
}

// NewBool creates a boolean column.
func NewBool(name string, vals []bool, null []bool) *Column {
	c := &Column{name: name, kind: Bool, num: make([]float64, len(vals))}
	c.null = nullMask(len(vals), null, nil)
	for i, v := range vals {
		switch {
		case c.null[i]:
			c.num[i] = math.NaN()
		case v:
			c.num[i] = 1
		}
	}
	return c
}

// NewCategorical creates a categorical column.
func NewCategorical(name string, vals []string, null []bool) *Column {
	c := &Column{name: name, kind: Categorical, str: append([]string(nil), vals...)}
	c.null = nullMask(len(vals), null, nil)
	for i, isNull := range c.null {
		if isNull {
			c.str[i] = ""
		}
	}
	return c
}

// NewNull creates a column of the given kind where every value is missing.
func NewNull(name string, kind Kind, n int) *Column {
	null := make([]bool, n)
	for i := range null {
		null[i] = true
	}
	switch kind {
	case Bool:
		return NewBool(name, make([]bool, n), null)
	case Categorical:
		return NewCategorical(name, make([]string, n), null)
	default:
		return NewNumeric(name, make([]float64, n), null)
	}
}

func nullMask(n int, null []bool, derive func(int) bool) []bool {
	if null != nil && len(null) != n {
		panic("frame: null mask length does not match values")
	}
	out := make([]bool, n)
	for i := range out {
		switch {
		case null != nil:
			out[i] = null[i]
		case derive != nil:
			out[i] = derive(i)
		}
	}
	return out
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.null) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return c.null[i] }

// NullCount returns the number of missing values.
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// Nulls returns a copy of the null mask.
func (c *Column) Nulls() []bool { return append([]bool(nil), c.null...) }

// Float returns row i as a number. Missing values and categorical columns
// yield NaN.
func (c *Column) Float(i int) float64 {
	if c.kind == Categorical || c.null[i] {
		return math.NaN()
	}
	return c.num[i]
}

// String returns row i formatted as text; missing values yield "".
func (c *Column) String(i int) string {
	if c.null[i] {
		return ""
	}
	switch c.kind {
	case Categorical:
		return c.str[i]
	case Bool:
		return strconv.FormatBool(c.num[i] != 0)
	default:
		return strconv.FormatFloat(c.num[i], 'f', -1, 64)
	}
}

// Value returns row i as nil, float64, bool or string.
func (c *Column) Value(i int) any {
	if c.null[i] {
		return nil
	}
	switch c.kind {
	case Categorical:
		return c.str[i]
	case Bool:
		return c.num[i] != 0
	default:
		return c.num[i]
	}
}

// Floats returns a copy of the values of a numeric or bool column, with NaN
// in place of missing values.
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// ValidFloats returns the non-missing values of a numeric or bool column.
func (c *Column) ValidFloats() []float64 {
	if c.kind == Categorical {
		return nil
	}
	out := make([]float64, 0, c.Len())
	for i, isNull := range c.null {
		if !isNull {
			out = append(out, c.num[i])
		}
	}
	return out
}

// ValidStrings returns the non-missing values of a categorical column.
func (c *Column) ValidStrings() []string {
	if c.kind != Categorical {
		return nil
	}
	out := make([]string, 0, c.Len())
	for i, isNull := range c.null {
		if !isNull {
			out = append(out, c.str[i])
		}
	}
	return out
}

// SetFloat stores v at row i of a numeric or bool column and clears its null
// flag. NaN marks the value missing.
func (c *Column) SetFloat(i int, v float64) {
	if c.kind == Categorical {
		panic("frame: SetFloat on categorical column " + c.name)
	}
	c.num[i] = v
	c.null[i] = math.IsNaN(v)
}

// SetString stores v at row i of a categorical column and clears its null
// flag.
func (c *Column) SetString(i int, v string) {
	if c.kind != Categorical {
		panic("frame: SetString on non-categorical column " + c.name)
	}
	c.str[i] = v
	c.null[i] = false
}

// AsNumeric returns a numeric copy of a numeric or bool column. Bool values
// become 0/1.
func (c *Column) AsNumeric() *Column {
	if c.kind == Categorical {
		panic("frame: AsNumeric on categorical column " + c.name)
	}
	n := c.Clone()
	n.kind = Numeric
	return n
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	n := c.Clone()
	n.name = name
	return n
}

// Clone deep copies the column.
func (c *Column) Clone() *Column {
	return &Column{
		name: c.name,
		kind: c.kind,
		num:  append([]float64(nil), c.num...),
		str:  append([]string(nil), c.str...),
		null: append([]bool(nil), c.null...),
	}
}

func (c *Column) take(rows []int) *Column {
	n := &Column{name: c.name, kind: c.kind, null: make([]bool, len(rows))}
	if c.kind == Categorical {
		n.str = make([]string, len(rows))
	} else {
		n.num = make([]float64, len(rows))
	}
	for j, r := range rows {
		n.null[j] = c.null[r]
		if c.kind == Categorical {
			n.str[j] = c.str[r]
		} else {
			n.num[j] = c.num[r]
		}
	}
	return n
}
