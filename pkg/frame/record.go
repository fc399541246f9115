package frame

import (
	"math"
	"sort"

	"github.com/spf13/cast"

	"loanprep/pkg/errors"
)

// Record is one row: field name to value. A nil value, or an absent key,
// means the value is missing. Numbers of any Go numeric type are numeric,
// bools are boolean and strings are categorical.
type Record map[string]any

// FromRecords builds a frame from rows. Columns follow the order of fields;
// when fields is nil the sorted union of all record keys is used. A column
// whose values are all missing is numeric.
func FromRecords(fields []string, recs []Record) (*Frame, error) {
	if fields == nil {
		fields = recordKeys(recs)
	}
	f := New(len(recs))
	for _, name := range fields {
		c, err := columnFromRecords(name, recs)
		if err != nil {
			return nil, err
		}
		if err := f.Add(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func recordKeys(recs []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range recs {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func columnFromRecords(name string, recs []Record) (*Column, error) {
	kind, found := Numeric, false
	for _, r := range recs {
		if v := r[name]; v != nil {
			k, err := kindOf(name, v)
			if err != nil {
				return nil, err
			}
			if found && k != kind {
				return nil, errors.NewSchemaError(name, "mixed %s and %s values", kind, k)
			}
			kind, found = k, true
		}
	}

	n := len(recs)
	null := make([]bool, n)
	switch kind {
	case Categorical:
		vals := make([]string, n)
		for i, r := range recs {
			if r[name] == nil {
				null[i] = true
				continue
			}
			vals[i] = r[name].(string)
		}
		return NewCategorical(name, vals, null), nil
	case Bool:
		vals := make([]bool, n)
		for i, r := range recs {
			if r[name] == nil {
				null[i] = true
				continue
			}
			vals[i] = r[name].(bool)
		}
		return NewBool(name, vals, null), nil
	default:
		vals := make([]float64, n)
		for i, r := range recs {
			if r[name] == nil {
				null[i] = true
				continue
			}
			v, err := cast.ToFloat64E(r[name])
			if err != nil {
				return nil, errors.NewSchemaError(name, "row %d: %v", i, err)
			}
			vals[i] = v
			null[i] = math.IsNaN(v)
		}
		return NewNumeric(name, vals, null), nil
	}
}

func kindOf(name string, v any) (Kind, error) {
	switch v.(type) {
	case string:
		return Categorical, nil
	case bool:
		return Bool, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Numeric, nil
	default:
		return 0, errors.NewSchemaError(name, "unsupported value type %T", v)
	}
}

// Record returns row i. Missing values are nil.
func (f *Frame) Record(i int) Record {
	r := make(Record, len(f.cols))
	for _, c := range f.cols {
		r[c.name] = c.Value(i)
	}
	return r
}

// Records returns every row.
func (f *Frame) Records() []Record {
	out := make([]Record, f.Nrow())
	for i := range out {
		out[i] = f.Record(i)
	}
	return out
}
