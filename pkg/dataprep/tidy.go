package dataprep

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
	"loanprep/pkg/schema"
)

// PackedDateFields are the YYYYMM fields split by TidyData, in output order.
var PackedDateFields = []string{schema.MaturityDate, schema.FirstPaymentDate}

// TidyData returns a copy of f with every packed YYYYMM date field replaced
// by <BASE>_YEAR and <BASE>_MON columns, and DELINQUENT coerced to 0/1.
// Absent fields are skipped, so calling it on tidy data changes nothing.
func TidyData(f *frame.Frame) (*frame.Frame, error) {
	out := f.Clone()
	for _, field := range PackedDateFields {
		if err := decomposeDate(out, field); err != nil {
			return nil, err
		}
	}
	if err := coerceDelinquent(out); err != nil {
		return nil, err
	}
	return out, nil
}

func decomposeDate(f *frame.Frame, field string) error {
	c, ok := f.Col(field)
	if !ok {
		return nil
	}
	packed, err := packedValues(c)
	if err != nil {
		return err
	}

	n := c.Len()
	year := make([]float64, n)
	mon := make([]float64, n)
	for i, v := range packed {
		if math.IsNaN(v) {
			year[i], mon[i] = math.NaN(), math.NaN()
			continue
		}
		y := math.Floor(v / 100)
		year[i], mon[i] = y, v-100*y
	}

	base := strings.TrimSuffix(field, "_DATE")
	for _, col := range []*frame.Column{
		frame.NewNumeric(base+"_YEAR", year, nil),
		frame.NewNumeric(base+"_MON", mon, nil),
	} {
		if err := put(f, col); err != nil {
			return err
		}
	}
	f.Drop(field)
	return nil
}

// packedValues reads a packed date column as numbers, with NaN for missing
// values. Categorical columns must hold integers.
func packedValues(c *frame.Column) ([]float64, error) {
	if c.Kind() != frame.Categorical {
		return c.Floats(), nil
	}
	out := make([]float64, c.Len())
	for i := range out {
		if c.IsNull(i) {
			out[i] = math.NaN()
			continue
		}
		v, err := cast.ToInt64E(strings.TrimSpace(c.String(i)))
		if err != nil {
			return nil, errors.NewSchemaError(c.Name(), "row %d: %q is not a packed YYYYMM date", i, c.String(i))
		}
		out[i] = float64(v)
	}
	return out, nil
}

func coerceDelinquent(f *frame.Frame) error {
	c, ok := f.Col(schema.Delinquent)
	if !ok {
		return nil
	}
	switch c.Kind() {
	case frame.Numeric:
		return nil
	case frame.Bool:
		return f.Replace(c.AsNumeric())
	}

	vals := make([]float64, c.Len())
	for i := range vals {
		if c.IsNull(i) {
			vals[i] = math.NaN()
			continue
		}
		b, err := parseFlag(c.String(i))
		if err != nil {
			return errors.NewSchemaError(c.Name(), "row %d: %q is not boolean", i, c.String(i))
		}
		if b {
			vals[i] = 1
		}
	}
	return f.Replace(frame.NewNumeric(c.Name(), vals, nil))
}

// parseFlag accepts Y/N in addition to the forms understood by cast.
func parseFlag(s string) (bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "Y", "YES":
		return true, nil
	case "N", "NO":
		return false, nil
	}
	return cast.ToBoolE(s)
}

// put adds c to f, replacing a column of the same name.
func put(f *frame.Frame, c *frame.Column) error {
	if f.Has(c.Name()) {
		return f.Replace(c)
	}
	return f.Add(c)
}
