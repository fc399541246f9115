package loader

import (
	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
	"loanprep/pkg/schema"
)

// TemporalSplit partitions f by first payment year: rows paid first in or
// before splitYear go to train, later rows to test. Row order and row
// identity are kept within each partition.
func TemporalSplit(f *frame.Frame, splitYear int) (train, test *frame.Frame, err error) {
	return SplitByYear(f, schema.FirstPaymentYear, splitYear)
}

// SplitByYear partitions f on a numeric year column. Every row lands in
// exactly one partition; a row with a missing year cannot be placed and
// fails the split.
func SplitByYear(f *frame.Frame, field string, splitYear int) (train, test *frame.Frame, err error) {
	if err := schema.Require(f, field); err != nil {
		return nil, nil, err
	}
	c, _ := f.Col(field)
	if c.Kind() != frame.Numeric {
		return nil, nil, errors.NewSchemaError(field, "split needs a numeric year, found %s", c.Kind())
	}

	var trainRows, testRows []int
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			return nil, nil, errors.NewSchemaError(field, "row %d has no year and cannot be placed", f.Index()[i])
		}
		if c.Float(i) <= float64(splitYear) {
			trainRows = append(trainRows, i)
		} else {
			testRows = append(testRows, i)
		}
	}
	return f.Take(trainRows), f.Take(testRows), nil
}
