package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
	"loanprep/pkg/schema"
)

func TestTidyData_DecomposesPackedDates(t *testing.T) {
	in, err := frame.FromRecords([]string{"MATURITY_DATE", "FIRST_PAYMENT_DATE", "CREDIT_SCORE"}, []frame.Record{
		{"MATURITY_DATE": 204512, "FIRST_PAYMENT_DATE": 201501, "CREDIT_SCORE": 700},
		{"MATURITY_DATE": 203001, "FIRST_PAYMENT_DATE": nil, "CREDIT_SCORE": 650},
	})
	require.NoError(t, err)

	out, err := TidyData(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"CREDIT_SCORE", "MATURITY_YEAR", "MATURITY_MON", "FIRST_PAYMENT_YEAR", "FIRST_PAYMENT_MON"}, out.Names())
	assert.False(t, out.Has(schema.MaturityDate))
	assert.False(t, out.Has(schema.FirstPaymentDate))

	year, _ := out.Col(schema.MaturityYear)
	mon, _ := out.Col(schema.MaturityMonth)
	assert.Equal(t, []float64{2045, 2030}, year.Floats())
	assert.Equal(t, []float64{12, 1}, mon.Floats())

	fpy, _ := out.Col(schema.FirstPaymentYear)
	assert.Equal(t, 2015.0, fpy.Float(0))
	assert.True(t, fpy.IsNull(1), "missing packed date stays missing")

	assert.True(t, in.Has(schema.MaturityDate), "input is not modified")
}

func TestTidyData_AllMonths(t *testing.T) {
	for y := 1999; y <= 2001; y++ {
		for m := 1; m <= 12; m++ {
			in, err := frame.FromRecords(nil, []frame.Record{{"MATURITY_DATE": y*100 + m}})
			require.NoError(t, err)
			out, err := TidyData(in)
			require.NoError(t, err)
			assert.Equal(t, frame.Record{"MATURITY_YEAR": float64(y), "MATURITY_MON": float64(m)}, out.Record(0))
		}
	}
}

func TestTidyData_Delinquent(t *testing.T) {
	tests := []struct {
		name string
		vals []any
		want []any
	}{
		{"bool", []any{true, false, nil}, []any{1.0, 0.0, nil}},
		{"flag strings", []any{"Y", "N", "true"}, []any{1.0, 0.0, 1.0}},
		{"already numeric", []any{1, 0, nil}, []any{1.0, 0.0, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := make([]frame.Record, len(tt.vals))
			for i, v := range tt.vals {
				recs[i] = frame.Record{"DELINQUENT": v}
			}
			in, err := frame.FromRecords(nil, recs)
			require.NoError(t, err)

			out, err := TidyData(in)
			require.NoError(t, err)
			c, _ := out.Col(schema.Delinquent)
			assert.Equal(t, frame.Numeric, c.Kind())
			for i, want := range tt.want {
				assert.Equal(t, want, c.Value(i), "row %d", i)
			}
		})
	}

	in, err := frame.FromRecords(nil, []frame.Record{{"DELINQUENT": "maybe"}})
	require.NoError(t, err)
	_, err = TidyData(in)
	assert.ErrorIs(t, err, errors.ErrSchema)
}

func TestTidyData_CategoricalPackedDate(t *testing.T) {
	in, err := frame.FromRecords(nil, []frame.Record{{"FIRST_PAYMENT_DATE": "201703"}})
	require.NoError(t, err)
	out, err := TidyData(in)
	require.NoError(t, err)
	assert.Equal(t, frame.Record{"FIRST_PAYMENT_YEAR": 2017.0, "FIRST_PAYMENT_MON": 3.0}, out.Record(0))

	bad, err := frame.FromRecords(nil, []frame.Record{{"FIRST_PAYMENT_DATE": "March"}})
	require.NoError(t, err)
	_, err = TidyData(bad)
	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.FirstPaymentDate, se.Field)
}

func TestTidyData_Idempotent(t *testing.T) {
	in, err := frame.FromRecords(nil, []frame.Record{
		{"FIRST_PAYMENT_DATE": 201501, "DELINQUENT": true},
		{"FIRST_PAYMENT_DATE": 201612, "DELINQUENT": false},
	})
	require.NoError(t, err)

	once, err := TidyData(in)
	require.NoError(t, err)
	twice, err := TidyData(once)
	require.NoError(t, err)

	assert.Equal(t, once.Names(), twice.Names())
	assert.Equal(t, once.Records(), twice.Records())
}

func TestTidyData_NoSpecialFields(t *testing.T) {
	in, err := frame.FromRecords(nil, []frame.Record{{"CREDIT_SCORE": 700}})
	require.NoError(t, err)
	out, err := TidyData(in)
	require.NoError(t, err)
	assert.Equal(t, in.Records(), out.Records())
}
