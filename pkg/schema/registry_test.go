package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
)

func TestDefaultImputationTable(t *testing.T) {
	want := map[string]Strategy{
		CreditScore:                   Median,
		MortgageInsurancePercentage:   Median,
		OriginalCombinedLoanToValue:   Mean,
		OriginalDebtToIncomeRatio:     Mean,
		OriginalLoanToValue:           Mean,
		NumberOfBorrowers:             Mode,
		FirstTimeHomebuyerFlag:        Mode,
		MetropolitanStatisticalArea:   Mode,
		PrepaymentPenaltyMortgageFlag: Mode,
		PostalCode:                    Mode,
		PropertyType:                  Mode,
		NumberOfUnits:                 Mode,
	}

	imputed := Default().Imputed()
	require.Len(t, imputed, len(want))
	for _, f := range imputed {
		assert.Equal(t, want[f.Name], f.Strategy, f.Name)
	}
	assert.Equal(t, CreditScore, imputed[0].Name, "declaration order is kept")
}

func TestNewRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry(Field{Name: "A"}, Field{Name: "A"})
	assert.ErrorIs(t, err, errors.ErrSchema)
}

func TestLookup(t *testing.T) {
	r := Default()
	f, ok := r.Lookup(PropertyType)
	require.True(t, ok)
	assert.Equal(t, frame.Categorical, f.Kind)
	assert.Equal(t, "mode", f.Strategy.String())

	_, ok = r.Lookup("LOAN_SEQUENCE_NUMBER")
	assert.False(t, ok)
}

func TestConform(t *testing.T) {
	r := Default()

	t.Run("all-missing column takes declared kind", func(t *testing.T) {
		f, err := frame.FromRecords([]string{PropertyType, CreditScore}, []frame.Record{
			{PropertyType: nil, CreditScore: 700},
		})
		require.NoError(t, err)

		out, err := r.Conform(f)
		require.NoError(t, err)
		c, _ := out.Col(PropertyType)
		assert.Equal(t, frame.Categorical, c.Kind())

		orig, _ := f.Col(PropertyType)
		assert.Equal(t, frame.Numeric, orig.Kind(), "input is not modified")
	})

	t.Run("kind mismatch", func(t *testing.T) {
		f, err := frame.FromRecords(nil, []frame.Record{{CreditScore: "high"}})
		require.NoError(t, err)
		_, err = r.Conform(f)
		var se *errors.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, CreditScore, se.Field)
	})

	t.Run("packed dates may arrive as text", func(t *testing.T) {
		f, err := frame.FromRecords(nil, []frame.Record{{FirstPaymentDate: "201501", MaturityDate: "204412"}})
		require.NoError(t, err)
		_, err = r.Conform(f)
		assert.NoError(t, err)
	})

	t.Run("bool accepted for numeric and any kind for delinquent", func(t *testing.T) {
		f, err := frame.FromRecords(nil, []frame.Record{{NumberOfUnits: true, Delinquent: "Y", "EXTRA": "x"}})
		require.NoError(t, err)
		_, err = r.Conform(f)
		assert.NoError(t, err)
	})
}

func TestRequire(t *testing.T) {
	f := frame.New(0)
	err := Require(f, FirstPaymentYear)
	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, FirstPaymentYear, se.Field)
	assert.Equal(t, "Missing_CREDIT_SCORE", MissingIndicator(CreditScore))
}
