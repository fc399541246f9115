// Package schema declares the fields of the mortgage origination dataset
// that the preparation stages depend on: their kind and, for imputed
// fields, the statistic used to fill missing values.
package schema

import (
	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
)

// Strategy is the fill statistic for an imputed field.
type Strategy int

const (
	None Strategy = iota
	Mean
	Median
	Mode
)

func (s Strategy) String() string {
	switch s {
	case Mean:
		return "mean"
	case Median:
		return "median"
	case Mode:
		return "mode"
	default:
		return "none"
	}
}

// Field names used by the stages.
const (
	MaturityDate     = "MATURITY_DATE"
	FirstPaymentDate = "FIRST_PAYMENT_DATE"
	MaturityYear     = "MATURITY_YEAR"
	MaturityMonth    = "MATURITY_MON"
	FirstPaymentYear = "FIRST_PAYMENT_YEAR"
	FirstPaymentMon  = "FIRST_PAYMENT_MON"
	Delinquent       = "DELINQUENT"

	CreditScore                   = "CREDIT_SCORE"
	MortgageInsurancePercentage   = "MORTGAGE_INSURANCE_PERCENTAGE"
	OriginalCombinedLoanToValue   = "ORIGINAL_COMBINED_LOAN_TO_VALUE"
	OriginalDebtToIncomeRatio     = "ORIGINAL_DEBT_TO_INCOME_RATIO"
	OriginalLoanToValue           = "ORIGINAL_LOAN_TO_VALUE"
	NumberOfBorrowers             = "NUMBER_OF_BORROWERS"
	FirstTimeHomebuyerFlag        = "FIRST_TIME_HOMEBUYER_FLAG"
	MetropolitanStatisticalArea   = "METROPOLITAN_STATISTICAL_AREA"
	PrepaymentPenaltyMortgageFlag = "PREPAYMENT_PENALTY_MORTGAGE_FLAG"
	PostalCode                    = "POSTAL_CODE"
	PropertyType                  = "PROPERTY_TYPE"
	NumberOfUnits                 = "NUMBER_OF_UNITS"
)

// MissingPrefix prefixes the name of a missingness indicator column.
const MissingPrefix = "Missing_"

// MissingIndicator returns the indicator column name for field.
func MissingIndicator(field string) string { return MissingPrefix + field }

// Field is one registry entry.
type Field struct {
	Name     string
	Kind     frame.Kind
	Strategy Strategy
	// AnyKind lets the field arrive as any kind; a stage coerces it.
	AnyKind bool
}

func (f Field) accepts(k frame.Kind) bool {
	if f.AnyKind || f.Kind == k {
		return true
	}
	// bool columns are 0/1 numbers
	return f.Kind == frame.Numeric && k == frame.Bool
}

// Registry is an ordered set of field declarations.
type Registry struct {
	fields []Field
	byName map[string]int
}

// NewRegistry creates a registry. Field names must be unique.
func NewRegistry(fields ...Field) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, ok := r.byName[f.Name]; ok {
			return nil, errors.NewSchemaError(f.Name, "declared twice")
		}
		r.byName[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// Default returns the registry for the Freddie Mac origination layout.
func Default() *Registry {
	r, err := NewRegistry(
		Field{Name: MaturityDate, Kind: frame.Numeric, AnyKind: true},
		Field{Name: FirstPaymentDate, Kind: frame.Numeric, AnyKind: true},
		Field{Name: MaturityYear, Kind: frame.Numeric},
		Field{Name: MaturityMonth, Kind: frame.Numeric},
		Field{Name: FirstPaymentYear, Kind: frame.Numeric},
		Field{Name: FirstPaymentMon, Kind: frame.Numeric},
		Field{Name: Delinquent, Kind: frame.Numeric, AnyKind: true},

		Field{Name: CreditScore, Kind: frame.Numeric, Strategy: Median},
		Field{Name: MortgageInsurancePercentage, Kind: frame.Numeric, Strategy: Median},
		Field{Name: OriginalCombinedLoanToValue, Kind: frame.Numeric, Strategy: Mean},
		Field{Name: OriginalDebtToIncomeRatio, Kind: frame.Numeric, Strategy: Mean},
		Field{Name: OriginalLoanToValue, Kind: frame.Numeric, Strategy: Mean},
		Field{Name: NumberOfBorrowers, Kind: frame.Numeric, Strategy: Mode},
		Field{Name: FirstTimeHomebuyerFlag, Kind: frame.Categorical, Strategy: Mode},
		Field{Name: MetropolitanStatisticalArea, Kind: frame.Numeric, Strategy: Mode},
		Field{Name: PrepaymentPenaltyMortgageFlag, Kind: frame.Categorical, Strategy: Mode},
		Field{Name: PostalCode, Kind: frame.Numeric, Strategy: Mode},
		Field{Name: PropertyType, Kind: frame.Categorical, Strategy: Mode},
		Field{Name: NumberOfUnits, Kind: frame.Numeric, Strategy: Mode},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Fields returns every declaration in order.
func (r *Registry) Fields() []Field { return append([]Field(nil), r.fields...) }

// Lookup returns the declaration for name.
func (r *Registry) Lookup(name string) (Field, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Imputed returns the fields that have a fill strategy, in declaration order.
func (r *Registry) Imputed() []Field {
	var out []Field
	for _, f := range r.fields {
		if f.Strategy != None {
			out = append(out, f)
		}
	}
	return out
}

// Require fails with a SchemaError naming the first absent field.
func Require(f *frame.Frame, names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return errors.MissingField(name)
		}
	}
	return nil
}

// Conform checks every declared field present in f against its declared
// kind and returns a copy of f. Columns whose values are all missing take the
// declared kind; any other mismatch is a SchemaError. Undeclared columns are
// carried through unchecked.
func (r *Registry) Conform(f *frame.Frame) (*frame.Frame, error) {
	out := f.Clone()
	for _, c := range out.Columns() {
		decl, ok := r.Lookup(c.Name())
		if !ok || decl.accepts(c.Kind()) {
			continue
		}
		if c.NullCount() == c.Len() {
			if err := out.Replace(frame.NewNull(c.Name(), decl.Kind, c.Len())); err != nil {
				return nil, err
			}
			continue
		}
		return nil, errors.NewSchemaError(c.Name(), "declared %s, found %s", decl.Kind, c.Kind())
	}
	return out, nil
}
