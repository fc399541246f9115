package dataprep

import (
	"log/slog"
	"slices"
	"sort"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
)

// SplitByKind separates f into its numeric columns (bool columns converted
// to 0/1 numbers) and its categorical columns. Both keep f's row index.
func SplitByKind(f *frame.Frame) (numeric, categorical *frame.Frame, err error) {
	numeric = frame.NewWithIndex(f.Index())
	categorical = frame.NewWithIndex(f.Index())
	for _, c := range f.Columns() {
		switch c.Kind() {
		case frame.Categorical:
			err = categorical.Add(c.Clone())
		case frame.Bool:
			err = numeric.Add(c.AsNumeric())
		default:
			err = numeric.Add(c.Clone())
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return numeric, categorical, nil
}

// OneHotEncoder maps every (column, category) pair seen at fit time to a 0/1
// indicator column. Categories not seen at fit time, and missing values,
// encode as all zeros.
type OneHotEncoder struct {
	columns    []string
	categories [][]string
	fitted     bool
}

// NewOneHotEncoder creates an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder { return &OneHotEncoder{} }

// Fit learns the sorted distinct values of every column of cat.
func (e *OneHotEncoder) Fit(cat *frame.Frame) error {
	if cat.Ncol() == 0 {
		return errors.NewSchemaError("", "no categorical columns to encode")
	}
	columns := make([]string, 0, cat.Ncol())
	categories := make([][]string, 0, cat.Ncol())
	for _, c := range cat.Columns() {
		if c.Kind() != frame.Categorical {
			return errors.NewSchemaError(c.Name(), "one-hot encoding needs a categorical column, found %s", c.Kind())
		}
		levels := c.ValidStrings()
		sort.Strings(levels)
		columns = append(columns, c.Name())
		categories = append(categories, slices.Compact(levels))
	}

	seen := make(map[string]string)
	for j, name := range columns {
		for _, level := range categories[j] {
			feature := featureName(name, level)
			if prev, ok := seen[feature]; ok {
				return errors.NewSchemaError(feature, "indicator name produced by both %s and %s", prev, name)
			}
			seen[feature] = name
		}
	}
	e.columns, e.categories, e.fitted = columns, categories, true
	return nil
}

// Transform encodes cat with the fitted categories. cat must hold exactly the
// columns seen at fit time.
func (e *OneHotEncoder) Transform(cat *frame.Frame) (*frame.Frame, error) {
	if !e.fitted {
		return nil, errors.New("one-hot encoder is not fitted")
	}
	for _, name := range cat.Names() {
		if !slices.Contains(e.columns, name) {
			return nil, errors.NewSchemaError(name, "column was not seen when the encoder was fit")
		}
	}

	out := frame.NewWithIndex(cat.Index())
	for j, name := range e.columns {
		c, ok := cat.Col(name)
		if !ok {
			return nil, errors.MissingField(name)
		}
		if c.Kind() != frame.Categorical {
			return nil, errors.NewSchemaError(name, "one-hot encoding needs a categorical column, found %s", c.Kind())
		}

		levels := e.categories[j]
		block := make([][]float64, len(levels))
		for k := range block {
			block[k] = make([]float64, c.Len())
		}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			if k, found := slices.BinarySearch(levels, c.String(i)); found {
				block[k][i] = 1
			}
		}
		for k, level := range levels {
			if err := out.Add(frame.NewNumeric(featureName(name, level), block[k], nil)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func featureName(column, category string) string { return column + "_" + category }

// FeatureNames returns the names of the indicator columns, in output order.
func (e *OneHotEncoder) FeatureNames() []string {
	var names []string
	for j, name := range e.columns {
		for _, level := range e.categories[j] {
			names = append(names, featureName(name, level))
		}
	}
	return names
}

// Columns returns the categorical columns the encoder was fit on.
func (e *OneHotEncoder) Columns() []string { return append([]string(nil), e.columns...) }

// Categories returns the fitted categories of column, in sorted order.
func (e *OneHotEncoder) Categories(column string) []string {
	j := slices.Index(e.columns, column)
	if j < 0 {
		return nil
	}
	return append([]string(nil), e.categories[j]...)
}

// Width returns the number of indicator columns produced by Transform.
func (e *OneHotEncoder) Width() int {
	w := 0
	for _, levels := range e.categories {
		w += len(levels)
	}
	return w
}

// FeatureEncoder turns a cleaned frame into an all-numeric feature frame:
// numeric columns first, then the one-hot indicators of the categorical
// columns, joined on row identity.
type FeatureEncoder struct {
	enc    *OneHotEncoder
	logger *slog.Logger
}

// NewFeatureEncoder creates an unfitted feature encoder. A nil logger uses
// slog.Default().
func NewFeatureEncoder(logger *slog.Logger) *FeatureEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureEncoder{enc: NewOneHotEncoder(), logger: logger}
}

// Encoder returns the underlying one-hot encoder.
func (fe *FeatureEncoder) Encoder() *OneHotEncoder { return fe.enc }

// Fit fits the one-hot encoder on the categorical columns of train.
func (fe *FeatureEncoder) Fit(train *frame.Frame) error {
	num, cat, err := SplitByKind(train)
	if err != nil {
		return err
	}
	if err := fe.enc.Fit(cat); err != nil {
		return err
	}
	for _, feature := range fe.enc.FeatureNames() {
		if num.Has(feature) {
			return errors.NewSchemaError(feature, "indicator name collides with an existing column")
		}
	}
	fe.logger.Debug("fitted one-hot encoder",
		slog.Any("columns", fe.enc.Columns()),
		slog.Int("width", fe.enc.Width()))
	return nil
}

// Transform encodes f and joins the indicators to its numeric columns.
func (fe *FeatureEncoder) Transform(f *frame.Frame) (*frame.Frame, error) {
	num, cat, err := SplitByKind(f)
	if err != nil {
		return nil, err
	}
	indicators, err := fe.enc.Transform(cat)
	if err != nil {
		return nil, err
	}
	return frame.Join(num, indicators)
}
