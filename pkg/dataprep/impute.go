package dataprep

import (
	"fmt"
	"log/slog"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
	"loanprep/pkg/schema"
	"loanprep/pkg/stats"
)

// FillStats maps each imputed field to the value that replaces its missing
// entries. It is computed once from the train partition and never changes.
type FillStats struct {
	fields []string
	fills  map[string]fill
}

type fill struct {
	strategy schema.Strategy
	kind     frame.Kind
	num      float64
	str      string
}

// Fields returns the imputed fields in fit order.
func (s *FillStats) Fields() []string { return append([]string(nil), s.fields...) }

// Len returns the number of fields with a statistic.
func (s *FillStats) Len() int { return len(s.fields) }

// Value returns the fill value for field: a float64 for numeric fields, a
// string for categorical ones.
func (s *FillStats) Value(field string) (any, bool) {
	f, ok := s.fills[field]
	if !ok {
		return nil, false
	}
	if f.kind == frame.Categorical {
		return f.str, true
	}
	return f.num, true
}

// Strategy returns the statistic used for field.
func (s *FillStats) Strategy(field string) schema.Strategy { return s.fills[field].strategy }

// Imputer fills missing values of the registry's imputed fields. Statistics
// come from the frame passed to Fit; Transform applies them unchanged to any
// frame and adds a Missing_<FIELD> indicator recording the original nulls.
type Imputer struct {
	registry   *schema.Registry
	requireAll bool
	logger     *slog.Logger
	stats      *FillStats
}

// ImputerOption configures an Imputer.
type ImputerOption func(*Imputer)

// WithRegistry sets the field registry. The default is schema.Default().
func WithRegistry(r *schema.Registry) ImputerOption {
	return func(im *Imputer) { im.registry = r }
}

// WithRequireAll makes an absent imputed field a SchemaError instead of
// being skipped.
func WithRequireAll(require bool) ImputerOption {
	return func(im *Imputer) { im.requireAll = require }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) ImputerOption {
	return func(im *Imputer) { im.logger = l }
}

// NewImputer creates an unfitted imputer.
func NewImputer(opts ...ImputerOption) *Imputer {
	im := &Imputer{registry: schema.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Stats returns the fitted statistics, or nil before Fit.
func (im *Imputer) Stats() *FillStats { return im.stats }

// Fit computes the fill statistics from train.
func (im *Imputer) Fit(train *frame.Frame) error {
	fs := &FillStats{fills: make(map[string]fill)}
	for _, field := range im.registry.Imputed() {
		c, ok := train.Col(field.Name)
		if !ok {
			if im.requireAll {
				return errors.MissingField(field.Name)
			}
			im.logger.Debug("imputed field not present, skipping", slog.String("field", field.Name))
			continue
		}

		fl, err := computeFill(c, field.Strategy)
		if err != nil {
			return err
		}
		fs.fields = append(fs.fields, field.Name)
		fs.fills[field.Name] = fl

		im.logger.Debug("computed fill statistic",
			slog.String("field", field.Name),
			slog.String("strategy", field.Strategy.String()),
			slog.Any("value", fs.fillValue(field.Name)),
			slog.Int("missing", c.NullCount()))
	}
	im.stats = fs
	return nil
}

func (s *FillStats) fillValue(field string) any {
	v, _ := s.Value(field)
	return v
}

func computeFill(c *frame.Column, strategy schema.Strategy) (fill, error) {
	fl := fill{strategy: strategy, kind: c.Kind()}
	var err error
	switch strategy {
	case schema.Mean, schema.Median:
		if c.Kind() == frame.Categorical {
			return fill{}, errors.NewSchemaError(c.Name(), "%s requires a numeric column", strategy)
		}
		if strategy == schema.Mean {
			fl.num, err = stats.Mean(c.ValidFloats())
		} else {
			fl.num, err = stats.Median(c.ValidFloats())
		}
	case schema.Mode:
		if c.Kind() == frame.Categorical {
			fl.str, err = stats.ModeString(c.ValidStrings())
		} else {
			fl.num, err = stats.Mode(c.ValidFloats())
		}
	default:
		return fill{}, fmt.Errorf("field %s: unknown fill strategy %d", c.Name(), strategy)
	}
	if err != nil {
		var ce *errors.ComputeError
		if errors.As(err, &ce) {
			return fill{}, ce.WithField(c.Name())
		}
		return fill{}, err
	}
	return fl, nil
}

// Transform returns a copy of f with indicators added and missing values
// of every fitted field replaced. An existing indicator column is kept as is.
func (im *Imputer) Transform(f *frame.Frame) (*frame.Frame, error) {
	if im.stats == nil {
		return nil, errors.New("imputer is not fitted")
	}
	out := f.Clone()
	for _, name := range im.stats.fields {
		c, ok := out.Col(name)
		if !ok {
			return nil, errors.MissingField(name)
		}
		fl := im.stats.fills[name]
		if c.NullCount() == c.Len() && c.Kind() != fl.kind {
			// no values to contradict the fitted kind
			c = frame.NewNull(name, fl.kind, c.Len())
			if err := out.Replace(c); err != nil {
				return nil, err
			}
		}
		if (c.Kind() == frame.Categorical) != (fl.kind == frame.Categorical) {
			return nil, errors.NewSchemaError(name, "fitted on %s values, got %s", fl.kind, c.Kind())
		}

		indicator := schema.MissingIndicator(name)
		if !out.Has(indicator) {
			if err := out.Add(frame.NewBool(indicator, c.Nulls(), nil)); err != nil {
				return nil, err
			}
		}

		missing := c.NullCount()
		if missing == 0 {
			continue
		}
		filled := c.Clone()
		for i := 0; i < filled.Len(); i++ {
			if !filled.IsNull(i) {
				continue
			}
			if fl.kind == frame.Categorical {
				filled.SetString(i, fl.str)
			} else {
				filled.SetFloat(i, fl.num)
			}
		}
		if err := out.Replace(filled); err != nil {
			return nil, err
		}
		im.logger.Debug("filled missing values",
			slog.String("field", name),
			slog.Int("count", missing))
	}
	return out, nil
}

// CleanData fits an imputer on train and applies it to train and, when not
// nil, test. The inputs are not modified.
func CleanData(train, test *frame.Frame, opts ...ImputerOption) (*frame.Frame, *frame.Frame, *FillStats, error) {
	im := NewImputer(opts...)
	if err := im.Fit(train); err != nil {
		return nil, nil, nil, fmt.Errorf("fit imputer: %w", err)
	}
	cleanTrain, err := im.Transform(train)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("impute train: %w", err)
	}
	var cleanTest *frame.Frame
	if test != nil {
		if cleanTest, err = im.Transform(test); err != nil {
			return nil, nil, nil, fmt.Errorf("impute test: %w", err)
		}
	}
	return cleanTrain, cleanTest, im.Stats(), nil
}
