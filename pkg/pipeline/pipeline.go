// Package pipeline chains the preparation stages into the entry points used
// by callers: decompose dates, split on first payment year, impute from
// train statistics and one-hot encode from a train-fitted encoder.
//
// Every entry point copies its inputs; callers keep ownership of the frames
// they pass in and receive new frames back.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"loanprep/pkg/core"
	"loanprep/pkg/dataprep"
	"loanprep/pkg/frame"
	"loanprep/pkg/loader"
	"loanprep/pkg/schema"
)

// Stage names reported to an Observer.
const (
	StageSplit  = "split"
	StageImpute = "impute"
	StageEncode = "encode"
)

// Partition names reported to an Observer.
const (
	PartitionTrain = "train"
	PartitionTest  = "test"
)

// Transformer is a preprocessing step fit on train and applied to both
// partitions.
type Transformer interface {
	Fit(train *frame.Frame) error
	Transform(f *frame.Frame) (*frame.Frame, error)
}

// FitTransform fits t on train, then transforms train and, when not nil,
// test.
func FitTransform(t Transformer, train, test *frame.Frame) (*frame.Frame, *frame.Frame, error) {
	if err := t.Fit(train); err != nil {
		return nil, nil, err
	}
	outTrain, err := t.Transform(train)
	if err != nil {
		return nil, nil, err
	}
	if test == nil {
		return outTrain, nil, nil
	}
	outTest, err := t.Transform(test)
	if err != nil {
		return nil, nil, err
	}
	return outTrain, outTest, nil
}

// Observer receives the frames produced by each stage and the outcome of
// each run.
type Observer interface {
	ObserveStage(stage, partition string, f *frame.Frame)
	ObserveRun(elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, string, *frame.Frame) {}
func (nopObserver) ObserveRun(time.Duration, error)           {}

// Options selects the optional stages of TrainTestSplitForML.
type Options struct {
	// ReturnEncoder keeps the fitted one-hot encoder in the result.
	ReturnEncoder bool
	// PreProcess imputes missing values before encoding.
	PreProcess bool
	// Tidy decomposes packed dates first, for data that still has
	// FIRST_PAYMENT_DATE instead of FIRST_PAYMENT_YEAR.
	Tidy bool
	// RequireAll fails when an imputed field is absent instead of skipping it.
	RequireAll bool
}

// Result holds the encoded partitions.
type Result struct {
	Train *frame.Frame
	Test  *frame.Frame
	// Encoder is nil unless Options.ReturnEncoder was set.
	Encoder *dataprep.OneHotEncoder
	// Stats is nil unless Options.PreProcess was set.
	Stats *dataprep.FillStats
}

// TrainMatrix returns the train features as a dense matrix.
func (r *Result) TrainMatrix() (*core.Matrix, error) { return r.Train.Matrix() }

// TestMatrix returns the test features as a dense matrix.
func (r *Result) TestMatrix() (*core.Matrix, error) { return r.Test.Matrix() }

// Pipeline runs the stages against a field registry.
type Pipeline struct {
	registry *schema.Registry
	logger   *slog.Logger
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry sets the field registry. The default is schema.Default().
func WithRegistry(r *schema.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithObserver sets the stage observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{registry: schema.Default(), logger: slog.Default(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TidyData checks f against the registry and decomposes its packed dates.
func (p *Pipeline) TidyData(f *frame.Frame) (*frame.Frame, error) {
	data, err := p.registry.Conform(f)
	if err != nil {
		return nil, err
	}
	return dataprep.TidyData(data)
}

// CleanData checks train and, when not nil, test against the registry and
// imputes both from train statistics.
func (p *Pipeline) CleanData(train, test *frame.Frame, requireAll bool) (*frame.Frame, *frame.Frame, *dataprep.FillStats, error) {
	train, err := p.registry.Conform(train)
	if err != nil {
		return nil, nil, nil, err
	}
	if test != nil {
		if test, err = p.registry.Conform(test); err != nil {
			return nil, nil, nil, err
		}
	}
	return dataprep.CleanData(train, test,
		dataprep.WithRegistry(p.registry),
		dataprep.WithRequireAll(requireAll),
		dataprep.WithLogger(p.logger))
}

// TrainTestSplitForML splits f at splitYear, optionally imputes, and encodes
// both partitions with an encoder fit on train.
func (p *Pipeline) TrainTestSplitForML(f *frame.Frame, splitYear int, opts Options) (res *Result, err error) {
	start := time.Now()
	defer func() { p.observer.ObserveRun(time.Since(start), err) }()

	p.logger.Info("preparing train/test features",
		slog.Int("rows", f.Nrow()),
		slog.Int("split_year", splitYear),
		slog.Bool("pre_process", opts.PreProcess),
		slog.Bool("tidy", opts.Tidy))

	data, err := p.registry.Conform(f)
	if err != nil {
		return nil, err
	}
	if opts.Tidy {
		if data, err = dataprep.TidyData(data); err != nil {
			return nil, fmt.Errorf("tidy: %w", err)
		}
	}

	train, test, err := loader.TemporalSplit(data, splitYear)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	p.observe(StageSplit, train, test)

	res = &Result{}
	if opts.PreProcess {
		imputer := dataprep.NewImputer(
			dataprep.WithRegistry(p.registry),
			dataprep.WithRequireAll(opts.RequireAll),
			dataprep.WithLogger(p.logger))
		if train, test, err = FitTransform(imputer, train, test); err != nil {
			return nil, fmt.Errorf("impute: %w", err)
		}
		res.Stats = imputer.Stats()
		p.observe(StageImpute, train, test)
	}

	encoder := dataprep.NewFeatureEncoder(p.logger)
	if train, test, err = FitTransform(encoder, train, test); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	p.observe(StageEncode, train, test)

	res.Train, res.Test = train, test
	if opts.ReturnEncoder {
		res.Encoder = encoder.Encoder()
	}

	p.logger.Info("prepared train/test features",
		slog.Int("train_rows", train.Nrow()),
		slog.Int("test_rows", test.Nrow()),
		slog.Int("features", train.Ncol()),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (p *Pipeline) observe(stage string, train, test *frame.Frame) {
	p.observer.ObserveStage(stage, PartitionTrain, train)
	p.observer.ObserveStage(stage, PartitionTest, test)
}

// TidyData decomposes packed dates with the default registry.
func TidyData(f *frame.Frame) (*frame.Frame, error) { return New().TidyData(f) }

// CleanData imputes with the default registry, skipping absent fields.
func CleanData(train, test *frame.Frame) (*frame.Frame, *frame.Frame, *dataprep.FillStats, error) {
	return New().CleanData(train, test, false)
}

// TrainTestSplitForML runs the full preparation with the default registry.
func TrainTestSplitForML(f *frame.Frame, splitYear int, opts Options) (*Result, error) {
	return New().TrainTestSplitForML(f, splitYear, opts)
}
