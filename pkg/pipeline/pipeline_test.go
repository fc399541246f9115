package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
	"loanprep/pkg/schema"
)

func exampleRecords(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.FromRecords([]string{"FIRST_PAYMENT_DATE", "CREDIT_SCORE", "PROPERTY_TYPE"}, []frame.Record{
		{"FIRST_PAYMENT_DATE": 201501, "CREDIT_SCORE": 700, "PROPERTY_TYPE": "SF"},
		{"FIRST_PAYMENT_DATE": 201701, "CREDIT_SCORE": nil, "PROPERTY_TYPE": "SF"},
	})
	require.NoError(t, err)
	return f
}

func TestTrainTestSplitForML_EndToEnd(t *testing.T) {
	tidy, err := TidyData(exampleRecords(t))
	require.NoError(t, err)

	res, err := TrainTestSplitForML(tidy, 2015, Options{PreProcess: true})
	require.NoError(t, err)
	assert.Nil(t, res.Encoder)
	require.NotNil(t, res.Stats)

	assert.Equal(t, []int{0}, res.Train.Index())
	assert.Equal(t, []int{1}, res.Test.Index())

	test := res.Test.Record(0)
	assert.Equal(t, 700.0, test["CREDIT_SCORE"])
	assert.Equal(t, 1.0, test["Missing_CREDIT_SCORE"])
	assert.Equal(t, 1.0, test["PROPERTY_TYPE_SF"])

	train := res.Train.Record(0)
	assert.Equal(t, 0.0, train["Missing_CREDIT_SCORE"])
	assert.Equal(t, res.Train.Names(), res.Test.Names(), "partitions are aligned")
	assert.Equal(t, []string{
		"CREDIT_SCORE",
		"FIRST_PAYMENT_YEAR",
		"FIRST_PAYMENT_MON",
		"Missing_CREDIT_SCORE",
		"Missing_PROPERTY_TYPE",
		"PROPERTY_TYPE_SF",
	}, res.Train.Names())
}

func TestTrainTestSplitForML_TidyOption(t *testing.T) {
	res, err := TrainTestSplitForML(exampleRecords(t), 2015, Options{Tidy: true, ReturnEncoder: true})
	require.NoError(t, err)
	require.NotNil(t, res.Encoder)
	assert.Equal(t, []string{"PROPERTY_TYPE_SF"}, res.Encoder.FeatureNames())
	assert.Nil(t, res.Stats)

	m, err := res.TestMatrix()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.At(0, m.ColIndex("CREDIT_SCORE"))), "without pre-processing missing values stay NaN")

	m, err = res.TrainMatrix()
	require.NoError(t, err)
	assert.Equal(t, 2015.0, m.At(0, m.ColIndex("FIRST_PAYMENT_YEAR")))
}

func TestTrainTestSplitForML_RequiresSplitField(t *testing.T) {
	_, err := TrainTestSplitForML(exampleRecords(t), 2015, Options{})
	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.FirstPaymentYear, se.Field)
}

func TestTrainTestSplitForML_RequireAll(t *testing.T) {
	_, err := TrainTestSplitForML(exampleRecords(t), 2015, Options{Tidy: true, PreProcess: true, RequireAll: true})
	assert.ErrorIs(t, err, errors.ErrSchema)
}

func TestTrainTestSplitForML_InputUntouched(t *testing.T) {
	f := exampleRecords(t)
	before := f.Records()
	_, err := TrainTestSplitForML(f, 2015, Options{Tidy: true, PreProcess: true})
	require.NoError(t, err)
	assert.Equal(t, before, f.Records())
	assert.Equal(t, []string{"FIRST_PAYMENT_DATE", "CREDIT_SCORE", "PROPERTY_TYPE"}, f.Names())
}

func TestTrainTestSplitForML_AllMissingTrainColumn(t *testing.T) {
	f, err := frame.FromRecords(nil, []frame.Record{
		{"FIRST_PAYMENT_YEAR": 2014, "CREDIT_SCORE": nil, "PROPERTY_TYPE": "SF"},
		{"FIRST_PAYMENT_YEAR": 2016, "CREDIT_SCORE": 700, "PROPERTY_TYPE": "SF"},
	})
	require.NoError(t, err)

	_, err = TrainTestSplitForML(f, 2015, Options{PreProcess: true})
	assert.ErrorIs(t, err, errors.ErrCompute)
}

func TestCleanData(t *testing.T) {
	train, err := frame.FromRecords(nil, []frame.Record{{"CREDIT_SCORE": 700}, {"CREDIT_SCORE": 600}})
	require.NoError(t, err)
	test, err := frame.FromRecords(nil, []frame.Record{{"CREDIT_SCORE": nil}})
	require.NoError(t, err)

	_, cleanTest, st, err := CleanData(train, test)
	require.NoError(t, err)
	v, _ := st.Value("CREDIT_SCORE")
	assert.Equal(t, 650.0, v)
	assert.Equal(t, frame.Record{"CREDIT_SCORE": 650.0, "Missing_CREDIT_SCORE": true}, cleanTest.Record(0))
}

func TestCleanData_AllMissingCategoricalInTest(t *testing.T) {
	train, err := frame.FromRecords(nil, []frame.Record{{"PROPERTY_TYPE": "SF"}})
	require.NoError(t, err)
	test, err := frame.FromRecords(nil, []frame.Record{{"PROPERTY_TYPE": nil}})
	require.NoError(t, err)

	_, cleanTest, _, err := CleanData(train, test)
	require.NoError(t, err)
	assert.Equal(t, frame.Record{"PROPERTY_TYPE": "SF", "Missing_PROPERTY_TYPE": true}, cleanTest.Record(0))
}

func TestTidyData_CategoricalPackedDate(t *testing.T) {
	f, err := frame.FromRecords(nil, []frame.Record{
		{"FIRST_PAYMENT_DATE": "201501", "PROPERTY_TYPE": "SF"},
		{"FIRST_PAYMENT_DATE": "201703", "PROPERTY_TYPE": "CO"},
	})
	require.NoError(t, err)

	tidy, err := TidyData(f)
	require.NoError(t, err)
	assert.Equal(t, 2015.0, tidy.Record(0)["FIRST_PAYMENT_YEAR"])
	assert.Equal(t, 3.0, tidy.Record(1)["FIRST_PAYMENT_MON"])

	res, err := TrainTestSplitForML(f, 2015, Options{Tidy: true})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.Train.Index())
	assert.Equal(t, []int{1}, res.Test.Index())
}

type recordingObserver struct {
	stages []string
	runs   int
	err    error
}

func (o *recordingObserver) ObserveStage(stage, partition string, _ *frame.Frame) {
	o.stages = append(o.stages, stage+"/"+partition)
}

func (o *recordingObserver) ObserveRun(_ time.Duration, err error) {
	o.runs++
	o.err = err
}

func TestPipeline_Observer(t *testing.T) {
	obs := &recordingObserver{}
	p := New(WithObserver(obs))

	_, err := p.TrainTestSplitForML(exampleRecords(t), 2015, Options{Tidy: true, PreProcess: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"split/train", "split/test",
		"impute/train", "impute/test",
		"encode/train", "encode/test",
	}, obs.stages)
	assert.Equal(t, 1, obs.runs)
	assert.NoError(t, obs.err)

	_, err = p.TrainTestSplitForML(exampleRecords(t), 2015, Options{})
	require.Error(t, err)
	assert.Equal(t, 2, obs.runs)
	assert.ErrorIs(t, obs.err, errors.ErrSchema)
}

func TestFitTransform_NilTest(t *testing.T) {
	train, err := frame.FromRecords(nil, []frame.Record{{"PROPERTY_TYPE": "SF"}})
	require.NoError(t, err)
	p := New()
	res, err := p.TidyData(train)
	require.NoError(t, err)

	enc := newCountingTransformer()
	out, test, err := FitTransform(enc, res, nil)
	require.NoError(t, err)
	assert.Nil(t, test)
	assert.Equal(t, 1, enc.fits)
	assert.Equal(t, 1, enc.transforms)
	assert.Equal(t, res.Records(), out.Records())
}

type countingTransformer struct {
	fits, transforms int
}

func newCountingTransformer() *countingTransformer { return &countingTransformer{} }

func (c *countingTransformer) Fit(*frame.Frame) error { c.fits++; return nil }

func (c *countingTransformer) Transform(f *frame.Frame) (*frame.Frame, error) {
	c.transforms++
	return f.Clone(), nil
}
