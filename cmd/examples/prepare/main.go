// Command prepare walks a handful of in-memory origination records through
// the library API and prints the resulting feature matrices.
//
//	go run ./cmd/examples/prepare
package main

import (
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"loanprep/internal/logging"
	"loanprep/pkg/core"
	"loanprep/pkg/frame"
	"loanprep/pkg/pipeline"
	"loanprep/pkg/schema"
)

var records = []frame.Record{
	{schema.FirstPaymentDate: 201403, schema.MaturityDate: 204402, schema.CreditScore: 742, schema.OriginalLoanToValue: 80, schema.PropertyType: "SF", schema.FirstTimeHomebuyerFlag: "N"},
	{schema.FirstPaymentDate: 201411, schema.MaturityDate: 204410, schema.CreditScore: nil, schema.OriginalLoanToValue: 95, schema.PropertyType: "CO", schema.FirstTimeHomebuyerFlag: "Y"},
	{schema.FirstPaymentDate: 201506, schema.MaturityDate: 204505, schema.CreditScore: 690, schema.OriginalLoanToValue: nil, schema.PropertyType: "SF", schema.FirstTimeHomebuyerFlag: nil},
	{schema.FirstPaymentDate: 201602, schema.MaturityDate: 204601, schema.CreditScore: 715, schema.OriginalLoanToValue: 70, schema.PropertyType: "PU", schema.FirstTimeHomebuyerFlag: "N"},
	{schema.FirstPaymentDate: 201708, schema.MaturityDate: 204707, schema.CreditScore: nil, schema.OriginalLoanToValue: 85, schema.PropertyType: nil, schema.FirstTimeHomebuyerFlag: "Y"},
}

// previewData prints the first n rows of m under its column names.
func previewData(title string, m *core.Matrix, n int) {
	fmt.Printf("\n%s (%d x %d)\n", title, m.R, m.C)
	for _, h := range m.Cols {
		fmt.Printf("%-28s", h)
	}
	fmt.Println()
	for i := 0; i < min(n, m.R); i++ {
		for _, v := range m.Row(i) {
			if math.IsNaN(v) {
				fmt.Printf("%-28s", "NaN")
				continue
			}
			fmt.Printf("%-28.2f", v)
		}
		fmt.Println()
	}
}

func main() {
	logger := logging.New(logging.LevelInfo, logging.FormatText, os.Stderr)
	slog.SetDefault(logger)

	raw, err := frame.FromRecords(nil, records)
	if err != nil {
		log.Fatalf("build frame: %v", err)
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	tidy, err := p.TidyData(raw)
	if err != nil {
		log.Fatalf("tidy: %v", err)
	}

	res, err := p.TrainTestSplitForML(tidy, 2015, pipeline.Options{PreProcess: true, ReturnEncoder: true})
	if err != nil {
		log.Fatalf("split: %v", err)
	}

	for _, field := range res.Stats.Fields() {
		v, _ := res.Stats.Value(field)
		fmt.Printf("fill %-32s %-7s %v\n", field, res.Stats.Strategy(field), v)
	}
	fmt.Println("encoded categories:", res.Encoder.FeatureNames())

	train, err := res.TrainMatrix()
	if err != nil {
		log.Fatalf("train matrix: %v", err)
	}
	test, err := res.TestMatrix()
	if err != nil {
		log.Fatalf("test matrix: %v", err)
	}
	previewData("train", train, 5)
	previewData("test", test, 5)
}
