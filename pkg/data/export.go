package data

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"loanprep/pkg/errors"
	"loanprep/pkg/frame"
)

// WriteCSV writes f with a header row. Missing values are written as NaN.
func WriteCSV(w io.Writer, f *frame.Frame) error {
	if f.Ncol() == 0 {
		return errors.NewSchemaError("", "cannot write a frame without columns")
	}
	cols := make([]series.Series, 0, f.Ncol())
	for _, c := range f.Columns() {
		cols = append(cols, toSeries(c))
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w, dataframe.WriteHeader(true))
}

// SaveCSV writes f to path, replacing any existing file.
func SaveCSV(path string, f *frame.Frame) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(file, f)
}

func toSeries(c *frame.Column) series.Series {
	vals := make([]string, c.Len())
	for i := range vals {
		if c.IsNull(i) {
			vals[i] = "NaN"
		} else {
			vals[i] = c.String(i)
		}
	}
	t := series.String
	switch c.Kind() {
	case frame.Numeric:
		t = series.Float
	case frame.Bool:
		t = series.Bool
	}
	return series.New(vals, t, c.Name())
}

// Sheet is one named frame of a workbook.
type Sheet struct {
	Name  string
	Frame *frame.Frame
}

// WriteXLSX saves sheets as a workbook at path. Missing values are left as
// empty cells.
func WriteXLSX(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	x := excelize.NewFile()
	defer x.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := x.SetSheetName(x.GetSheetName(0), s.Name); err != nil {
				return err
			}
		} else if _, err := x.NewSheet(s.Name); err != nil {
			return err
		}
		if err := writeSheet(x, s); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	return x.SaveAs(path)
}

func writeSheet(x *excelize.File, s Sheet) error {
	header := make([]any, 0, s.Frame.Ncol())
	for _, name := range s.Frame.Names() {
		header = append(header, name)
	}
	if err := x.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}

	cols := s.Frame.Columns()
	row := make([]any, len(cols))
	for r := 0; r < s.Frame.Nrow(); r++ {
		for j, c := range cols {
			row[j] = c.Value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(s.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
