// Package data reads loan files into frames and writes prepared frames back
// out. CSV goes through gota; XLSX sheets are read and written with
// excelize.
package data

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"loanprep/pkg/frame"
	"loanprep/pkg/schema"
)

// missingTokens are read as missing values.
var missingTokens = []string{"", "NA", "NaN", "<nil>"}

// Source describes a loan file on disk.
type Source struct {
	Path string
	// Delimiter separates CSV fields; zero means ','.
	Delimiter rune
	// Sheet names the XLSX sheet; empty means the first sheet.
	Sheet string
}

// Load reads src, choosing the reader from the file extension.
func Load(src Source, reg *schema.Registry) (*frame.Frame, error) {
	if strings.EqualFold(filepath.Ext(src.Path), ".xlsx") {
		return LoadXLSX(src.Path, src.Sheet, reg)
	}
	return LoadCSV(src.Path, src.Delimiter, reg)
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string, delimiter rune, reg *schema.Registry) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := ReadCSV(file, delimiter, reg)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// ReadCSV reads delimited text with a header row. Columns declared in reg
// are typed from their declaration; other columns are detected from their
// values.
func ReadCSV(r io.Reader, delimiter rune, reg *schema.Registry) (*frame.Frame, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	df := dataframe.ReadCSV(r, append(loadOptions(reg), dataframe.WithDelimiter(delimiter))...)
	return fromDataFrame(df)
}

// LoadXLSX reads one sheet of an XLSX workbook. The first row is the header.
func LoadXLSX(path, sheet string, reg *schema.Registry) (*frame.Frame, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer x.Close()

	if sheet == "" {
		sheets := x.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := x.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	// GetRows drops trailing empty cells.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}
	return fromDataFrame(dataframe.LoadRecords(rows, loadOptions(reg)...))
}

func loadOptions(reg *schema.Registry) []dataframe.LoadOption {
	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	}
	if reg == nil {
		return opts
	}

	types := make(map[string]series.Type)
	for _, fd := range reg.Fields() {
		if fd.AnyKind {
			continue
		}
		switch fd.Kind {
		case frame.Numeric:
			types[fd.Name] = series.Float
		case frame.Bool:
			types[fd.Name] = series.Bool
		case frame.Categorical:
			types[fd.Name] = series.String
		}
	}
	return append(opts, dataframe.WithTypes(types))
}

func fromDataFrame(df dataframe.DataFrame) (*frame.Frame, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	f := frame.New(df.Nrow())
	for _, name := range df.Names() {
		c, err := fromSeries(name, df.Col(name))
		if err != nil {
			return nil, err
		}
		if err := f.Add(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func fromSeries(name string, s series.Series) (*frame.Column, error) {
	n := s.Len()
	null := make([]bool, n)
	for i := 0; i < n; i++ {
		null[i] = s.Elem(i).IsNA()
	}

	switch s.Type() {
	case series.Int, series.Float:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			if !null[i] {
				vals[i] = s.Elem(i).Float()
			}
		}
		return frame.NewNumeric(name, vals, null), nil
	case series.Bool:
		vals := make([]bool, n)
		for i := 0; i < n; i++ {
			if null[i] {
				continue
			}
			b, err := s.Elem(i).Bool()
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", name, i, err)
			}
			vals[i] = b
		}
		return frame.NewBool(name, vals, null), nil
	default:
		vals := make([]string, n)
		for i := 0; i < n; i++ {
			if !null[i] {
				vals[i] = s.Elem(i).String()
			}
		}
		return frame.NewCategorical(name, vals, null), nil
	}
}
