package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

// Load reads the headerless 9-column diabetes CSV at path.
// Any malformed content is reported as a *errors.DataError and no table is returned.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError(path, 0, "", "cannot open file", err)
	}
	defer f.Close()
	return ReadCSV(f, path)
}

// ReadCSV parses CSV content from r. path is used only for error messages.
func ReadCSV(r io.Reader, path string) (*Table, error) {
	logger := log.GetLogger().With(log.ComponentKey, "dataset", log.OperationKey, log.OperationLoad)

	// 文字列として読み込み、数値変換は列ごとに行う（セル単位のエラー報告のため）
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, frameError(path, df.Err)
	}
	if df.Ncol() != len(ColumnNames) {
		return nil, errors.NewDataError(path, 1, "",
			"expected "+strconv.Itoa(len(ColumnNames))+" columns, got "+strconv.Itoa(df.Ncol()), nil)
	}

	columns := make([][]float64, df.Ncol())
	for j, name := range ColumnNames {
		cells := df.Col(df.Names()[j]).Records()
		vals := make([]float64, len(cells))
		for i, cell := range cells {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.NewDataError(path, i+1, name, err.Error(), nil)
			}
			if name == Outcome && v != 0 && v != 1 {
				return nil, errors.NewDataError(path, i+1, Outcome, "label must be 0 or 1", nil)
			}
			vals[i] = v
		}
		columns[j] = vals
	}

	t, err := New(ColumnNames, columns)
	if err != nil {
		return nil, errors.NewDataError(path, 0, "", "cannot build table", err)
	}
	logger.Info("table loaded", log.PathKey, path, log.SamplesKey, t.Nrow(), log.FeaturesKey, len(FeatureNames))
	return t, nil
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, errors.New("empty cell")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Newf("non-numeric cell %q", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Newf("non-finite cell %q", cell)
	}
	return v, nil
}

// frameError converts a gota load failure into a DataError, keeping the CSV line when known.
func frameError(path string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		reason := perr.Err.Error()
		if errors.Is(perr.Err, csv.ErrFieldCount) {
			reason = "wrong column count, expected " + strconv.Itoa(len(ColumnNames))
		}
		return errors.NewDataError(path, perr.Line, "", reason, nil)
	}
	return errors.NewDataError(path, 0, "", "malformed CSV", err)
}
