package dataset

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

// DropValue removes every row where column equals value. Row order is kept.
func DropValue(t *Table, column string, value float64) (*Table, error) {
	if !t.Has(column) {
		return nil, errors.NewValidationError("column", "unknown column", column)
	}
	if t.Nrow() == 0 {
		return t, nil
	}

	dropped := 0
	for _, v := range t.Column(column) {
		if v == value {
			dropped++
		}
	}
	switch dropped {
	case 0:
		return t, nil
	case t.Nrow():
		return t.empty(), nil
	}

	return fromFrame(t.df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.Neq,
		Comparando: value,
	}))
}

// DropSentinels applies DropValue(Sentinel) for each column in turn, each pass
// operating on the previous result. With no columns, SentinelColumns is used.
func DropSentinels(t *Table, columns ...string) (*Table, error) {
	if len(columns) == 0 {
		columns = SentinelColumns
	}
	logger := log.GetLogger().With(log.ComponentKey, "dataset", log.OperationKey, log.OperationFilter)

	cur := t
	for _, c := range columns {
		before := cur.Nrow()
		next, err := DropValue(cur, c, Sentinel)
		if err != nil {
			return nil, err
		}
		logger.Debug("sentinel rows dropped", log.ColumnKey, c, log.DroppedKey, before-next.Nrow())
		cur = next
	}
	logger.Info("rows filtered", log.SamplesKey, cur.Nrow(), log.DroppedKey, t.Nrow()-cur.Nrow())
	return cur, nil
}
