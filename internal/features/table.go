package features

import (
	"fmt"
	"strconv"

	"driftwatch/internal/dataset"
)

// LabelColumn is the name of the fraud label column in built tables.
const LabelColumn = "is_fraud"

// BuildTable computes features for every transaction and assembles them into
// a column-oriented table matching Manifest(). When labels is non-nil it must
// align with txs and is appended as the is_fraud column.
func BuildTable(txs []Transaction, labels []int) (*dataset.Table, error) {
	if labels != nil && len(labels) != len(txs) {
		return nil, fmt.Errorf("labels length %d does not match transactions length %d", len(labels), len(txs))
	}

	numeric := make([][]string, len(numericNames))
	categorical := make([][]string, len(categoricalNames))

	for _, tx := range txs {
		row := ComputeRow(tx)
		for i, v := range row.Numeric {
			numeric[i] = append(numeric[i], strconv.FormatFloat(v, 'g', -1, 64))
		}
		for i, v := range row.Categorical {
			categorical[i] = append(categorical[i], v)
		}
	}

	table := dataset.NewTable()
	for i, name := range numericNames {
		if err := table.AddColumn(name, numeric[i]); err != nil {
			return nil, err
		}
	}
	for i, name := range categoricalNames {
		if err := table.AddColumn(name, categorical[i]); err != nil {
			return nil, err
		}
	}

	if labels != nil {
		cells := make([]string, len(labels))
		for i, y := range labels {
			cells[i] = strconv.Itoa(y)
		}
		if err := table.AddColumn(LabelColumn, cells); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Matrix extracts the model input matrix and labels from a feature table
// built by BuildTable. Rows with missing or unparseable numeric cells are
// skipped.
func Matrix(table *dataset.Table) (X [][]float64, y []int, err error) {
	labelCol, hasLabels := table.Column(LabelColumn)

	cols := make([]*dataset.Column, len(numericNames))
	for i, name := range numericNames {
		col, ok := table.Column(name)
		if !ok {
			return nil, nil, fmt.Errorf("feature column %q missing from table", name)
		}
		cols[i] = col
	}

rows:
	for r := 0; r < table.NumRows(); r++ {
		vec := make([]float64, len(cols))
		for i, col := range cols {
			v, parseErr := strconv.ParseFloat(col.Values[r], 64)
			if parseErr != nil {
				continue rows
			}
			vec[i] = v
		}
		if hasLabels {
			label, parseErr := strconv.Atoi(labelCol.Values[r])
			if parseErr != nil {
				continue rows
			}
			y = append(y, label)
		}
		X = append(X, vec)
	}
	return X, y, nil
}
