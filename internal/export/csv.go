package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/i474232898/weather-flatten/internal/weather"
)

// WriteCSV writes the table with a header row of its columns. Cells a row
// does not carry are left empty.
func WriteCSV(w io.Writer, table *weather.Table) error {
	cw := csv.NewWriter(w)

	cols := table.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(cols))
	for _, row := range table.Rows() {
		for i, col := range cols {
			v, _ := row.Get(col)
			line[i] = FormatValue(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatValue renders a decoded JSON value as a single cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
