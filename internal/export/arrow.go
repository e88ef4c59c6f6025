package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/i474232898/weather-flatten/internal/weather"
)

// ToArrow converts the table into a columnar arrow record. A column whose
// values are all numbers becomes Float64, all booleans becomes Boolean, and
// anything else becomes String. Missing and null cells are nulls.
//
// The caller owns the returned record and must Release it.
func ToArrow(table *weather.Table, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	cols := table.Columns()
	rows := table.Rows()

	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col, Type: inferType(rows, col), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, col := range cols {
		for _, row := range rows {
			v, ok := row.Get(col)
			if !ok || v == nil {
				b.Field(i).AppendNull()
				continue
			}
			switch fb := b.Field(i).(type) {
			case *array.Float64Builder:
				fb.Append(v.(float64))
			case *array.BooleanBuilder:
				fb.Append(v.(bool))
			case *array.StringBuilder:
				fb.Append(FormatValue(v))
			}
		}
	}

	return b.NewRecord()
}

// WriteArrow writes the table to w as an arrow IPC stream.
func WriteArrow(w io.Writer, table *weather.Table) error {
	rec := ToArrow(table, nil)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	return iw.Close()
}

func inferType(rows []weather.Record, col string) arrow.DataType {
	var numbers, bools, others int
	for _, row := range rows {
		v, ok := row.Get(col)
		if !ok || v == nil {
			continue
		}
		switch v.(type) {
		case float64:
			numbers++
		case bool:
			bools++
		default:
			others++
		}
	}

	switch {
	case others == 0 && bools == 0 && numbers > 0:
		return arrow.PrimitiveTypes.Float64
	case others == 0 && numbers == 0 && bools > 0:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}
