// Package report encodes batch outcomes as Parquet for offline analysis.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/malbeclabs/nlquery/pkg/pipeline"
)

// Record is one answered (or failed) question.
type Record struct {
	Question        string `parquet:"question"`
	SQLQuery        string `parquet:"sql_query"`
	Additional      string `parquet:"additional_context"`
	Columns         string `parquet:"columns"`
	RowCount        int64  `parquet:"row_count"`
	NaturalResponse string `parquet:"natural_response"`
	Success         bool   `parquet:"success"`
	Error           string `parquet:"error"`
	ElapsedMS       int64  `parquet:"elapsed_ms"`
}

func NewRecord(out pipeline.Outcome) Record {
	return Record{
		Question:        out.NaturalQuery,
		SQLQuery:        deref(out.SQLQuery),
		Additional:      deref(out.AdditionalContext),
		Columns:         strings.Join(out.Columns, ","),
		RowCount:        int64(out.RowCount),
		NaturalResponse: out.NaturalResponse,
		Success:         out.Success,
		Error:           deref(out.Error),
		ElapsedMS:       out.ElapsedMS,
	}
}

// WriteParquet writes one record per outcome and returns the record count.
func WriteParquet(w io.Writer, outcomes []pipeline.Outcome) (int, error) {
	if len(outcomes) == 0 {
		return 0, errors.New("outcomes are required")
	}

	rows := make([]Record, 0, len(outcomes))
	for _, out := range outcomes {
		rows = append(rows, NewRecord(out))
	}

	writer := parquet.NewGenericWriter[Record](w)
	if _, err := writer.Write(rows); err != nil {
		return 0, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return len(rows), nil
}

// ReadParquet decodes records written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]Record, error) {
	rows, err := parquet.Read[Record](r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
