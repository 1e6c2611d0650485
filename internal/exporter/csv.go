package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter renders report sheets as CSV
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel detects the encoding
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(bom bool) *CSVWriter {
	return &CSVWriter{BOMPrefix: bom}
}

// WriteSheets writes each sheet as a titled CSV section separated by a
// blank record.
func (w *CSVWriter) WriteSheets(out io.Writer, sheets []Sheet) error {
	if w.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	for i, sheet := range sheets {
		if i > 0 {
			if err := writer.Write([]string{}); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{sheet.Name}); err != nil {
			return fmt.Errorf("failed to write title of %s: %w", sheet.Name, err)
		}
		if err := writer.Write(sheet.Headers); err != nil {
			return fmt.Errorf("failed to write headers of %s: %w", sheet.Name, err)
		}
		for j, row := range sheet.Rows {
			record := make([]string, len(row))
			for k, v := range row {
				record[k] = formatCell(v)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d of %s: %w", j, sheet.Name, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
