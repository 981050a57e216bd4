package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is raw tabular data as read from a CSV or Excel file.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadTable reads tabular data from r, dispatching on the filename
// extension: .xlsx goes through excelize, everything else is parsed
// as CSV.
func ReadTable(r io.Reader, filename string) (*Table, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".xlsx" {
		return readExcel(r)
	}
	return readCSV(r)
}

func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file contains no rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Table{Headers: headers, Rows: records[1:]}, nil
}

func readExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	log.Printf("[ReadTable] Read %d rows from Excel sheet %s", len(rows)-1, sheets[0])

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

// ToCSV writes the table back out as CSV. Used when an .xlsx dataset
// upload is normalized to the fixed CSV artifact path.
func (t *Table) ToCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
