package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"wiivcinjector/internal/binstr"
)

var headers = []string{"Offset", "Length", "Encoding", "Text"}

const sheetName = "Strings"

func row(e binstr.Entry) []string {
	return []string{
		fmt.Sprintf("0x%08X", e.Offset),
		strconv.Itoa(e.Length),
		e.Encoding.String(),
		e.Text,
	}
}

// WriteCSV writes the string table with a header row.
func WriteCSV(w io.Writer, entries []binstr.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(row(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportToCSV(entries []binstr.Entry, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteCSV(f, entries); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return f.Close()
}

func ExportToJSON(entries []binstr.Entry, filePath string) error {
	if entries == nil {
		entries = []binstr.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal strings to JSON: %w", err)
	}
	return os.WriteFile(filePath, data, 0644)
}

func newWorkbook(entries []binstr.Entry) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		f.Close()
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	for r, e := range entries {
		for c, v := range row(e) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}
	return f, nil
}

// WriteExcel streams the string table as an .xlsx workbook.
func WriteExcel(w io.Writer, entries []binstr.Entry) error {
	f, err := newWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func ExportToExcel(entries []binstr.Entry, filePath string) error {
	f, err := newWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filePath)
}
