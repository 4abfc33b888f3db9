package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jordanlanch/leadgrid/pkg/models"
)

// Supported export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const sheetName = "Leads"

var headers = []string{
	"ID", "Company", "Contact", "Email", "Phone", "Country", "Stage",
	"Source", "Owner", "Annual Revenue", "Next Action", "Notes", "Created At",
}

// ContentType returns the MIME type of format
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// WriteCSV writes leads as CSV with a header row
func WriteCSV(w io.Writer, leads []models.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, lead := range leads {
		if err := writer.Write(record(lead)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes leads to a single "Leads" sheet
func WriteXLSX(w io.Writer, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with a single Sheet1
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range leads {
		row := rowIdx + 2
		for colIdx, value := range cells(lead) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// record renders lead as CSV text, nulls as empty fields
func record(lead models.Lead) []string {
	revenue := ""
	if lead.AnnualRevenue != nil {
		revenue = strconv.FormatFloat(*lead.AnnualRevenue, 'f', -1, 64)
	}
	return []string{
		strconv.Itoa(lead.ID),
		lead.CompanyName,
		lead.ContactName,
		lead.Email,
		deref(lead.Phone),
		deref(lead.Country),
		lead.Stage,
		lead.Source,
		lead.Owner,
		revenue,
		date(lead.NextActionDate),
		deref(lead.Notes),
		lead.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// cells keeps numbers numeric so spreadsheets can sum them
func cells(lead models.Lead) []any {
	var revenue any
	if lead.AnnualRevenue != nil {
		revenue = *lead.AnnualRevenue
	}
	return []any{
		lead.ID,
		lead.CompanyName,
		lead.ContactName,
		lead.Email,
		deref(lead.Phone),
		deref(lead.Country),
		lead.Stage,
		lead.Source,
		lead.Owner,
		revenue,
		date(lead.NextActionDate),
		deref(lead.Notes),
		lead.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func date(d models.NullDate) string {
	if !d.Valid {
		return ""
	}
	return d.Date
}
