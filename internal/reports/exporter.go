package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Supported export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

// AttendeeRow is one line of an attendee export, already joined with
// the user record.
type AttendeeRow struct {
	Name   string
	Email  string
	Status string
	QRCode string
}

// AttendeeExporter renders an event's attendee list in the requested format
type AttendeeExporter interface {
	Export(format string, eventID uint, rows []AttendeeRow) ([]byte, string, string, error)
}

type attendeeExporter struct{}

func NewAttendeeExporter() AttendeeExporter {
	return &attendeeExporter{}
}

// Export returns the file bytes, a download filename and the content type.
func (e *attendeeExporter) Export(format string, eventID uint, rows []AttendeeRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("attendees_event_%d_%s.csv", eventID, timestamp)
		return data, filename, "text/csv", nil

	case FormatExcel:
		data, err := e.exportExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("attendees_event_%d_%s.xlsx", eventID, timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("attendees_event_%d_%s.pdf", eventID, timestamp)
		return data, filename, "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func (e *attendeeExporter) exportCSV(rows []AttendeeRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"name", "email", "status", "qr"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{r.Name, r.Email, r.Status, r.QRCode}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	// Important: Flush before getting bytes
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *attendeeExporter) exportExcel(rows []AttendeeRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Attendees"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"Name", "Email", "Status", "QR Code"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.QRCode)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *attendeeExporter) exportPDF(rows []AttendeeRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Event Attendees")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{60, 70, 30, 95}
	headers := []string{"Name", "Email", "Status", "QR Code"}

	// Print headers with borders
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	// Print data rows with borders
	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, r.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.QRCode, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
