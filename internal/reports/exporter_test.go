package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func sampleRows() []AttendeeRow {
	return []AttendeeRow{
		{Name: "Priya Sharma", Email: "priya@campus.edu", Status: "CONFIRMED", QRCode: "QR-7-abc"},
		{Name: "Ravi Kumar", Email: "ravi@campus.edu", Status: "WAITLIST", QRCode: "QR-7-def"},
	}
}

func TestExportCSV(t *testing.T) {
	e := NewAttendeeExporter()

	data, filename, contentType, err := e.Export(FormatCSV, 7, sampleRows())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if contentType != "text/csv" {
		t.Errorf("content type = %s, want text/csv", contentType)
	}
	if !strings.HasPrefix(filename, "attendees_event_7_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("unexpected filename: %s", filename)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}

	wantHeader := []string{"name", "email", "status", "qr"}
	for i, h := range wantHeader {
		if records[0][i] != h {
			t.Errorf("header[%d] = %s, want %s", i, records[0][i], h)
		}
	}
	if records[1][0] != "Priya Sharma" || records[1][2] != "CONFIRMED" {
		t.Errorf("unexpected first data row: %v", records[1])
	}
	if records[2][3] != "QR-7-def" {
		t.Errorf("unexpected qr in second row: %v", records[2])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	e := NewAttendeeExporter()

	data, _, _, err := e.Export(FormatCSV, 3, nil)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("empty export should still carry the header, got %d rows", len(records))
	}
}

func TestExportExcelAndPDFProduceBytes(t *testing.T) {
	e := NewAttendeeExporter()

	data, filename, contentType, err := e.Export(FormatExcel, 7, sampleRows())
	if err != nil {
		t.Fatalf("xlsx export failed: %v", err)
	}
	if len(data) == 0 || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("bad xlsx output: %d bytes, filename %s", len(data), filename)
	}
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected xlsx content type: %s", contentType)
	}

	data, filename, contentType, err = e.Export(FormatPDF, 7, sampleRows())
	if err != nil {
		t.Fatalf("pdf export failed: %v", err)
	}
	if len(data) == 0 || !strings.HasSuffix(filename, ".pdf") {
		t.Errorf("bad pdf output: %d bytes, filename %s", len(data), filename)
	}
	if contentType != "application/pdf" {
		t.Errorf("unexpected pdf content type: %s", contentType)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("pdf output missing %PDF header")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	e := NewAttendeeExporter()
	if _, _, _, err := e.Export("docx", 1, sampleRows()); err == nil {
		t.Error("expected error for unsupported format")
	}
}
