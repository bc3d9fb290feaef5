package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportRequest(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, ShopLocation)

	req := ExportRequest{Resource: ExportOrders, Format: FormatXLSX, From: "2026-10-01"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "orders-2026-10-01-to-2026-10-19.xlsx", req.Filename(now))
	assert.Contains(t, req.ContentType(), "spreadsheetml")

	csvReq := ExportRequest{Resource: ExportLeads, Format: FormatCSV}
	assert.Equal(t, "leads-start-to-2026-10-19.csv", csvReq.Filename(now))
	assert.Equal(t, "text/csv; charset=utf-8", csvReq.ContentType())

	assert.True(t, errors.Is(ExportRequest{Resource: "customers", Format: FormatCSV}.Validate(), ErrUnsupportedExport))
	assert.True(t, errors.Is(ExportRequest{Resource: ExportOrders, Format: "pdf"}.Validate(), ErrUnsupportedExport))
}

func TestExportOrdersCSV(t *testing.T) {
	env := newTestEnv(t)
	c := env.customer(t, "csv@example.pk")
	seedOrder(t, env, c.ID, "SA-CSV-1", models.OrderNew, time.Hour)
	seedOrder(t, env, c.ID, "SA-CSV-2", models.OrderDelivered, 2*time.Hour)
	seedOrder(t, env, c.ID, "SA-CSV-OLD", models.OrderDelivered, 90*24*time.Hour)

	from := time.Now().In(ShopLocation).AddDate(0, 0, -7).Format(dateLayout)
	var buf bytes.Buffer
	err := NewExportService(env.db).Write(context.Background(), ExportRequest{Resource: ExportOrders, Format: FormatCSV, From: from}, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two orders in range")
	assert.Equal(t, "Order", records[0][0])
	assert.Equal(t, "SA-CSV-2", records[1][0], "oldest first")
	assert.Equal(t, "csv@example.pk", records[1][6])
	assert.Equal(t, "2250", records[1][12])
}

func TestExportBookingsXLSX(t *testing.T) {
	env := newTestEnv(t)
	c := env.customer(t, "xlsx@example.pk")
	svc := env.service(t, "AC Service", 2)
	b := models.Booking{Reference: "BK-XLSX", CustomerID: c.ID, ServiceID: svc.ID, Date: "2026-10-20", Slot: "09:00",
		VehicleMake: "Toyota", VehicleModel: "Corolla", VehicleRegistration: "LEB-990", Status: models.BookingPending}
	require.NoError(t, env.db.Create(&b).Error)
	// deleted services still name their bookings in exports
	require.NoError(t, env.db.Delete(svc).Error)

	var buf bytes.Buffer
	err := NewExportService(env.db).Write(context.Background(), ExportRequest{Resource: ExportBookings, Format: FormatXLSX}, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportBookings)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Reference", rows[0][0])
	assert.Equal(t, "BK-XLSX", rows[1][0])
	assert.Equal(t, "AC Service", rows[1][2])
	assert.Equal(t, "Toyota Corolla", rows[1][8])
}

func TestExportRejectsBadRange(t *testing.T) {
	env := newTestEnv(t)
	err := NewExportService(env.db).Write(context.Background(),
		ExportRequest{Resource: ExportLeads, Format: FormatCSV, From: "2026-10-10", To: "2026-10-01"}, &bytes.Buffer{})
	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", de.Code)
}

func TestExportLeads_NeutralizesFormulas(t *testing.T) {
	env := newTestEnv(t)
	lead := models.Lead{
		Name:    `=HYPERLINK("http://evil.example","click")`,
		Phone:   "+923001234567",
		Subject: "@SUM(A1:A9)",
		Message: "-2+3",
		Source:  "contact",
		Status:  models.LeadNew,
	}
	require.NoError(t, env.db.Create(&lead).Error)

	var csvBuf bytes.Buffer
	require.NoError(t, NewExportService(env.db).Write(context.Background(), ExportRequest{Resource: ExportLeads, Format: FormatCSV}, &csvBuf))
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `'=HYPERLINK("http://evil.example","click")`, records[1][1])
	assert.Equal(t, "'+923001234567", records[1][3])
	assert.Equal(t, "'@SUM(A1:A9)", records[1][4])
	assert.Equal(t, "'-2+3", records[1][7])

	var xlsxBuf bytes.Buffer
	require.NoError(t, NewExportService(env.db).Write(context.Background(), ExportRequest{Resource: ExportLeads, Format: FormatXLSX}, &xlsxBuf))
	f, err := excelize.OpenReader(&xlsxBuf)
	require.NoError(t, err)
	defer f.Close()

	formula, err := f.GetCellFormula(ExportLeads, "B2")
	require.NoError(t, err)
	assert.Empty(t, formula)
	value, err := f.GetCellValue(ExportLeads, "B2")
	require.NoError(t, err)
	assert.Equal(t, lead.Name, value)
}

func TestEscapeFormula(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"Bilal":              "Bilal",
		"=1+1":               "'=1+1",
		"+92300":             "'+92300",
		"@cmd":               "'@cmd",
		"-cmd|' /C calc'!A0": "'-cmd|' /C calc'!A0",
		"-250":               "-250",
		"\tpadded":           "'\tpadded",
	}
	for in, want := range tests {
		assert.Equal(t, want, escapeFormula(in), in)
	}
}

func TestToCells(t *testing.T) {
	cells := *toCells([]string{"2250", "0300123", "SA-1", "0"})
	assert.Equal(t, int64(2250), cells[0])
	assert.Equal(t, "0300123", cells[1], "leading zeros stay text")
	assert.Equal(t, "SA-1", cells[2])
	assert.Equal(t, int64(0), cells[3])
}
