package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Exportable resources
const (
	ExportOrders   = "orders"
	ExportBookings = "bookings"
	ExportLeads    = "leads"
)

const exportRowLimit = 50000

// ExportRequest selects what to export. From and To are inclusive shop-local dates.
type ExportRequest struct {
	Resource string
	Format   string
	From     string
	To       string
}

// ContentType returns the MIME type for the request's format
func (r ExportRequest) ContentType() string {
	if r.Format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name, e.g. orders-2026-10-01-to-2026-10-19.xlsx
func (r ExportRequest) Filename(now time.Time) string {
	from, to := r.From, r.To
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = now.In(ShopLocation).Format(dateLayout)
	}
	return fmt.Sprintf("%s-%s-to-%s.%s", r.Resource, from, to, r.Format)
}

// Validate rejects unknown resources and formats
func (r ExportRequest) Validate() error {
	switch r.Resource {
	case ExportOrders, ExportBookings, ExportLeads:
	default:
		return detail(ErrUnsupportedExport, "resource %q", r.Resource)
	}
	if r.Format != FormatCSV && r.Format != FormatXLSX {
		return detail(ErrUnsupportedExport, "format %q", r.Format)
	}
	return nil
}

// ExportService renders orders, bookings and leads as CSV or XLSX
type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// Write renders the requested export to w
func (s *ExportService) Write(ctx context.Context, req ExportRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}

	header, rows, err := s.table(ctx, req)
	if err != nil {
		return err
	}

	// excelize stores strings as shared strings, never formulas
	if req.Format == FormatXLSX {
		return writeXLSX(w, req.Resource, header, rows)
	}
	for _, row := range rows {
		for i, v := range row {
			row[i] = escapeFormula(v)
		}
	}
	return writeCSV(w, header, rows)
}

// escapeFormula prefixes customer text that a spreadsheet would evaluate
// (=, +, -, @, tab or CR first) with a quote. Negative integers are left alone.
func escapeFormula(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if _, err := strconv.ParseInt(v, 10, 64); err == nil && v[0] == '-' {
			return v
		}
		return "'" + v
	}
	return v
}

func (s *ExportService) table(ctx context.Context, req ExportRequest) ([]string, [][]string, error) {
	start, end, err := dayRange(req.From, req.To)
	if err != nil {
		return nil, nil, err
	}
	q := s.db.WithContext(ctx)
	if start != nil {
		q = q.Where("created_at >= ?", start.Local())
	}
	if end != nil {
		q = q.Where("created_at < ?", end.Local())
	}
	q = q.Order("created_at ASC, id ASC").Limit(exportRowLimit)

	switch req.Resource {
	case ExportOrders:
		return orderTable(q)
	case ExportBookings:
		return bookingTable(q)
	default:
		return leadTable(q)
	}
}

func stamp(t time.Time) string {
	return t.In(ShopLocation).Format("2006-01-02 15:04")
}

func orderTable(q *gorm.DB) ([]string, [][]string, error) {
	var orders []models.Order
	if err := q.Preload("Items").Preload("Customer").Find(&orders).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load orders: %w", err)
	}

	header := []string{"Order", "Placed", "Status", "Payment", "Paid", "Customer", "Email", "Phone", "City", "Items", "Subtotal", "Shipping", "Total"}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		units := 0
		for _, it := range o.Items {
			units += it.Quantity
		}
		rows = append(rows, []string{
			o.OrderNumber,
			stamp(o.CreatedAt),
			string(o.Status),
			string(o.PaymentMethod),
			string(o.PaymentStatus),
			o.ShippingName,
			o.Customer.Email,
			o.ShippingPhone,
			o.ShippingCity,
			strconv.Itoa(units),
			strconv.FormatInt(o.Subtotal, 10),
			strconv.FormatInt(o.ShippingFee, 10),
			strconv.FormatInt(o.Total, 10),
		})
	}
	return header, rows, nil
}

func bookingTable(q *gorm.DB) ([]string, [][]string, error) {
	var bookings []models.Booking
	err := q.Preload("Service", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Customer").
		Find(&bookings).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	header := []string{"Reference", "Booked", "Service", "Date", "Slot", "Status", "Customer", "Phone", "Vehicle", "Registration", "Notes"}
	rows := make([][]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []string{
			b.Reference,
			stamp(b.CreatedAt),
			b.Service.Name,
			b.Date,
			b.Slot,
			string(b.Status),
			b.Customer.Name,
			b.Customer.Phone,
			b.VehicleMake + " " + b.VehicleModel,
			b.VehicleRegistration,
			b.Notes,
		})
	}
	return header, rows, nil
}

func leadTable(q *gorm.DB) ([]string, [][]string, error) {
	var leads []models.Lead
	if err := q.Find(&leads).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load leads: %w", err)
	}

	header := []string{"Received", "Name", "Email", "Phone", "Subject", "Source", "Status", "Message"}
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []string{
			stamp(l.CreatedAt), l.Name, l.Email, l.Phone, l.Subject, l.Source, string(l.Status), l.Message,
		})
	}
	return header, rows, nil
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", toCells(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, toCells(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// toCells converts a row for SetSheetRow, keeping whole numbers numeric
func toCells(row []string) *[]interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && len(v) < 16 && (len(v) == 1 || v[0] != '0') {
			cells[i] = n
			continue
		}
		cells[i] = v
	}
	return &cells
}
