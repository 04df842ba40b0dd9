package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"hospital-appointment-server/internal/domain/entity"
	"hospital-appointment-server/pkg/clock"

	"github.com/jung-kurt/gofpdf"
)

// ReportService renders a patient's appointment list as a PDF document.
// Callers are expected to run the status sweep first so the report never
// shows a stale pending row.
type ReportService struct {
	clock    clock.Clock
	location *time.Location
}

func NewReportService(clk clock.Clock, location *time.Location) *ReportService {
	return &ReportService{
		clock:    clk,
		location: location,
	}
}

// Filename builds the download name: appointments_<name>_<yyyymmdd>.pdf
func (s *ReportService) Filename(patient *entity.User) string {
	name := strings.ReplaceAll(strings.TrimSpace(patient.FullName), " ", "_")
	if name == "" {
		name = "patient"
	}
	return fmt.Sprintf("appointments_%s_%s.pdf", name, s.clock.Now().In(s.location).Format("20060102"))
}

// Generate renders the report and returns the PDF bytes.
func (s *ReportService) Generate(patient *entity.User, appointments []entity.Appointment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 20, 14)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 14, "HOSPITAL SYSTEM", "", 1, "C", false, 0, "")

	// Banner
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(231, 76, 60)
	pdf.CellFormat(0, 11, "Medical appointment report", "", 1, "C", true, 0, "")
	pdf.Ln(6)

	s.separator(pdf, 149, 165, 166, 0.5)
	pdf.Ln(6)

	// Patient block
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(52, 73, 94)
	pdf.CellFormat(0, 6, "Patient: "+patient.FullName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Email: "+patient.Email, "", 1, "L", false, 0, "")
	pdf.Ln(5)

	if len(appointments) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 8, "You have no registered appointments.", "", 1, "L", false, 0, "")
	} else {
		s.table(pdf, appointments)
	}

	pdf.Ln(10)
	s.separator(pdf, 189, 195, 199, 0.2)
	pdf.Ln(3)

	// Footer
	generatedAt := s.clock.Now().In(s.location).Format("02/01/2006 15:04")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(0, 6, "Generated on "+generatedAt+" | Hospital System", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render appointment report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) table(pdf *gofpdf.Fpdf, appointments []entity.Appointment) {
	widths := []float64{34, 26, 74, 48}
	headers := []string{"Date", "Time", "Doctor", "Status"}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(52, 152, 219)
	pdf.SetDrawColor(128, 128, 128)
	pdf.SetLineWidth(0.2)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 10, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for i, appointment := range appointments {
		// Alternating row bands
		if i%2 == 0 {
			pdf.SetFillColor(236, 240, 241)
		} else {
			pdf.SetFillColor(223, 230, 233)
		}

		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(widths[0], 9, appointment.Date.Format("02/01/2006"), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[1], 9, formatTimeOfDay(appointment.Time), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[2], 9, appointment.Doctor.FullName, "1", 0, "C", true, 0, "")

		r, g, b := statusColor(appointment.Status)
		pdf.SetTextColor(r, g, b)
		pdf.SetFontStyle("B")
		pdf.CellFormat(widths[3], 9, strings.ToUpper(string(appointment.Status)), "1", 0, "C", true, 0, "")
		pdf.SetFontStyle("")
		pdf.Ln(-1)
	}
}

func (s *ReportService) separator(pdf *gofpdf.Fpdf, r, g, b int, width float64) {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.SetDrawColor(r, g, b)
	pdf.SetLineWidth(width)
	pdf.Line(left, pdf.GetY(), pageWidth-right, pdf.GetY())
}

func statusColor(status entity.AppointmentStatus) (int, int, int) {
	switch status {
	case entity.AppointmentStatusCompleted:
		return 39, 174, 96
	case entity.AppointmentStatusPending:
		return 230, 126, 34
	default:
		return 192, 57, 43
	}
}

// formatTimeOfDay trims database time values (HH:MM:SS) down to HH:MM.
func formatTimeOfDay(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
