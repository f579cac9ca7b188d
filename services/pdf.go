package services

import (
	"bytes"
	"fmt"
	"time"

	"flightcast/models"

	"github.com/jung-kurt/gofpdf"
)

// ReportData is everything the results page shows for one search.
type ReportData struct {
	Search   models.FlightSearch
	Flights  []models.Flight
	USDRate  float64 // 0 when the rate is unknown; prices then stay in their own currency
	Forecast *models.Forecast
}

// GenerateResultsPDF renders search results and the destination forecast to PDF bytes.
func GenerateResultsPDF(data ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(18, 52, 86)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(15, 8)
	pdf.CellFormat(100, 10, "flightcast", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(15, 18)
	pdf.CellFormat(180, 6, "Flight search results", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(18, 52, 86)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(180, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(135, 7, tr(value), "", 1, "L", false, 0, "")
	}

	// ── Search ────────────────────────────────────────────────
	s := data.Search
	sectionHeader("Search")
	row("From", fmt.Sprintf("%s (%s)", s.Origin.Name, s.Origin.IATACode))
	row("To", fmt.Sprintf("%s (%s)", s.Destination.Name, s.Destination.IATACode))
	row("Depart", fmtDateReadable(s.DepartDate))
	row("Return", fmtDateReadable(s.ReturnDate))
	row("Passengers", fmt.Sprintf("%d", s.Passengers))
	row("Generated", time.Now().Format("02 Jan 2006, 15:04"))
	pdf.Ln(4)

	// ── Flights ───────────────────────────────────────────────
	sectionHeader(fmt.Sprintf("Flights (%d)", len(data.Flights)))
	widths := []float64{40, 22, 58, 28, 14, 18}
	headers := []string{"Airline", "Flight", "Outbound", "Duration", "Stops", "Price"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 236, 242)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, f := range data.Flights {
		cells := []string{
			f.Airline,
			f.FlightNumber,
			formatFlightLeg(f.DepartureTime, f.ArrivalTime),
			f.Duration,
			fmt.Sprintf("%d", f.Stops),
			FormatPrice(f.Price, f.Currency, data.USDRate),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Flights) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(180, 7, "No flights found.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Weather ───────────────────────────────────────────────
	if data.Forecast != nil && len(data.Forecast.Days) > 0 {
		sectionHeader("Weather at " + s.Destination.Name)
		for _, d := range data.Forecast.Days {
			row(fmtDateReadable(d.Date), fmt.Sprintf("%.0fF (%.0f / %.0f)  %s", d.Temp, d.TempMin, d.TempMax, d.Conditions))
		}
	}

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8, "Not a booking confirmation. Prices subject to change.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatPrice shows a price in USD when a rate is known and the price is not already USD.
func FormatPrice(amount float64, currency string, usdRate float64) string {
	if currency == "USD" {
		return fmt.Sprintf("$%.2f", amount)
	}
	if usdRate > 0 {
		return fmt.Sprintf("$%.2f", amount*usdRate)
	}
	if currency == "" {
		currency = "EUR"
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

// Amadeus segment times carry no zone
const segmentTimeLayout = "2006-01-02T15:04:05"

func formatFlightLeg(dep, arr string) string {
	depT, err1 := time.Parse(segmentTimeLayout, dep)
	arrT, err2 := time.Parse(segmentTimeLayout, arr)
	if err1 != nil || err2 != nil {
		if dep != "" && arr != "" {
			return dep + " - " + arr
		}
		return "N/A"
	}
	return fmt.Sprintf("%s - %s", depT.Format("02 Jan 15:04"), arrT.Format("02 Jan 15:04"))
}

// FormatFlightLeg is formatFlightLeg for other packages' tables.
func FormatFlightLeg(dep, arr string) string {
	return formatFlightLeg(dep, arr)
}
