package bookings

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
)

// buildETicketPDF renders a one-page A4 e-ticket
func buildETicketPDF(b *Booking, issuedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+b.BookingReference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "EngracedSmile Transport - E-TICKET")
	pdf.Ln(14)

	route, departure, vehicle := "-", "-", "-"
	if b.Trip != nil {
		departure = b.Trip.DepartureTime.UTC().Format("Mon 02 Jan 2006 15:04 MST")
		if b.Trip.Route != nil {
			route = b.Trip.Route.FromCity + " -> " + b.Trip.Route.ToCity
		}
		if b.Trip.Vehicle != nil {
			vehicle = b.Trip.Vehicle.PlateNumber
		}
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking reference : %s", b.BookingReference),
		fmt.Sprintf("Passenger         : %s", safe(b.PassengerName)),
		fmt.Sprintf("Phone             : %s", safe(b.PassengerPhone)),
		fmt.Sprintf("Route             : %s", route),
		fmt.Sprintf("Departure         : %s", departure),
		fmt.Sprintf("Vehicle           : %s", vehicle),
		fmt.Sprintf("Seat              : %s", safe(b.SeatNumber)),
		fmt.Sprintf("Passengers        : %d", b.PassengerCount),
		fmt.Sprintf("Amount paid       : NGN %s", koboToNaira(b.TotalAmount)),
		fmt.Sprintf("Issued            : %s", issuedAt.UTC().Format("2006-01-02 15:04 MST")),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this ticket and a valid ID at the terminal 30 minutes before departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render ticket: %w", err)
	}
	return buf.Bytes(), "ETICKET_" + b.BookingReference + ".pdf", nil
}

func safe(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func koboToNaira(kobo int64) string {
	return strconv.FormatInt(kobo/100, 10) + "." + fmt.Sprintf("%02d", kobo%100)
}
