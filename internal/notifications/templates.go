package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	textTemplate "text/template"
)

type emailContent struct {
	Subject string
	HTML    string
	Text    string
}

type emailData struct {
	Event     BookingEvent
	Amount    string
	Route     string
	Departure string
	Headline  string
	Body      string
}

const htmlLayout = `<h2>{{.Headline}}</h2>
<p>Hi {{.Event.PassengerName}},</p>
<p>{{.Body}}</p>
<table>
<tr><td>Booking reference</td><td><strong>{{.Event.BookingReference}}</strong></td></tr>
{{if .Route}}<tr><td>Route</td><td>{{.Route}}</td></tr>{{end}}
{{if .Departure}}<tr><td>Departure</td><td>{{.Departure}}</td></tr>{{end}}
<tr><td>Passengers</td><td>{{.Event.PassengerCount}}</td></tr>
<tr><td>Amount</td><td>{{.Amount}}</td></tr>
</table>
<p>Thank you for travelling with EngracedSmile Transport.</p>`

const textLayout = `Hi {{.Event.PassengerName}},

{{.Body}}

Booking reference: {{.Event.BookingReference}}
{{if .Route}}Route: {{.Route}}
{{end}}{{if .Departure}}Departure: {{.Departure}}
{{end}}Passengers: {{.Event.PassengerCount}}
Amount: {{.Amount}}

Thank you for travelling with EngracedSmile Transport.`

var (
	htmlEmail = template.Must(template.New("html").Parse(htmlLayout))
	textEmail = textTemplate.Must(textTemplate.New("text").Parse(textLayout))
)

// renderEmail builds the passenger email for an event
func renderEmail(event BookingEvent) (*emailContent, error) {
	data := emailData{Event: event, Amount: formatNaira(event.Amount)}
	if event.FromCity != "" && event.ToCity != "" {
		data.Route = event.FromCity + " to " + event.ToCity
	}
	if event.DepartureTime != nil {
		data.Departure = event.DepartureTime.Format("Mon 02 Jan 2006, 15:04 MST")
	}

	var subject string
	switch event.Type {
	case EventBookingConfirmed:
		subject = "Your trip is booked - " + event.BookingReference
		data.Headline = "Booking confirmed"
		data.Body = "We have received your payment and your seat is reserved."
	case EventBookingPaymentFailed:
		subject = "Payment unsuccessful - " + event.BookingReference
		data.Headline = "Payment unsuccessful"
		data.Body = "We could not confirm your payment, so this booking was not completed. You can start a new booking at any time."
	case EventBookingRefundRequired:
		subject = "We are refunding your payment - " + event.BookingReference
		data.Headline = "Trip sold out"
		data.Body = "Your payment arrived after the last seat on this trip was taken. Our team will refund you shortly."
	case EventBookingRefunded:
		subject = "Refund issued - " + event.BookingReference
		data.Headline = "Refund issued"
		data.Body = "Your payment arrived after the last seat on this trip was taken, so we have refunded it in full."
	case EventBookingCancelled:
		subject = "Booking cancelled - " + event.BookingReference
		data.Headline = "Booking cancelled"
		data.Body = "Your booking has been cancelled."
	default:
		return nil, fmt.Errorf("no email for event type %q", event.Type)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlEmail.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML email: %w", err)
	}
	if err := textEmail.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render text email: %w", err)
	}
	return &emailContent{Subject: subject, HTML: htmlBuf.String(), Text: textBuf.String()}, nil
}

// formatNaira renders kobo as "NGN 15,000.00"
func formatNaira(kobo int64) string {
	sign := ""
	if kobo < 0 {
		sign = "-"
		kobo = -kobo
	}
	whole := strconv.FormatInt(kobo/100, 10)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return fmt.Sprintf("NGN %s%s.%02d", sign, grouped.String(), kobo%100)
}
