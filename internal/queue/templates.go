package queue

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ShowTimeLayout formats showtimes in notification mails.
const ShowTimeLayout = "02/01/2006 15:04"

const signature = "\n\nWith Regards,\nThe Movie Booking Team"

var mailFuncs = template.FuncMap{
	"showtime": func(e BookingEvent) string { return e.ShowTime.Format(ShowTimeLayout) },
	"seats":    func(e BookingEvent) string { return strings.Join(e.Seats, ", ") },
}

var (
	confirmedTmpl = template.Must(template.New(KindBookingConfirmed).Funcs(mailFuncs).Parse(
		`Hello {{.FullName}},
    Your booking is confirmed. Booking details:

Movie: {{.MovieTitle}}
Date: {{showtime .}}
{{- if .ScreenName}}
Screen: {{.ScreenName}}
{{- end}}
Seats: {{seats .}}
{{- if .Amount}}
Amount paid: {{.Amount}}
{{- end}}
Ticket: #{{.TicketID}}

Enjoy the show. Reply to this mail if anything looks wrong.` + signature))

	cancelledTmpl = template.Must(template.New(KindBookingCancelled).Funcs(mailFuncs).Parse(
		`Hello {{.FullName}},
    Your booking #{{.TicketID}} has been cancelled and the payment refunded. Cancelled booking:

Movie: {{.MovieTitle}}
Date & Time: {{showtime .}}
Seats: {{seats .}}

If you did not request this cancellation, contact our support team.` + signature))
)

var subjects = map[string]string{
	KindBookingConfirmed: "Your Booking Confirmation",
	KindBookingCancelled: "Your Booking Has Been Cancelled",
}

// Render builds the mail for an event.
func Render(e BookingEvent) (Mail, error) {
	var tmpl *template.Template
	switch e.Kind {
	case KindBookingConfirmed:
		tmpl = confirmedTmpl
	case KindBookingCancelled:
		tmpl = cancelledTmpl
	default:
		return Mail{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.Email == "" {
		return Mail{}, fmt.Errorf("event for ticket %d has no recipient", e.TicketID)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, e); err != nil {
		return Mail{}, fmt.Errorf("render %s: %w", e.Kind, err)
	}
	return Mail{To: e.Email, Subject: subjects[e.Kind], Body: body.String()}, nil
}
