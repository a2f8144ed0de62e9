package notification

import (
	"fmt"
	"strings"
	"time"
)

type templateKind string

const (
	tmplCreated   templateKind = "created"
	tmplAccepted  templateKind = "accepted"
	tmplRejected  templateKind = "rejected"
	tmplCompleted templateKind = "completed"
	tmplCancelled templateKind = "cancelled"
)

type emailContext struct {
	BookingID     int64
	ServiceName   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Start         time.Time
	End           time.Time
	Amount        float64
	Reason        string
}

const emailTimeLayout = "02.01.2006 15:04"

func renderEmail(kind templateKind, ec emailContext) (subject, body string) {
	var sb strings.Builder

	switch kind {
	case tmplCreated:
		subject = fmt.Sprintf("New booking #%d: %s", ec.BookingID, ec.ServiceName)
		fmt.Fprintf(&sb, "You have a new booking request for %s.\n\n", ec.ServiceName)
		fmt.Fprintf(&sb, "Customer: %s (%s", ec.CustomerName, ec.CustomerEmail)
		if ec.CustomerPhone != "" {
			fmt.Fprintf(&sb, ", %s", ec.CustomerPhone)
		}
		sb.WriteString(")\n")
	case tmplAccepted:
		subject = fmt.Sprintf("Booking #%d accepted", ec.BookingID)
		fmt.Fprintf(&sb, "Your booking for %s has been accepted.\n", ec.ServiceName)
	case tmplRejected:
		subject = fmt.Sprintf("Booking #%d rejected", ec.BookingID)
		fmt.Fprintf(&sb, "Your booking for %s has been rejected.\n", ec.ServiceName)
	case tmplCompleted:
		subject = fmt.Sprintf("Booking #%d completed", ec.BookingID)
		fmt.Fprintf(&sb, "Booking for %s has been marked completed.\n", ec.ServiceName)
	case tmplCancelled:
		subject = fmt.Sprintf("Booking #%d cancelled", ec.BookingID)
		fmt.Fprintf(&sb, "Booking for %s has been cancelled.\n", ec.ServiceName)
	}

	if ec.Reason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", ec.Reason)
	}
	if !ec.Start.IsZero() {
		fmt.Fprintf(&sb, "\nWhen: %s", ec.Start.Format(emailTimeLayout))
		if !ec.End.IsZero() && !ec.End.Equal(ec.Start) {
			fmt.Fprintf(&sb, " - %s", ec.End.Format(emailTimeLayout))
		}
		sb.WriteString("\n")
	}
	if ec.Amount > 0 {
		fmt.Fprintf(&sb, "Amount: %.2f\n", ec.Amount)
	}
	fmt.Fprintf(&sb, "\nBooking ID: %d\n", ec.BookingID)

	return subject, sb.String()
}
