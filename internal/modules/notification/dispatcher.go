package notification

import (
	"context"
	"fmt"

	"bookhub/internal/domain"
	"bookhub/internal/mailer"
	"bookhub/internal/metrics"
	"bookhub/internal/modules/booking"
	"bookhub/internal/repository"

	"github.com/rs/zerolog"
)

// ContactStore reads already-committed booking data for notification
// content. All lookups are keyed by booking id.
type ContactStore interface {
	GetCustomerContact(ctx context.Context, bookingID int64) (*repository.Contact, error)
	GetProviderContact(ctx context.Context, bookingID int64) (*repository.Contact, error)
	GetServiceName(ctx context.Context, bookingID int64) (string, error)
}

// AuditStore persists the notification audit row.
type AuditStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// PushSink delivers a real-time event. Fire-and-forget: no delivery
// confirmation, an absent connection is not an error.
type PushSink interface {
	Notify(receiverID int64, message string, bookingID int64)
}

// EmailQueue hands a rendered message to the background pool. Returns
// false when the queue is saturated and the message was dropped.
type EmailQueue interface {
	Enqueue(m mailer.Message) bool
}

// Dispatcher fans one committed booking outcome out to the
// counterparty over push and email, and records the audit row. It is
// invoked strictly after commit and never reports failure upward:
// every channel error ends at a log line.
type Dispatcher struct {
	store ContactStore
	audit AuditStore
	push  PushSink
	mail  EmailQueue
	log   zerolog.Logger
}

func NewDispatcher(store ContactStore, audit AuditStore, push PushSink, mail EmailQueue, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store: store,
		audit: audit,
		push:  push,
		mail:  mail,
		log:   log.With().Str("component", "dispatcher").Logger(),
	}
}

// BookingCreated notifies both sides of a new booking: push to the
// customer, email to the provider. The provider's audit row was
// already written inside the creation transaction.
func (d *Dispatcher) BookingCreated(ctx context.Context, b *domain.Booking, providerID int64, serviceName string) {
	msg := fmt.Sprintf("Booking #%d for %s created", b.ID, serviceName)
	d.deliver(b.CustomerID, msg, b.ID)

	provider, err := d.store.GetProviderContact(ctx, b.ID)
	if err != nil {
		d.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("provider contact lookup failed, email skipped")
		return
	}
	customer, err := d.store.GetCustomerContact(ctx, b.ID)
	if err != nil {
		d.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("customer contact lookup failed, email skipped")
		return
	}

	d.sendEmail(tmplCreated, provider.Email, emailContext{
		BookingID:     b.ID,
		ServiceName:   serviceName,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Start:         b.EventStart,
		End:           b.EventEnd,
		Amount:        b.TotalAmount,
	})
}

// BookingTransitioned notifies the counterparty of the actor: the
// customer learns about provider actions and vice versa.
func (d *Dispatcher) BookingTransitioned(ctx context.Context, o booking.TransitionOutcome) {
	b := o.Booking

	var (
		recipient *repository.Contact
		err       error
	)
	if o.ActorRole == domain.RoleProvider {
		recipient, err = d.store.GetCustomerContact(ctx, b.ID)
	} else {
		recipient, err = d.store.GetProviderContact(ctx, b.ID)
	}
	if err != nil {
		d.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("recipient lookup failed, notification skipped")
		return
	}

	serviceName, err := d.store.GetServiceName(ctx, b.ID)
	if err != nil {
		d.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("service name lookup failed")
	}

	notifType, kind, verb := classify(o.Action, o.ActorRole)

	msg := fmt.Sprintf("Booking #%d for %s %s", b.ID, serviceName, verb)
	if o.Reason != "" {
		msg += ". Reason: " + o.Reason
	}

	if d.audit != nil {
		n := &domain.Notification{
			UserID:    recipient.UserID,
			Type:      notifType,
			Title:     "Booking " + verb,
			Message:   msg,
			BookingID: b.ID,
		}
		if err := d.audit.Create(ctx, n); err != nil {
			d.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("audit notification write failed")
		}
	}

	d.deliver(recipient.UserID, msg, b.ID)

	d.sendEmail(kind, recipient.Email, emailContext{
		BookingID:   b.ID,
		ServiceName: serviceName,
		Start:       b.EventStart,
		End:         b.EventEnd,
		Amount:      b.TotalAmount,
		Reason:      o.Reason,
	})
}

func (d *Dispatcher) deliver(receiverID int64, msg string, bookingID int64) {
	if d.push == nil {
		return
	}
	d.push.Notify(receiverID, msg, bookingID)
}

func (d *Dispatcher) sendEmail(kind templateKind, to string, ec emailContext) {
	if d.mail == nil || to == "" {
		return
	}
	subject, body := renderEmail(kind, ec)
	if !d.mail.Enqueue(mailer.Message{To: to, Subject: subject, Body: body}) {
		metrics.IncEmail("dropped")
		d.log.Warn().Str("to", to).Int64("booking_id", ec.BookingID).Msg("email queue full, message dropped")
	}
}

// classify maps an action to the audit type, the email template and
// the human verb used in push/audit messages.
func classify(a booking.Action, role domain.UserRole) (domain.NotificationType, templateKind, string) {
	switch a {
	case booking.ActionAccept:
		return domain.NotifBookingAccepted, tmplAccepted, "accepted"
	case booking.ActionReject:
		return domain.NotifBookingRejected, tmplRejected, "rejected"
	case booking.ActionComplete:
		return domain.NotifBookingCompleted, tmplCompleted, "completed"
	case booking.ActionMarkComplete:
		return domain.NotifBookingCompleted, tmplCompleted, "marked complete by the customer"
	default: // cancel, either side
		if role == domain.RoleCustomer {
			return domain.NotifBookingCancelled, tmplCancelled, "cancelled by the customer"
		}
		return domain.NotifBookingCancelled, tmplCancelled, "cancelled"
	}
}
