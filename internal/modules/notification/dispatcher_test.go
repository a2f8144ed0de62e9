package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookhub/internal/domain"
	"bookhub/internal/mailer"
	"bookhub/internal/modules/booking"
	"bookhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContactStore struct {
	customer *repository.Contact
	provider *repository.Contact
	svcName  string
	err      error
}

func (f *fakeContactStore) GetCustomerContact(ctx context.Context, bookingID int64) (*repository.Contact, error) {
	return f.customer, f.err
}

func (f *fakeContactStore) GetProviderContact(ctx context.Context, bookingID int64) (*repository.Contact, error) {
	return f.provider, f.err
}

func (f *fakeContactStore) GetServiceName(ctx context.Context, bookingID int64) (string, error) {
	return f.svcName, nil
}

type fakeAudit struct {
	rows []domain.Notification
	err  error
}

func (f *fakeAudit) Create(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *n)
	return nil
}

type fakePush struct {
	receivers []int64
	messages  []string
}

func (f *fakePush) Notify(receiverID int64, message string, bookingID int64) {
	f.receivers = append(f.receivers, receiverID)
	f.messages = append(f.messages, message)
}

type fakeQueue struct {
	msgs []mailer.Message
	full bool
}

func (f *fakeQueue) Enqueue(m mailer.Message) bool {
	if f.full {
		return false
	}
	f.msgs = append(f.msgs, m)
	return true
}

func newFixture() (*fakeContactStore, *fakeAudit, *fakePush, *fakeQueue, *Dispatcher) {
	store := &fakeContactStore{
		customer: &repository.Contact{UserID: 1, Name: "Alice", Email: "alice@example.com"},
		provider: &repository.Contact{UserID: 2, Name: "Bob", Email: "bob@example.com", Phone: "+7700123"},
		svcName:  "Wedding Photography",
	}
	audit := &fakeAudit{}
	push := &fakePush{}
	queue := &fakeQueue{}
	d := NewDispatcher(store, audit, push, queue, zerolog.Nop())
	return store, audit, push, queue, d
}

func acceptedOutcome() booking.TransitionOutcome {
	return booking.TransitionOutcome{
		Booking: &domain.Booking{
			ID:          10,
			CustomerID:  1,
			State:       domain.StateAccepted,
			EventStart:  time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC),
			EventEnd:    time.Date(2026, 9, 12, 12, 0, 0, 0, time.UTC),
			TotalAmount: 1500,
		},
		Action:    booking.ActionAccept,
		ActorRole: domain.RoleProvider,
	}
}

func TestBookingTransitioned_ProviderActionNotifiesCustomer(t *testing.T) {
	_, audit, push, queue, d := newFixture()

	d.BookingTransitioned(context.Background(), acceptedOutcome())

	// exactly one push, addressed to the customer, naming service and id
	require.Len(t, push.receivers, 1)
	assert.Equal(t, int64(1), push.receivers[0])
	assert.Contains(t, push.messages[0], "Wedding Photography")
	assert.Contains(t, push.messages[0], "#10")

	// exactly one email to the customer
	require.Len(t, queue.msgs, 1)
	assert.Equal(t, "alice@example.com", queue.msgs[0].To)
	assert.Contains(t, queue.msgs[0].Subject, "accepted")
	assert.Contains(t, queue.msgs[0].Body, "Wedding Photography")

	// one audit row for the customer
	require.Len(t, audit.rows, 1)
	assert.Equal(t, int64(1), audit.rows[0].UserID)
	assert.Equal(t, domain.NotifBookingAccepted, audit.rows[0].Type)
	assert.Equal(t, int64(10), audit.rows[0].BookingID)
}

func TestBookingTransitioned_CustomerActionNotifiesProvider(t *testing.T) {
	_, audit, push, queue, d := newFixture()

	o := acceptedOutcome()
	o.Action = booking.ActionCancel
	o.ActorRole = domain.RoleCustomer
	o.Reason = "schedule conflict"

	d.BookingTransitioned(context.Background(), o)

	require.Len(t, push.receivers, 1)
	assert.Equal(t, int64(2), push.receivers[0])
	assert.Contains(t, push.messages[0], "schedule conflict")

	require.Len(t, queue.msgs, 1)
	assert.Equal(t, "bob@example.com", queue.msgs[0].To)
	assert.Contains(t, queue.msgs[0].Body, "schedule conflict")

	require.Len(t, audit.rows, 1)
	assert.Equal(t, int64(2), audit.rows[0].UserID)
	assert.Equal(t, domain.NotifBookingCancelled, audit.rows[0].Type)
}

func TestBookingTransitioned_RecipientLookupFailureIsSilent(t *testing.T) {
	store, audit, push, queue, d := newFixture()
	store.err = errors.New("db gone")

	// must not panic and must not deliver anything
	d.BookingTransitioned(context.Background(), acceptedOutcome())

	assert.Empty(t, push.receivers)
	assert.Empty(t, queue.msgs)
	assert.Empty(t, audit.rows)
}

func TestBookingTransitioned_AuditFailureStillDelivers(t *testing.T) {
	_, audit, push, queue, d := newFixture()
	audit.err = errors.New("insert failed")

	d.BookingTransitioned(context.Background(), acceptedOutcome())

	assert.Len(t, push.receivers, 1)
	assert.Len(t, queue.msgs, 1)
}

func TestBookingTransitioned_FullQueueNeverErrors(t *testing.T) {
	_, _, push, queue, d := newFixture()
	queue.full = true

	d.BookingTransitioned(context.Background(), acceptedOutcome())

	// push still went out; the dropped email is only a log line
	assert.Len(t, push.receivers, 1)
	assert.Empty(t, queue.msgs)
}

func TestBookingCreated_PushesCustomerAndEmailsProvider(t *testing.T) {
	_, audit, push, queue, d := newFixture()

	b := &domain.Booking{
		ID:          11,
		CustomerID:  1,
		State:       domain.StatePending,
		EventStart:  time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC),
		EventEnd:    time.Date(2026, 9, 12, 12, 0, 0, 0, time.UTC),
		TotalAmount: 1500,
	}
	d.BookingCreated(context.Background(), b, 2, "Wedding Photography")

	require.Len(t, push.receivers, 1)
	assert.Equal(t, int64(1), push.receivers[0])

	require.Len(t, queue.msgs, 1)
	assert.Equal(t, "bob@example.com", queue.msgs[0].To)
	assert.Contains(t, queue.msgs[0].Body, "Alice")
	assert.Contains(t, queue.msgs[0].Body, "1500.00")

	// the creation transaction already wrote the provider audit row
	assert.Empty(t, audit.rows)
}

func TestDispatcher_NilSinksAreTolerated(t *testing.T) {
	store := &fakeContactStore{
		customer: &repository.Contact{UserID: 1, Email: "alice@example.com"},
		provider: &repository.Contact{UserID: 2, Email: "bob@example.com"},
	}
	d := NewDispatcher(store, nil, nil, nil, zerolog.Nop())

	d.BookingTransitioned(context.Background(), acceptedOutcome())
}
