package booking

import (
	"context"
	"time"

	"bookhub/internal/domain"
)

// BookingStore is the transactional store gateway for booking records.
type BookingStore interface {
	CreateBookingBundle(ctx context.Context, b *domain.Booking, d *domain.BookingDetail, j *domain.BookingService, n *domain.Notification) error
	ApplyTransition(ctx context.Context, bookingID int64, from, to domain.State, detail domain.DetailStatus, reason *string) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	IsProviderOwner(ctx context.Context, bookingID, providerID int64) (bool, error)
	IsCustomerOwner(ctx context.Context, bookingID, customerID int64) (bool, error)
	GetEventWindow(ctx context.Context, bookingID int64) (time.Time, time.Time, error)
}

// ServiceStore resolves the provider owning a requested service.
type ServiceStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// Dispatcher fans a committed outcome out to the push and email
// channels. Both are best-effort: implementations must not block on
// delivery and never report failure back to the caller.
type Dispatcher interface {
	BookingCreated(ctx context.Context, b *domain.Booking, providerID int64, serviceName string)
	BookingTransitioned(ctx context.Context, o TransitionOutcome)
}

// TransitionOutcome is what the dispatcher learns about a committed
// transition. Booking carries the post-transition record.
type TransitionOutcome struct {
	Booking   *domain.Booking
	Action    Action
	ActorRole domain.UserRole
	Reason    string
}
