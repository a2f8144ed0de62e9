package booking

import (
	"context"
	"errors"
	"time"

	"bookhub/internal/domain"
	"bookhub/internal/metrics"
	"bookhub/internal/repository"

	"github.com/rs/zerolog"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type Service struct {
	bookings BookingStore
	services ServiceStore
	notifs   Dispatcher
	log      zerolog.Logger
}

func NewService(bookings BookingStore, services ServiceStore, notifs Dispatcher, log zerolog.Logger) *Service {
	return &Service{
		bookings: bookings,
		services: services,
		notifs:   notifs,
		log:      log.With().Str("component", "booking").Logger(),
	}
}

// CreateBooking validates the request, resolves the provider owning
// the service, and seeds the initial pending state. The booking, its
// detail, the ownership junction and the provider's audit notification
// commit in one transaction; push and email fire only after commit.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.ServiceID <= 0 || req.CustomerID <= 0 || req.Price <= 0 || req.EventAddress == "" {
		return nil, ErrValidation
	}

	start, end, err := parseEventWindow(req.StartDate, req.EndDate, req.Time)
	if err != nil {
		return nil, ErrValidation
	}
	if !start.After(time.Now()) {
		return nil, ErrValidation
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrValidation
		}
		return nil, err
	}
	if svc.ProviderID == 0 {
		return nil, ErrValidation
	}

	b := &domain.Booking{
		CustomerID:   req.CustomerID,
		ServiceID:    req.ServiceID,
		EventAddress: req.EventAddress,
		EventStart:   start,
		EventEnd:     end,
		State:        domain.StatePending,
		TotalAmount:  req.Price,
		Notes:        req.Notes,
	}
	d := &domain.BookingDetail{
		Status:    domain.DetailPending,
		UnitPrice: req.Price,
		Quantity:  1,
	}
	j := &domain.BookingService{
		ProviderID: svc.ProviderID,
		ServiceID:  svc.ID,
	}
	n := &domain.Notification{
		UserID:  svc.ProviderID,
		Type:    domain.NotifBookingCreated,
		Title:   "New booking",
		Message: "New booking for " + svc.Name + " on " + start.Format("02.01.2006 15:04"),
	}

	if err := s.bookings.CreateBookingBundle(ctx, b, d, j, n); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	b.Detail = d
	b.Service = j

	metrics.IncTransition("create", "ok")
	if s.notifs != nil {
		s.notifs.BookingCreated(ctx, b, svc.ProviderID, svc.Name)
	}
	return b, nil
}

// TransitionRequest is the logical action request: the identity is the
// already-verified (subject id, role) pair.
type TransitionRequest struct {
	BookingID int64
	ActorID   int64
	ActorRole domain.UserRole
	Action    string
	Reason    string
}

// Transition runs the state machine for one action. Order per request:
// normalize action, ownership guard, temporal gate, transactional
// compare-and-swap of the state pair, then fan-out. An authorization
// or precondition failure leaves no side effects.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*domain.Booking, error) {
	action, ok := ParseAction(req.Action)
	if !ok {
		return nil, ErrUnknownAction
	}
	r, ok := resolve(req.ActorRole, action)
	if !ok {
		return nil, ErrUnknownAction
	}

	if err := s.authorize(ctx, req.BookingID, req.ActorID, req.ActorRole); err != nil {
		metrics.IncTransition(string(action), "forbidden")
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if b.State.Terminal() || !r.from[b.State] {
		metrics.IncTransition(string(action), "conflict")
		return nil, ErrConflict
	}

	if r.timeGated {
		passed, err := s.eventWindowPassed(ctx, req.BookingID)
		if err != nil {
			return nil, err
		}
		if !passed {
			metrics.IncTransition(string(action), "too_early")
			return nil, ErrBusinessRule
		}
	}

	var reason *string
	if r.keepsReason && req.Reason != "" {
		v := req.Reason
		reason = &v
	}

	_, detail := r.target.StatusPair()
	applied, err := s.bookings.ApplyTransition(ctx, b.ID, b.State, r.target, detail, reason)
	if err != nil {
		metrics.IncTransition(string(action), "error")
		return nil, err
	}
	if !applied {
		// Lost the row race. Re-read to tell a vanished booking from a
		// concurrent winner.
		if _, err := s.bookings.GetByID(ctx, b.ID); errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		metrics.IncTransition(string(action), "conflict")
		return nil, ErrConflict
	}

	b.State = r.target
	if reason != nil {
		b.CancellationReason = *reason
	}
	if b.Detail != nil {
		b.Detail.Status = detail
	}

	metrics.IncTransition(string(action), "ok")
	s.log.Info().
		Int64("booking_id", b.ID).
		Str("action", string(action)).
		Str("role", string(req.ActorRole)).
		Str("state", string(b.State)).
		Msg("booking transitioned")

	if s.notifs != nil {
		s.notifs.BookingTransitioned(ctx, TransitionOutcome{
			Booking:   b,
			Action:    action,
			ActorRole: req.ActorRole,
			Reason:    req.Reason,
		})
	}
	return b, nil
}

// GetBooking returns the booking with its projected status pair.
func (s *Service) GetBooking(ctx context.Context, bookingID int64, actorID int64, role domain.UserRole) (*domain.Booking, error) {
	if err := s.authorize(ctx, bookingID, actorID, role); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) authorize(ctx context.Context, bookingID, actorID int64, role domain.UserRole) error {
	var (
		owns bool
		err  error
	)
	switch role {
	case domain.RoleProvider:
		owns, err = s.bookings.IsProviderOwner(ctx, bookingID, actorID)
	case domain.RoleCustomer:
		owns, err = s.bookings.IsCustomerOwner(ctx, bookingID, actorID)
	default:
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !owns {
		return ErrForbidden
	}
	return nil
}

// eventWindowPassed is the temporal business rule: a provider may mark
// a booking completed only strictly after its event end.
func (s *Service) eventWindowPassed(ctx context.Context, bookingID int64) (bool, error) {
	_, end, err := s.bookings.GetEventWindow(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	return time.Now().After(end), nil
}

func parseEventWindow(startDate, endDate, timeOfDay string) (time.Time, time.Time, error) {
	if endDate == "" {
		endDate = startDate
	}

	sd, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	ed, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if ed.Before(sd) {
		return time.Time{}, time.Time{}, errors.New("end date before start date")
	}
	tod, err := time.Parse(timeLayout, timeOfDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := time.Date(sd.Year(), sd.Month(), sd.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
	end := time.Date(ed.Year(), ed.Month(), ed.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
	return start, end, nil
}
