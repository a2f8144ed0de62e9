package domain

import "time"

// State is the single authoritative booking state. The legacy
// (BookingStatus, DetailStatus) pair exposed to clients is a read-only
// projection of it, see StatusPair.
type State string

const (
	StatePending           State = "pending"
	StateAccepted          State = "accepted"
	StateRejected          State = "rejected"
	StateCompleted         State = "completed"
	StateCancelled         State = "cancelled"
	StateCustomerCompleted State = "customer_completed"
)

// Terminal reports whether no further transitions are accepted from s.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateCompleted, StateCancelled:
		return true
	}
	return false
}

func (s State) Valid() bool {
	switch s {
	case StatePending, StateAccepted, StateRejected,
		StateCompleted, StateCancelled, StateCustomerCompleted:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// DetailStatus is the finer-grained UI-facing status carried on the
// booking detail row.
type DetailStatus string

const (
	DetailPending   DetailStatus = "pending"
	DetailConfirmed DetailStatus = "confirmed"
	DetailCancelled DetailStatus = "cancelled"
	DetailCompleted DetailStatus = "completed"
)

// StatusPair projects a state onto the coarse/fine status pair. The
// mapping is total over the valid states; an unknown state falls back
// to (pending, pending).
func (s State) StatusPair() (BookingStatus, DetailStatus) {
	switch s {
	case StateAccepted:
		return BookingAccepted, DetailConfirmed
	case StateRejected:
		return BookingRejected, DetailCancelled
	case StateCompleted:
		return BookingCompleted, DetailCompleted
	case StateCancelled:
		return BookingCancelled, DetailCancelled
	case StateCustomerCompleted:
		return BookingAccepted, DetailCompleted
	default:
		return BookingPending, DetailPending
	}
}

type Booking struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	ServiceID    int64     `json:"service_id"`
	EventAddress string    `json:"event_address"`
	EventStart   time.Time `json:"event_start"`
	EventEnd     time.Time `json:"event_end"`
	State        State     `json:"state"`
	TotalAmount  float64   `json:"total_amount"`
	Notes        string    `json:"notes,omitempty"`
	// Filled only on rejected/cancelled transitions that supplied one.
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Detail  *BookingDetail  `json:"detail,omitempty"`
	Service *BookingService `json:"service,omitempty"`
}

// Status reports the coarse projected status.
func (b *Booking) Status() BookingStatus {
	st, _ := b.State.StatusPair()
	return st
}

// BookingDetail is the one-to-one companion row carrying the UI-facing
// detail status and the line item. Exactly one exists per booking.
type BookingDetail struct {
	ID        int64        `json:"id"`
	BookingID int64        `json:"booking_id"`
	Status    DetailStatus `json:"status"`
	UnitPrice float64      `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// BookingService is the ownership junction: the sole source of truth
// for which provider may act on a booking.
type BookingService struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"booking_id"`
	ProviderID int64     `json:"provider_id"`
	ServiceID  int64     `json:"service_id"`
	CreatedAt  time.Time `json:"created_at"`
}
