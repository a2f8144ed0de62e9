package domain

import "time"

type NotificationType string

const (
	NotifBookingCreated   NotificationType = "booking_created"
	NotifBookingAccepted  NotificationType = "booking_accepted"
	NotifBookingRejected  NotificationType = "booking_rejected"
	NotifBookingCompleted NotificationType = "booking_completed"
	NotifBookingCancelled NotificationType = "booking_cancelled"
)

// Notification is the persisted audit trail of what was told to whom,
// independent of whether the live push channel delivered anything.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	BookingID int64            `json:"booking_id"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
