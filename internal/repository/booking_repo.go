package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const pgUniqueViolation = "23505"

// translateError maps backend-specific unique-constraint violations to
// ErrDuplicate; everything else passes through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Transaction runs fn against a tx-scoped repository. fn returning an
// error rolls the whole transaction back.
func (r *BookingRepository) Transaction(ctx context.Context, fn func(tx *BookingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingRepository{db: tx})
	})
}

type bookingModel struct {
	ID                 int64     `gorm:"column:id;primaryKey"`
	CustomerID         int64     `gorm:"column:customer_id"`
	ServiceID          int64     `gorm:"column:service_id"`
	EventAddress       string    `gorm:"column:event_address"`
	EventStart         time.Time `gorm:"column:event_start"`
	EventEnd           time.Time `gorm:"column:event_end"`
	State              string    `gorm:"column:state"`
	TotalAmount        float64   `gorm:"column:total_amount"`
	Notes              *string   `gorm:"column:notes"`
	CancellationReason *string   `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingDetailModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	BookingID int64     `gorm:"column:booking_id;uniqueIndex"`
	Status    string    `gorm:"column:status"`
	UnitPrice float64   `gorm:"column:unit_price"`
	Quantity  int       `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (bookingDetailModel) TableName() string { return "booking_details" }

type bookingServiceModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	BookingID  int64     `gorm:"column:booking_id;uniqueIndex"`
	ProviderID int64     `gorm:"column:provider_id"`
	ServiceID  int64     `gorm:"column:service_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (bookingServiceModel) TableName() string { return "booking_services" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var notes, reason string
	if m.Notes != nil {
		notes = *m.Notes
	}
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}

	return &domain.Booking{
		ID:                 m.ID,
		CustomerID:         m.CustomerID,
		ServiceID:          m.ServiceID,
		EventAddress:       m.EventAddress,
		EventStart:         m.EventStart,
		EventEnd:           m.EventEnd,
		State:              domain.State(m.State),
		TotalAmount:        m.TotalAmount,
		Notes:              notes,
		CancellationReason: reason,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var notes *string
	if b.Notes != "" {
		v := b.Notes
		notes = &v
	}
	var reason *string
	if b.CancellationReason != "" {
		v := b.CancellationReason
		reason = &v
	}

	return bookingModel{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		ServiceID:          b.ServiceID,
		EventAddress:       b.EventAddress,
		EventStart:         b.EventStart,
		EventEnd:           b.EventEnd,
		State:              string(b.State),
		TotalAmount:        b.TotalAmount,
		Notes:              notes,
		CancellationReason: reason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) CreateDetail(ctx context.Context, d *domain.BookingDetail) error {
	m := bookingDetailModel{
		BookingID: d.BookingID,
		Status:    string(d.Status),
		UnitPrice: d.UnitPrice,
		Quantity:  d.Quantity,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	d.ID = m.ID
	return nil
}

func (r *BookingRepository) CreateService(ctx context.Context, s *domain.BookingService) error {
	m := bookingServiceModel{
		BookingID:  s.BookingID,
		ProviderID: s.ProviderID,
		ServiceID:  s.ServiceID,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	s.ID = m.ID
	return nil
}

// CreateNotification writes the audit row. Lives here as well as on
// NotificationRepository so the creation flow can write it inside the
// booking transaction.
func (r *BookingRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	m := toNotificationModel(n)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	n.ID = m.ID
	return nil
}

// CreateBookingBundle inserts the booking, its detail row, its
// ownership junction and the provider-addressed audit notification in
// one transaction. Any failure rolls back all four.
func (r *BookingRepository) CreateBookingBundle(ctx context.Context, b *domain.Booking, d *domain.BookingDetail, j *domain.BookingService, n *domain.Notification) error {
	return r.Transaction(ctx, func(tx *BookingRepository) error {
		if err := tx.Create(ctx, b); err != nil {
			return err
		}
		d.BookingID = b.ID
		j.BookingID = b.ID
		n.BookingID = b.ID
		if err := tx.CreateDetail(ctx, d); err != nil {
			return err
		}
		if err := tx.CreateService(ctx, j); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, n)
	})
}

// ApplyTransition atomically moves the booking from one state to
// another and writes the projected detail status. Returns false when
// the compare-and-swap lost (row gone or state moved); in that case
// nothing is written.
func (r *BookingRepository) ApplyTransition(ctx context.Context, bookingID int64, from, to domain.State, detail domain.DetailStatus, reason *string) (bool, error) {
	var applied bool
	err := r.Transaction(ctx, func(tx *BookingRepository) error {
		ok, err := tx.UpdateState(ctx, bookingID, from, to, reason)
		if err != nil {
			return err
		}
		applied = ok
		if !ok {
			return nil
		}
		return tx.SetDetailStatus(ctx, bookingID, detail)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	b := toDomainBooking(m)

	var dm bookingDetailModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&dm).Error; err == nil {
		b.Detail = &domain.BookingDetail{
			ID:        dm.ID,
			BookingID: dm.BookingID,
			Status:    domain.DetailStatus(dm.Status),
			UnitPrice: dm.UnitPrice,
			Quantity:  dm.Quantity,
			CreatedAt: dm.CreatedAt,
			UpdatedAt: dm.UpdatedAt,
		}
	}
	var sm bookingServiceModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&sm).Error; err == nil {
		b.Service = &domain.BookingService{
			ID:         sm.ID,
			BookingID:  sm.BookingID,
			ProviderID: sm.ProviderID,
			ServiceID:  sm.ServiceID,
			CreatedAt:  sm.CreatedAt,
		}
	}
	return b, nil
}

// UpdateState compare-and-swaps the authoritative state. Returns false
// with a nil error when the row is gone or its state is no longer
// `from` — the caller re-reads to tell the two apart.
func (r *BookingRepository) UpdateState(ctx context.Context, bookingID int64, from, to domain.State, reason *string) (bool, error) {
	updates := map[string]any{
		"state":      string(to),
		"updated_at": time.Now(),
	}
	if reason != nil {
		updates["cancellation_reason"] = *reason
	}

	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND state = ?", bookingID, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// SetDetailStatus writes the projected UI-facing status. Called in the
// same transaction as UpdateState.
func (r *BookingRepository) SetDetailStatus(ctx context.Context, bookingID int64, status domain.DetailStatus) error {
	return r.db.WithContext(ctx).
		Model(&bookingDetailModel{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now()}).
		Error
}

func (r *BookingRepository) IsProviderOwner(ctx context.Context, bookingID, providerID int64) (bool, error) {
	var cnt int64
	q := `SELECT COUNT(1) FROM booking_services WHERE booking_id = ? AND provider_id = ?`
	tx := r.db.WithContext(ctx).Raw(q, bookingID, providerID).Scan(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *BookingRepository) IsCustomerOwner(ctx context.Context, bookingID, customerID int64) (bool, error) {
	var cnt int64
	q := `SELECT COUNT(1) FROM bookings WHERE id = ? AND customer_id = ?`
	tx := r.db.WithContext(ctx).Raw(q, bookingID, customerID).Scan(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *BookingRepository) GetEventWindow(ctx context.Context, bookingID int64) (time.Time, time.Time, error) {
	var row struct {
		EventStart time.Time
		EventEnd   time.Time
	}
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Select("event_start", "event_end").
		Where("id = ?", bookingID).
		Take(&row)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return time.Time{}, time.Time{}, ErrNotFound
		}
		return time.Time{}, time.Time{}, tx.Error
	}
	return row.EventStart, row.EventEnd, nil
}

func (r *BookingRepository) GetServiceName(ctx context.Context, bookingID int64) (string, error) {
	var name string
	q := `
SELECT s.name
FROM booking_services bs
JOIN services s ON s.id = bs.service_id
WHERE bs.booking_id = ?
`
	tx := r.db.WithContext(ctx).Raw(q, bookingID).Scan(&name)
	if tx.Error != nil {
		return "", tx.Error
	}
	return name, nil
}

// Contact is the minimal recipient info the notification channels need.
type Contact struct {
	UserID int64
	Name   string
	Email  string
	Phone  string
}

func (r *BookingRepository) GetCustomerContact(ctx context.Context, bookingID int64) (*Contact, error) {
	var row Contact
	q := `
SELECT u.id AS user_id, u.name, u.email, u.phone
FROM bookings b
JOIN users u ON u.id = b.customer_id
WHERE b.id = ?
`
	tx := r.db.WithContext(ctx).Raw(q, bookingID).Scan(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if row.UserID == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *BookingRepository) GetProviderContact(ctx context.Context, bookingID int64) (*Contact, error) {
	var row Contact
	q := `
SELECT u.id AS user_id, u.name, u.email, u.phone
FROM booking_services bs
JOIN users u ON u.id = bs.provider_id
WHERE bs.booking_id = ?
`
	tx := r.db.WithContext(ctx).Raw(q, bookingID).Scan(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if row.UserID == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}
