package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleProvider UserRole = "provider"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service is a provider's bookable offering. Resolving its provider is
// what seeds the ownership junction at booking creation.
type Service struct {
	ID          int64     `json:"id"`
	ProviderID  int64     `json:"provider_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BasePrice   float64   `json:"base_price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
