package booking

type CreateBookingRequest struct {
	ServiceID    int64   `json:"service_id" binding:"required"`
	Price        float64 `json:"price" binding:"required"`
	EventAddress string  `json:"event_address" binding:"required"`
	StartDate    string  `json:"start_date" binding:"required"` // 2006-01-02
	EndDate      string  `json:"end_date"`                      // defaults to start_date
	Time         string  `json:"time" binding:"required"`       // 15:04
	Notes        string  `json:"notes"`

	CustomerID int64 `json:"-"` // taken from the verified identity
}

type ActionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

type BookingResponse struct {
	BookingID int64  `json:"booking_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}
