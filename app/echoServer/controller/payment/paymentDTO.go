package payment

type PaymentReq struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required,oneof=Cash 'Credit Card' 'Bank Transfer' Check"`
	Status      string  `json:"status" validate:"required,oneof=Paid Pending Failed"`
	PaymentDate string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	BookingID   *int64  `json:"booking_id" validate:"omitempty,gt=0"`
}
