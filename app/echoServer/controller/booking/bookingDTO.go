package booking

type BookingReq struct {
	EquipmentID   *int64 `json:"equipment_id" validate:"required,gt=0"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Status        string `json:"status" validate:"omitempty,oneof=active completed"`
}
