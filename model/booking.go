// model/booking.go
package model

import "time"

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
)

type Booking struct {
	ID            int64         `json:"id"`
	EquipmentID   *int64        `json:"equipment_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Status        BookingStatus `json:"status"`
	CreatedBy     *int64        `json:"created_by,omitempty"`

	// Joined for display
	EquipmentName *string `json:"equipment_name,omitempty"`
	PaymentID     *int64  `json:"payment_id,omitempty"`
}
