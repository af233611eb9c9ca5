// model/equipment.go
package model

type Equipment struct {
	ID            int64   `json:"id"`
	EquipmentType string  `json:"equipment_type"`
	Name          string  `json:"name"`
	Availability  bool    `json:"availability"`
	Price         float64 `json:"price"`
	ImageURL      *string `json:"image_url,omitempty"`
}
