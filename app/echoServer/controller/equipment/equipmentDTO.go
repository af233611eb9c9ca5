package equipment

type EquipmentReq struct {
	EquipmentType string  `json:"equipment_type" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Availability  bool    `json:"availability"`
	Price         float64 `json:"price" validate:"gte=0"`
}
