package domain

const (
	VehicleStatusAvailable = "available"
	VehicleStatusReserved  = "reserved"
	VehicleStatusSold      = "sold"
)

type Vehicle struct {
	BaseModel
	VIN      string  `gorm:"column:vin;size:17;uniqueIndex;not null" json:"vin"`
	Make     string  `gorm:"size:60;not null" json:"make"`
	Model    string  `gorm:"size:60;not null" json:"model"`
	Year     int     `gorm:"not null" json:"year"`
	Trim     string  `gorm:"size:60" json:"trim"`
	Mileage  int     `json:"mileage"`
	Price    float64 `gorm:"type:numeric(12,2)" json:"price"`
	Status   string  `gorm:"size:20;not null;default:available;index" json:"status"`
	ClientID *uint   `gorm:"index" json:"client_id"`
}
