package domain

import "time"

const (
	EventTypeTestDrive   = "test_drive"
	EventTypeAppointment = "appointment"
	EventTypeDelivery    = "delivery"
	EventTypeFollowUp    = "follow_up"
)

// Event is a calendar entry; EndsAt never precedes StartsAt.
type Event struct {
	BaseModel
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `json:"description"`
	Type        string    `gorm:"size:20;not null;index" json:"type"`
	StartsAt    time.Time `gorm:"type:TIMESTAMP with time zone;not null;index" json:"starts_at"`
	EndsAt      time.Time `gorm:"type:TIMESTAMP with time zone;not null" json:"ends_at"`
	ClientID    *uint     `gorm:"index" json:"client_id"`
	VehicleID   *uint     `gorm:"index" json:"vehicle_id"`
	UserID      *uint     `gorm:"index" json:"user_id"`
}
