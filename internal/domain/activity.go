package domain

import "time"

const (
	ActivityNote  = "note"
	ActivityCall  = "call"
	ActivityEmail = "email"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// ClientActivity is implemented by records attached to a client's timeline.
type ClientActivity interface {
	GetClientID() uint
	ActivityKind() string
}

type Note struct {
	BaseModel
	ClientID uint   `gorm:"not null;index" json:"client_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Body     string `gorm:"type:text;not null" json:"body"`
}

func (n Note) GetClientID() uint { return n.ClientID }
func (Note) ActivityKind() string { return ActivityNote }

type Call struct {
	BaseModel
	ClientID        uint      `gorm:"not null;index" json:"client_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Direction       string    `gorm:"size:10;not null" json:"direction"`
	Outcome         string    `gorm:"size:60" json:"outcome"`
	DurationSeconds int       `json:"duration_seconds"`
	Summary         string    `gorm:"type:text" json:"summary"`
	CalledAt        time.Time `gorm:"type:TIMESTAMP with time zone;not null" json:"called_at"`
}

func (c Call) GetClientID() uint { return c.ClientID }
func (Call) ActivityKind() string { return ActivityCall }

type Email struct {
	BaseModel
	ClientID  uint      `gorm:"not null;index" json:"client_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Direction string    `gorm:"size:10;not null" json:"direction"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	SentAt    time.Time `gorm:"type:TIMESTAMP with time zone;not null" json:"sent_at"`
}

func (e Email) GetClientID() uint { return e.ClientID }
func (Email) ActivityKind() string { return ActivityEmail }
