package domain

import "time"

type Team struct {
	BaseModel
	Name        string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Members     []User `gorm:"many2many:team_members" json:"members,omitempty"`
}

// TeamMessage is a chat message posted to a team. UserName and UserAvatar
// are read from the users table and never written.
type TeamMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TeamID      uint      `gorm:"not null;index" json:"team_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageFile *string   `json:"message_file"`
	CreatedAt   time.Time `gorm:"type:TIMESTAMP with time zone;not null;index" json:"created_at"`
	UserName    string    `gorm:"->;-:migration" json:"user_name"`
	UserAvatar  *string   `gorm:"->;-:migration" json:"user_avatar"`
}
