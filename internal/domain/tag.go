package domain

type Tag struct {
	BaseModel
	Name  string `gorm:"size:60;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7" json:"color"`
}
