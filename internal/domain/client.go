package domain

const (
	ClientStatusLead     = "lead"
	ClientStatusProspect = "prospect"
	ClientStatusCustomer = "customer"
	ClientStatusLost     = "lost"
)

type Client struct {
	BaseModel
	FirstName  string `gorm:"size:100;not null" json:"first_name"`
	LastName   string `gorm:"size:100;not null" json:"last_name"`
	Email      string `gorm:"size:255;index" json:"email"`
	Phone      string `gorm:"size:40" json:"phone"`
	Status     string `gorm:"size:20;not null;default:lead;index" json:"status"`
	Source     string `gorm:"size:60" json:"source"`
	AssignedTo *uint  `gorm:"index" json:"assigned_to"`
	Tags       []Tag  `gorm:"many2many:client_tags" json:"tags,omitempty"`
}
