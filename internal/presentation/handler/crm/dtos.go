package crm

import (
	"strings"
	"time"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
)

type ClientInput struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Phone      string `json:"phone" validate:"max=40"`
	Status     string `json:"status" validate:"omitempty,oneof=lead prospect customer lost"`
	Source     string `json:"source" validate:"max=60"`
	AssignedTo *uint  `json:"assigned_to" validate:"omitempty,gt=0"`
}

func (in *ClientInput) Apply(c *domain.Client, _ security.Identity) {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = in.Phone
	c.Source = in.Source
	c.AssignedTo = in.AssignedTo
	c.Status = in.Status
	if c.Status == "" {
		c.Status = domain.ClientStatusLead
	}
}

type VehicleInput struct {
	VIN      string  `json:"vin" validate:"required,len=17,alphanum"`
	Make     string  `json:"make" validate:"required,max=60"`
	Model    string  `json:"model" validate:"required,max=60"`
	Year     int     `json:"year" validate:"required,min=1900,max=2100"`
	Trim     string  `json:"trim" validate:"max=60"`
	Mileage  int     `json:"mileage" validate:"min=0"`
	Price    float64 `json:"price" validate:"min=0"`
	Status   string  `json:"status" validate:"omitempty,oneof=available reserved sold"`
	ClientID *uint   `json:"client_id" validate:"omitempty,gt=0"`
}

func (in *VehicleInput) Apply(v *domain.Vehicle, _ security.Identity) {
	v.VIN = strings.ToUpper(in.VIN)
	v.Make = in.Make
	v.Model = in.Model
	v.Year = in.Year
	v.Trim = in.Trim
	v.Mileage = in.Mileage
	v.Price = in.Price
	v.ClientID = in.ClientID
	v.Status = in.Status
	if v.Status == "" {
		v.Status = domain.VehicleStatusAvailable
	}
}

type EventInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required,oneof=test_drive appointment delivery follow_up"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
	ClientID    *uint     `json:"client_id" validate:"omitempty,gt=0"`
	VehicleID   *uint     `json:"vehicle_id" validate:"omitempty,gt=0"`
	UserID      *uint     `json:"user_id" validate:"omitempty,gt=0"`
}

// Apply assigns the event to the caller unless another user is named.
func (in *EventInput) Apply(e *domain.Event, caller security.Identity) {
	e.Title = in.Title
	e.Description = in.Description
	e.Type = in.Type
	e.StartsAt = in.StartsAt.UTC()
	e.EndsAt = in.EndsAt.UTC()
	e.ClientID = in.ClientID
	e.VehicleID = in.VehicleID
	e.UserID = in.UserID
	if e.UserID == nil {
		id := caller.UserID
		e.UserID = &id
	}
}

type TagInput struct {
	Name  string `json:"name" validate:"required,max=60"`
	Color string `json:"color" validate:"omitempty,hexcolor6"`
}

func (in *TagInput) Apply(t *domain.Tag, _ security.Identity) {
	t.Name = strings.TrimSpace(in.Name)
	t.Color = strings.ToLower(in.Color)
}

type NoteInput struct {
	ClientID uint   `json:"client_id" validate:"required"`
	Body     string `json:"body" validate:"required,max=10000"`
}

// Apply keeps the original author on update.
func (in *NoteInput) Apply(n *domain.Note, caller security.Identity) {
	n.ClientID = in.ClientID
	n.Body = in.Body
	if n.UserID == 0 {
		n.UserID = caller.UserID
	}
}

type CallInput struct {
	ClientID        uint       `json:"client_id" validate:"required"`
	Direction       string     `json:"direction" validate:"required,oneof=inbound outbound"`
	Outcome         string     `json:"outcome" validate:"max=60"`
	DurationSeconds int        `json:"duration_seconds" validate:"min=0"`
	Summary         string     `json:"summary"`
	CalledAt        *time.Time `json:"called_at"`
}

func (in *CallInput) Apply(c *domain.Call, caller security.Identity) {
	c.ClientID = in.ClientID
	c.Direction = in.Direction
	c.Outcome = in.Outcome
	c.DurationSeconds = in.DurationSeconds
	c.Summary = in.Summary
	c.CalledAt = timeOrNow(in.CalledAt, c.CalledAt)
	if c.UserID == 0 {
		c.UserID = caller.UserID
	}
}

type EmailInput struct {
	ClientID  uint       `json:"client_id" validate:"required"`
	Direction string     `json:"direction" validate:"required,oneof=inbound outbound"`
	Subject   string     `json:"subject" validate:"required,max=255"`
	Body      string     `json:"body"`
	SentAt    *time.Time `json:"sent_at"`
}

func (in *EmailInput) Apply(e *domain.Email, caller security.Identity) {
	e.ClientID = in.ClientID
	e.Direction = in.Direction
	e.Subject = in.Subject
	e.Body = in.Body
	e.SentAt = timeOrNow(in.SentAt, e.SentAt)
	if e.UserID == 0 {
		e.UserID = caller.UserID
	}
}

func timeOrNow(given *time.Time, current time.Time) time.Time {
	switch {
	case given != nil:
		return given.UTC()
	case !current.IsZero():
		return current
	default:
		return time.Now().UTC()
	}
}
