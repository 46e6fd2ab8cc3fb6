package repository

import (
	"github.com/hilthontt/dealerdesk/internal/domain"
	"gorm.io/gorm"
)

func NewVehicleRepository(db *gorm.DB) *BaseRepository[domain.Vehicle] {
	return NewBaseRepository[domain.Vehicle](db, []string{"status", "make", "model", "year", "client_id"})
}

func NewEventRepository(db *gorm.DB) *BaseRepository[domain.Event] {
	return NewBaseRepository[domain.Event](db, []string{"type", "client_id", "vehicle_id", "user_id"})
}

func NewTagRepository(db *gorm.DB) *BaseRepository[domain.Tag] {
	return NewBaseRepository[domain.Tag](db, []string{"name"})
}

func NewNoteRepository(db *gorm.DB) *BaseRepository[domain.Note] {
	return NewBaseRepository[domain.Note](db, []string{"client_id", "user_id"})
}

func NewCallRepository(db *gorm.DB) *BaseRepository[domain.Call] {
	return NewBaseRepository[domain.Call](db, []string{"client_id", "user_id", "direction"})
}

func NewEmailRepository(db *gorm.DB) *BaseRepository[domain.Email] {
	return NewBaseRepository[domain.Email](db, []string{"client_id", "user_id", "direction"})
}
