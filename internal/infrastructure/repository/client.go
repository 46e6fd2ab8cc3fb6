package repository

import (
	"context"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepository struct {
	*BaseRepository[domain.Client]
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{
		BaseRepository: NewBaseRepository[domain.Client](db, []string{"status", "source", "assigned_to"}, "Tags"),
	}
}

func (r *ClientRepository) AddTag(ctx context.Context, clientID, tagID uint) error {
	if err := r.exists(ctx, &domain.Client{}, clientID); err != nil {
		return err
	}
	if err := r.exists(ctx, &domain.Tag{}, tagID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).
		Table("client_tags").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"client_id": clientID, "tag_id": tagID}).
		Error
	return translate(err)
}

func (r *ClientRepository) RemoveTag(ctx context.Context, clientID, tagID uint) error {
	err := r.db.WithContext(ctx).
		Exec("DELETE FROM client_tags WHERE client_id = ? AND tag_id = ?", clientID, tagID).
		Error
	return translate(err)
}
