package repository

import (
	"context"
	"slices"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"gorm.io/gorm"
)

const teamMessageColumns = "team_messages.*, users.name AS user_name, users.avatar AS user_avatar"

type TeamMessageRepository struct {
	db *gorm.DB
}

func NewTeamMessageRepository(db *gorm.DB) *TeamMessageRepository {
	return &TeamMessageRepository{db: db}
}

func (r *TeamMessageRepository) withSender(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.TeamMessage{}).
		Select(teamMessageColumns).
		Joins("LEFT JOIN users ON users.id = team_messages.user_id")
}

func (r *TeamMessageRepository) Create(ctx context.Context, msg *domain.TeamMessage) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

// GetByID returns the message with the sender's display fields joined in.
func (r *TeamMessageRepository) GetByID(ctx context.Context, id uint) (*domain.TeamMessage, error) {
	var msg domain.TeamMessage
	if err := r.withSender(ctx).Where("team_messages.id = ?", id).Take(&msg).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// ListByTeam returns the latest limit messages, oldest first.
func (r *TeamMessageRepository) ListByTeam(ctx context.Context, teamID uint, limit int) ([]domain.TeamMessage, error) {
	q := domain.ListQuery{Limit: limit}

	msgs := make([]domain.TeamMessage, 0)
	err := r.withSender(ctx).
		Where("team_messages.team_id = ?", teamID).
		Order("team_messages.created_at DESC, team_messages.id DESC").
		Limit(q.PageSize()).
		Find(&msgs).
		Error
	if err != nil {
		return nil, translate(err)
	}

	slices.Reverse(msgs)
	return msgs, nil
}
