package repository

import (
	"context"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamRepository struct {
	*BaseRepository[domain.Team]
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{
		BaseRepository: NewBaseRepository[domain.Team](db, []string{"name"}),
	}
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID uint) error {
	if err := r.exists(ctx, &domain.Team{}, teamID); err != nil {
		return err
	}
	if err := r.exists(ctx, &domain.User{}, userID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).
		Table("team_members").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"team_id": teamID, "user_id": userID}).
		Error
	return translate(err)
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID uint) error {
	err := r.db.WithContext(ctx).
		Exec("DELETE FROM team_members WHERE team_id = ? AND user_id = ?", teamID, userID).
		Error
	return translate(err)
}

func (r *TeamRepository) Members(ctx context.Context, teamID uint) ([]domain.User, error) {
	if err := r.exists(ctx, &domain.Team{}, teamID); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN team_members tm ON tm.user_id = users.id").
		Where("tm.team_id = ?", teamID).
		Order("users.name ASC").
		Find(&users).
		Error
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("team_members").
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).
		Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
