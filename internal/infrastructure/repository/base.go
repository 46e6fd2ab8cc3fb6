package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type identifiable interface {
	GetID() uint
}

// BaseRepository implements domain.Repository for any gorm model embedding
// domain.BaseModel. List only filters on the columns passed at construction.
type BaseRepository[TEntity any] struct {
	db       *gorm.DB
	filters  map[string]struct{}
	preloads []string
}

func NewBaseRepository[TEntity any](db *gorm.DB, filters []string, preloads ...string) *BaseRepository[TEntity] {
	allowed := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		allowed[f] = struct{}{}
	}

	return &BaseRepository[TEntity]{
		db:       db,
		filters:  allowed,
		preloads: preloads,
	}
}

func (r *BaseRepository[TEntity]) withPreloads(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *BaseRepository[TEntity]) Create(ctx context.Context, entity *TEntity) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *BaseRepository[TEntity]) GetByID(ctx context.Context, id uint) (*TEntity, error) {
	entity := new(TEntity)
	if err := r.withPreloads(ctx).First(entity, id).Error; err != nil {
		return nil, translate(err)
	}
	return entity, nil
}

// Update overwrites every column but the key and timestamps of an existing
// row. Associations are left untouched.
func (r *BaseRepository[TEntity]) Update(ctx context.Context, entity *TEntity) error {
	ided, ok := any(entity).(identifiable)
	if !ok || ided.GetID() == 0 {
		return fmt.Errorf("%w: missing id", domain.ErrInvalidInput)
	}

	res := r.db.WithContext(ctx).
		Model(new(TEntity)).
		Where("id = ?", ided.GetID()).
		Select("*").
		Omit("id", "created_at", "deleted_at", clause.Associations).
		Updates(entity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BaseRepository[TEntity]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(TEntity), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BaseRepository[TEntity]) List(ctx context.Context, q domain.ListQuery) ([]TEntity, int64, error) {
	query := r.db.WithContext(ctx).Model(new(TEntity))
	for column, value := range q.Filters {
		if _, ok := r.filters[column]; !ok {
			continue
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	for _, p := range r.preloads {
		query = query.Preload(p)
	}

	items := make([]TEntity, 0)
	err := query.
		Order("id ASC").
		Offset(q.Offset).
		Limit(q.PageSize()).
		Find(&items).
		Error
	if err != nil {
		return nil, 0, translate(err)
	}

	return items, total, nil
}

func (r *BaseRepository[TEntity]) exists(ctx context.Context, model any, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: referenced record does not exist", domain.ErrInvalidInput)
	default:
		return err
	}
}
