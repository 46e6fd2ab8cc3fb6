package domain

import "context"

// ListQuery carries paging and equality filters. Filter keys are column
// names; repositories ignore columns they do not allow.
type ListQuery struct {
	Limit   int
	Offset  int
	Filters map[string]any
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

func (q ListQuery) PageSize() int {
	switch {
	case q.Limit <= 0:
		return DefaultPageSize
	case q.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return q.Limit
	}
}

type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
}

type UserRepository interface {
	Repository[User]
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type ClientRepository interface {
	Repository[Client]
	AddTag(ctx context.Context, clientID, tagID uint) error
	RemoveTag(ctx context.Context, clientID, tagID uint) error
}

type TeamRepository interface {
	Repository[Team]
	AddMember(ctx context.Context, teamID, userID uint) error
	RemoveMember(ctx context.Context, teamID, userID uint) error
	Members(ctx context.Context, teamID uint) ([]User, error)
	IsMember(ctx context.Context, teamID, userID uint) (bool, error)
}

type TeamMessageRepository interface {
	Create(ctx context.Context, msg *TeamMessage) error
	GetByID(ctx context.Context, id uint) (*TeamMessage, error)
	ListByTeam(ctx context.Context, teamID uint, limit int) ([]TeamMessage, error)
}
