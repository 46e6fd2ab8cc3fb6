package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "not found", in: gorm.ErrRecordNotFound, want: domain.ErrNotFound},
		{name: "wrapped not found", in: fmt.Errorf("query: %w", gorm.ErrRecordNotFound), want: domain.ErrNotFound},
		{name: "duplicate", in: gorm.ErrDuplicatedKey, want: domain.ErrConflict},
		{name: "foreign key", in: gorm.ErrForeignKeyViolated, want: domain.ErrInvalidInput},
		{name: "passthrough", in: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := translate(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestListQueryPageSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.DefaultPageSize, domain.ListQuery{}.PageSize())
	assert.Equal(t, 10, domain.ListQuery{Limit: 10}.PageSize())
	assert.Equal(t, domain.MaxPageSize, domain.ListQuery{Limit: 10_000}.PageSize())
}
