package teams

import (
	"strings"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
)

type TeamInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

func (in *TeamInput) Apply(t *domain.Team, _ security.Identity) {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = in.Description
}

type SendMessageRequest struct {
	Message     string  `json:"message" validate:"max=4000"`
	MessageFile *string `json:"message_file" validate:"omitempty,url"`
}

type MessagesResponse struct {
	Messages []domain.TeamMessage `json:"messages"`
	Count    int                  `json:"count"`
	TeamID   uint                 `json:"team_id"`
}

type MembersResponse struct {
	Members []domain.User `json:"members"`
	Count   int           `json:"count"`
	TeamID  uint          `json:"team_id"`
}
