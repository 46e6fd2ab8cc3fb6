package teammessage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"go.uber.org/zap"
)

const (
	maxMessageLength = 4000

	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

type Broadcaster interface {
	BroadcastTeamMessage(ctx context.Context, teamID uint, msg *domain.TeamMessage) error
}

type TeamMessageUseCase interface {
	Send(ctx context.Context, caller security.Identity, teamID uint, text string, file *string) (*domain.TeamMessage, error)
	List(ctx context.Context, caller security.Identity, teamID uint, limit int) ([]domain.TeamMessage, error)
}

type teamMessageUseCase struct {
	teams       domain.TeamRepository
	messages    domain.TeamMessageRepository
	broadcaster Broadcaster
	logger      *zap.SugaredLogger
	now         func() time.Time
}

func NewTeamMessageUseCase(
	teams domain.TeamRepository,
	messages domain.TeamMessageRepository,
	broadcaster Broadcaster,
	logger *zap.SugaredLogger,
) TeamMessageUseCase {
	return &teamMessageUseCase{
		teams:       teams,
		messages:    messages,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// authorize confirms the team exists and that caller may post to it.
func (uc *teamMessageUseCase) authorize(ctx context.Context, caller security.Identity, teamID uint) error {
	if _, err := uc.teams.GetByID(ctx, teamID); err != nil {
		return err
	}
	if caller.IsAdmin() {
		return nil
	}

	ok, err := uc.teams.IsMember(ctx, teamID, caller.UserID)
	if err != nil {
		return fmt.Errorf("failed to check team membership: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: not a member of team %d", domain.ErrForbidden, teamID)
	}
	return nil
}

// Send stores the message and then broadcasts the stored record to the
// team room. A broadcast failure never fails the request.
func (uc *teamMessageUseCase) Send(ctx context.Context, caller security.Identity, teamID uint, text string, file *string) (*domain.TeamMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" && (file == nil || *file == "") {
		return nil, fmt.Errorf("%w: message or message_file is required", domain.ErrInvalidInput)
	}
	if len(text) > maxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, maxMessageLength)
	}

	if err := uc.authorize(ctx, caller, teamID); err != nil {
		return nil, err
	}

	msg := &domain.TeamMessage{
		TeamID:      teamID,
		UserID:      caller.UserID,
		Message:     text,
		MessageFile: file,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store team message: %w", err)
	}

	stored, err := uc.messages.GetByID(ctx, msg.ID)
	if err != nil {
		uc.logger.Warnw("failed to reload team message, broadcasting insert result",
			logging.KeyCategory, logging.Postgres,
			logging.KeySubCategory, logging.Select,
			"message_id", msg.ID,
			"error", err,
		)
		stored = msg
	}

	if err := uc.broadcaster.BroadcastTeamMessage(ctx, teamID, stored); err != nil {
		uc.logger.Warnw("failed to broadcast team message",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Publish,
			"team_id", teamID,
			"message_id", stored.ID,
			"error", err,
		)
	}

	return stored, nil
}

func (uc *teamMessageUseCase) List(ctx context.Context, caller security.Identity, teamID uint, limit int) ([]domain.TeamMessage, error) {
	if err := uc.authorize(ctx, caller, teamID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = defaultMessageLimit
	case limit > maxMessageLimit:
		limit = maxMessageLimit
	}

	return uc.messages.ListByTeam(ctx, teamID, limit)
}
