package dependency

import (
	"github.com/hilthontt/dealerdesk/internal/application/usecases/activity"
	"github.com/hilthontt/dealerdesk/internal/application/usecases/auth"
	"github.com/hilthontt/dealerdesk/internal/application/usecases/teammessage"
)

func (c *Container) initUseCases() {
	c.AuthUC = auth.NewAuthUseCase(c.UserRepo, c.Tokens, c.Logger)
	c.TeamMessageUC = teammessage.NewTeamMessageUseCase(c.TeamRepo, c.TeamMessageRepo, c.WSBroadcaster, c.Logger)
	c.ActivityUC = activity.NewNotifier(c.WSBroadcaster, c.Logger)
}
