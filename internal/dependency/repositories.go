package dependency

import "github.com/hilthontt/dealerdesk/internal/infrastructure/repository"

func (c *Container) initRepositories() {
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.ClientRepo = repository.NewClientRepository(c.DB)
	c.VehicleRepo = repository.NewVehicleRepository(c.DB)
	c.EventRepo = repository.NewEventRepository(c.DB)
	c.TagRepo = repository.NewTagRepository(c.DB)
	c.NoteRepo = repository.NewNoteRepository(c.DB)
	c.CallRepo = repository.NewCallRepository(c.DB)
	c.EmailRepo = repository.NewEmailRepository(c.DB)
	c.TeamRepo = repository.NewTeamRepository(c.DB)
	c.TeamMessageRepo = repository.NewTeamMessageRepository(c.DB)
}
