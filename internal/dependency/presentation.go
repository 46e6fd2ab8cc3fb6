package dependency

import (
	"context"
	"net/http"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/database"
	"github.com/hilthontt/dealerdesk/internal/presentation/api"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/auth"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/crm"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/health"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/resource"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/teams"
)

func notify[T domain.ClientActivity](c *Container) func(context.Context, *T) {
	return func(ctx context.Context, record *T) {
		c.ActivityUC.Created(ctx, *record)
	}
}

func (c *Container) initHandlers() {
	adminOnly := api.RequireRole(domain.RoleAdmin)
	activityFilters := map[string]handler.FilterKind{
		"client_id": handler.FilterUint,
		"user_id":   handler.FilterUint,
		"direction": handler.FilterString,
	}

	c.Handlers = api.Handlers{
		Auth:   auth.NewHandler(c.AuthUC, c.UserRepo, c.Tokens, c.Validator, c.Config.Auth.SecureCookie, c.Logger),
		Health: health.NewHandler(func(ctx context.Context) error { return database.Ping(ctx, c.DB) }, c.WSRooms, c.WSRegistry),

		Clients: resource.NewHandler[domain.Client, crm.ClientInput](c.ClientRepo, c.Validator, c.Logger, resource.Options[domain.Client]{
			Filters: map[string]handler.FilterKind{
				"status":      handler.FilterString,
				"source":      handler.FilterString,
				"assigned_to": handler.FilterUint,
			},
		}),
		Vehicles: resource.NewHandler[domain.Vehicle, crm.VehicleInput](c.VehicleRepo, c.Validator, c.Logger, resource.Options[domain.Vehicle]{
			Filters: map[string]handler.FilterKind{
				"status":    handler.FilterString,
				"make":      handler.FilterString,
				"model":     handler.FilterString,
				"year":      handler.FilterInt,
				"client_id": handler.FilterUint,
			},
		}),
		Events: resource.NewHandler[domain.Event, crm.EventInput](c.EventRepo, c.Validator, c.Logger, resource.Options[domain.Event]{
			Filters: map[string]handler.FilterKind{
				"type":       handler.FilterString,
				"client_id":  handler.FilterUint,
				"vehicle_id": handler.FilterUint,
				"user_id":    handler.FilterUint,
			},
		}),
		Tags: resource.NewHandler[domain.Tag, crm.TagInput](c.TagRepo, c.Validator, c.Logger, resource.Options[domain.Tag]{
			Filters:          map[string]handler.FilterKind{"name": handler.FilterString},
			DeleteMiddleware: []func(http.Handler) http.Handler{adminOnly},
		}),
		Notes: resource.NewHandler[domain.Note, crm.NoteInput](c.NoteRepo, c.Validator, c.Logger, resource.Options[domain.Note]{
			Filters:     activityFilters,
			Check:       crm.ClientExists[domain.Note](c.ClientRepo),
			AfterCreate: notify[domain.Note](c),
		}),
		Calls: resource.NewHandler[domain.Call, crm.CallInput](c.CallRepo, c.Validator, c.Logger, resource.Options[domain.Call]{
			Filters:     activityFilters,
			Check:       crm.ClientExists[domain.Call](c.ClientRepo),
			AfterCreate: notify[domain.Call](c),
		}),
		Emails: resource.NewHandler[domain.Email, crm.EmailInput](c.EmailRepo, c.Validator, c.Logger, resource.Options[domain.Email]{
			Filters:     activityFilters,
			Check:       crm.ClientExists[domain.Email](c.ClientRepo),
			AfterCreate: notify[domain.Email](c),
		}),
		Teams: resource.NewHandler[domain.Team, teams.TeamInput](c.TeamRepo, c.Validator, c.Logger, resource.Options[domain.Team]{
			DeleteMiddleware: []func(http.Handler) http.Handler{adminOnly},
		}),

		ClientDetails: crm.NewClientHandler(c.ClientRepo, c.NoteRepo, c.CallRepo, c.EmailRepo, c.Logger),
		TeamDetails:   teams.NewHandler(c.TeamRepo, c.TeamMessageUC, c.WSBroadcaster, c.Validator, c.Logger),
	}
}
